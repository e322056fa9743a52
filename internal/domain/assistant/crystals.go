package assistant

import (
	"regexp"
	"strings"
)

// Crystal is one entry of the knowledge base
type Crystal struct {
	Name        string
	Summary     string
	Properties  []string
	Intentions  []string
	Chakras     []string
	Zodiac      []string
	BirthMonths []int
}

var knowledgeBase = []Crystal{
	{
		Name:        "Amethyst",
		Summary:     "a violet quartz long kept for calm and restful sleep",
		Properties:  []string{"calming", "intuitive", "purifying"},
		Intentions:  []string{"calm", "sleep", "intuition", "balance"},
		Chakras:     []string{"crown", "third eye"},
		Zodiac:      []string{"pisces", "aquarius", "virgo"},
		BirthMonths: []int{2},
	},
	{
		Name:        "Rose Quartz",
		Summary:     "the soft pink stone of unconditional love",
		Properties:  []string{"loving", "gentle", "soothing"},
		Intentions:  []string{"love", "healing", "calm"},
		Chakras:     []string{"heart"},
		Zodiac:      []string{"taurus", "libra"},
		BirthMonths: []int{1, 10},
	},
	{
		Name:        "Clear Quartz",
		Summary:     "the master healer, amplifying whatever it is paired with",
		Properties:  []string{"amplifying", "clarifying", "versatile"},
		Intentions:  []string{"clarity", "healing", "balance"},
		Chakras:     []string{"crown"},
		Zodiac:      []string{"aries", "leo"},
		BirthMonths: []int{4},
	},
	{
		Name:        "Citrine",
		Summary:     "a sunny quartz associated with abundance and optimism",
		Properties:  []string{"energizing", "warm", "uplifting"},
		Intentions:  []string{"abundance", "confidence", "creativity"},
		Chakras:     []string{"solar plexus", "sacral"},
		Zodiac:      []string{"gemini", "leo", "aries"},
		BirthMonths: []int{11},
	},
	{
		Name:        "Black Tourmaline",
		Summary:     "a grounding stone prized for protection",
		Properties:  []string{"protective", "grounding", "shielding"},
		Intentions:  []string{"protection", "grounding"},
		Chakras:     []string{"root"},
		Zodiac:      []string{"capricorn", "scorpio"},
		BirthMonths: []int{10},
	},
	{
		Name:        "Moonstone",
		Summary:     "a luminous feldspar tied to new beginnings and intuition",
		Properties:  []string{"intuitive", "nurturing", "reflective"},
		Intentions:  []string{"intuition", "balance", "love"},
		Chakras:     []string{"sacral", "third eye"},
		Zodiac:      []string{"cancer", "libra", "scorpio"},
		BirthMonths: []int{6},
	},
	{
		Name:       "Labradorite",
		Summary:    "a flashing stone of transformation and magic",
		Properties: []string{"mystical", "protective", "transformative"},
		Intentions: []string{"intuition", "protection", "creativity"},
		Chakras:    []string{"third eye", "throat"},
		Zodiac:     []string{"sagittarius", "scorpio", "leo"},
	},
	{
		Name:       "Tiger's Eye",
		Summary:    "a golden banded stone for courage and focus",
		Properties: []string{"grounding", "bold", "focusing"},
		Intentions: []string{"courage", "confidence", "protection"},
		Chakras:    []string{"solar plexus", "root"},
		Zodiac:     []string{"leo", "capricorn"},
	},
	{
		Name:        "Carnelian",
		Summary:     "a fiery orange stone of motivation and creativity",
		Properties:  []string{"energizing", "motivating", "warm"},
		Intentions:  []string{"creativity", "courage", "confidence"},
		Chakras:     []string{"sacral"},
		Zodiac:      []string{"virgo", "leo", "aries"},
		BirthMonths: []int{7},
	},
	{
		Name:        "Lapis Lazuli",
		Summary:     "a deep blue stone of truth and communication",
		Properties:  []string{"wise", "truthful", "expressive"},
		Intentions:  []string{"communication", "clarity", "intuition"},
		Chakras:     []string{"throat", "third eye"},
		Zodiac:      []string{"sagittarius", "libra"},
		BirthMonths: []int{9},
	},
	{
		Name:        "Green Aventurine",
		Summary:     "the stone of opportunity and good fortune",
		Properties:  []string{"lucky", "optimistic", "soothing"},
		Intentions:  []string{"abundance", "healing", "balance"},
		Chakras:     []string{"heart"},
		Zodiac:      []string{"taurus", "virgo"},
		BirthMonths: []int{5, 8},
	},
	{
		Name:        "Garnet",
		Summary:     "a deep red stone of passion and commitment",
		Properties:  []string{"passionate", "revitalizing", "grounding"},
		Intentions:  []string{"love", "courage", "grounding"},
		Chakras:     []string{"root", "heart"},
		Zodiac:      []string{"capricorn", "aquarius"},
		BirthMonths: []int{1},
	},
	{
		Name:        "Turquoise",
		Summary:     "a sky-blue stone of protection for travellers",
		Properties:  []string{"protective", "healing", "communicative"},
		Intentions:  []string{"protection", "communication", "healing"},
		Chakras:     []string{"throat"},
		Zodiac:      []string{"sagittarius", "pisces"},
		BirthMonths: []int{12},
	},
	{
		Name:       "Selenite",
		Summary:    "a milky white crystal used to cleanse other stones",
		Properties: []string{"cleansing", "peaceful", "high vibration"},
		Intentions: []string{"clarity", "calm", "sleep"},
		Chakras:    []string{"crown"},
		Zodiac:     []string{"cancer", "taurus"},
	},
}

var crystalIndex = func() map[string]int {
	idx := make(map[string]int, len(knowledgeBase))
	for i, c := range knowledgeBase {
		idx[strings.ToLower(c.Name)] = i
	}
	return idx
}()

var crystalNamePattern = func() *regexp.Regexp {
	names := make([]string, len(knowledgeBase))
	for i, c := range knowledgeBase {
		names[i] = regexp.QuoteMeta(strings.ToLower(c.Name))
	}
	return regexp.MustCompile(`\b(` + strings.Join(names, "|") + `)\b`)
}()

// Crystals returns a copy of the knowledge base
func Crystals() []Crystal {
	out := make([]Crystal, len(knowledgeBase))
	copy(out, knowledgeBase)
	return out
}

// LookupCrystal finds a crystal by name, case-insensitively
func LookupCrystal(name string) (Crystal, bool) {
	i, ok := crystalIndex[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Crystal{}, false
	}
	return knowledgeBase[i], true
}

// FindCrystalsIn returns the distinct known crystals named in text, in
// order of first mention.
func FindCrystalsIn(text string) []string {
	matches := crystalNamePattern.FindAllString(strings.ToLower(text), -1)
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, knowledgeBase[crystalIndex[m]].Name)
	}
	return out
}

// Intentions lists every intention any crystal supports, sorted by first appearance
func Intentions() []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range knowledgeBase {
		for _, in := range c.Intentions {
			if !seen[in] {
				seen[in] = true
				out = append(out, in)
			}
		}
	}
	return out
}
