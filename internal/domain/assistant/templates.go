package assistant

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const crystalsPlaceholder = "{{crystals}}"

// Template is a canned reply selected by keyword overlap with the user's message
type Template struct {
	Name     string
	Keywords []string
	Crystals []string
	Reply    string
}

// Render substitutes the template's crystals into its reply
func (t Template) Render() string {
	return strings.ReplaceAll(t.Reply, crystalsPlaceholder, JoinNatural(titleCase(t.Crystals)))
}

var defaultTemplate = Template{
	Name:     "general",
	Crystals: []string{"clear quartz", "amethyst", "rose quartz"},
	Reply: "Every crystal carries its own gentle energy. If you are just beginning, {{crystals}} " +
		"make a lovely trio: one for clarity, one for calm and one for love. " +
		"Tell me a little about what you are hoping for and I can narrow it down.",
}

var templates = []Template{
	{
		Name:     "love",
		Keywords: []string{"love", "relationship", "romance", "heart", "partner", "heartbreak", "self-love", "dating"},
		Crystals: []string{"rose quartz", "moonstone", "garnet"},
		Reply: "Matters of the heart call for {{crystals}}. Rose quartz is worn close to the heart " +
			"to invite compassion, and pairs beautifully with a moonstone ring or a garnet bracelet.",
	},
	{
		Name:     "calm",
		Keywords: []string{"calm", "anxiety", "anxious", "stress", "stressed", "peace", "relax", "worry", "overwhelmed"},
		Crystals: []string{"amethyst", "selenite", "rose quartz"},
		Reply: "When life feels loud, {{crystals}} are wonderful companions. " +
			"Many people keep an amethyst pendant on during the day to stay centred.",
	},
	{
		Name:     "sleep",
		Keywords: []string{"sleep", "insomnia", "dreams", "dream", "night", "rest", "tired"},
		Crystals: []string{"amethyst", "selenite", "moonstone"},
		Reply: "For restful nights, try {{crystals}}. Amethyst on the nightstand is a classic, " +
			"and moonstone is said to encourage gentle dreams.",
	},
	{
		Name:     "protection",
		Keywords: []string{"protection", "protect", "negative", "negativity", "energy vampire", "shield", "safe", "travel"},
		Crystals: []string{"black tourmaline", "labradorite", "turquoise"},
		Reply: "For protection, {{crystals}} are the stones people reach for most. " +
			"Black tourmaline is especially grounding when worn as a bracelet.",
	},
	{
		Name:     "abundance",
		Keywords: []string{"money", "abundance", "wealth", "prosperity", "success", "career", "job", "luck", "business"},
		Crystals: []string{"citrine", "green aventurine", "tiger's eye"},
		Reply: "To invite abundance and opportunity, look to {{crystals}}. " +
			"Citrine is known as the merchant's stone and makes a bright everyday piece.",
	},
	{
		Name:     "confidence",
		Keywords: []string{"confidence", "courage", "brave", "fear", "motivation", "strength", "focus"},
		Crystals: []string{"tiger's eye", "carnelian", "citrine"},
		Reply: "For a boost of courage and focus, {{crystals}} are a strong choice. " +
			"Tiger's eye is a favourite for big days and new ventures.",
	},
	{
		Name:     "creativity",
		Keywords: []string{"creativity", "creative", "art", "writing", "inspiration", "inspired", "music"},
		Crystals: []string{"carnelian", "citrine", "labradorite"},
		Reply:    "Creative work flows with {{crystals}}. Carnelian's warm glow is said to spark new ideas.",
	},
	{
		Name:     "clarity",
		Keywords: []string{"clarity", "clear", "study", "exam", "decision", "confused", "communication", "speak"},
		Crystals: []string{"clear quartz", "lapis lazuli", "selenite"},
		Reply: "For clear thinking and honest words, {{crystals}} are ideal. " +
			"Lapis lazuli in particular is linked with truthful communication.",
	},
	{
		Name:     "gift",
		Keywords: []string{"gift", "present", "birthday", "anniversary", "mother", "friend", "wedding"},
		Crystals: []string{"rose quartz", "moonstone", "amethyst"},
		Reply: "A crystal makes a thoughtful gift. {{crystals}} are our most loved choices, " +
			"and a birthstone piece is always personal. Ask me about a birth month for ideas.",
	},
	{
		Name:     "care",
		Keywords: []string{"clean", "cleanse", "cleansing", "charge", "care", "water", "sunlight"},
		Crystals: []string{"selenite", "clear quartz"},
		Reply: "To cleanse your jewelry, rest it on {{crystals}} overnight or leave it under moonlight. " +
			"Avoid long soaks, as softer stones like selenite dissolve in water.",
	},
}

// Templates returns the keyword templates in priority order
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// DefaultTemplate is used when no keyword matches
func DefaultTemplate() Template {
	return defaultTemplate
}

// MatchTemplate picks the template with the most keyword hits. Ties go to
// the earlier template. With no hits the default template is returned and
// matched is false.
func MatchTemplate(message string) (tpl Template, matched bool) {
	text := " " + strings.Join(tokenize(message), " ") + " "
	best, bestHits := -1, 0
	for i, t := range templates {
		hits := 0
		for _, kw := range t.Keywords {
			if strings.Contains(text, " "+kw+" ") {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = i, hits
		}
	}
	if best < 0 {
		return defaultTemplate, false
	}
	return templates[best], true
}

// tokenize lowercases and splits on anything that is not a letter, digit,
// apostrophe or hyphen.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})
}

// titleCase builds a fresh Caser per call since Casers are not safe for concurrent use.
func titleCase(names []string) []string {
	titler := cases.Title(language.English)
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = titler.String(n)
	}
	return out
}

// JoinNatural joins items as "a", "a and b" or "a, b and c"
func JoinNatural(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

// CrystalNames returns the canonical knowledge-base names for a template's crystals
func (t Template) CrystalNames() []string {
	out := make([]string, 0, len(t.Crystals))
	for _, c := range t.Crystals {
		if kb, ok := LookupCrystal(c); ok {
			out = append(out, kb.Name)
		}
	}
	return out
}
