package assistant

import (
	"math"
	"sort"
	"strings"

	"github.com/troves/backend/internal/domain/shared"
)

// Score weights
const (
	weightIntention  = 3
	weightBirthMonth = 2
	weightZodiac     = 2
	weightChakra     = 1
)

// MatchQuery describes what a shopper is looking for
type MatchQuery struct {
	Intentions []string
	BirthMonth int // 1-12, 0 when unknown
	Zodiac     string
	Chakras    []string
}

// Match is a scored crystal with the reasons it scored
type Match struct {
	Crystal Crystal
	Score   int // 0-100
	Reasons []string
}

// ScoreCrystals ranks the knowledge base against q. Crystals scoring zero
// are dropped. Results are sorted by score, then name, and cut to limit
// when limit > 0.
func ScoreCrystals(q MatchQuery, limit int) ([]Match, error) {
	q = normalizeQuery(q)
	if q.BirthMonth < 0 || q.BirthMonth > 12 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Birth month must be between 1 and 12")
	}
	maxScore := weightIntention*len(q.Intentions) + weightChakra*len(q.Chakras)
	if q.BirthMonth > 0 {
		maxScore += weightBirthMonth
	}
	if q.Zodiac != "" {
		maxScore += weightZodiac
	}
	if maxScore == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Provide at least one intention, birth month, zodiac sign or chakra")
	}

	var matches []Match
	for _, c := range knowledgeBase {
		raw := 0
		var reasons []string
		for _, in := range q.Intentions {
			if contains(c.Intentions, in) {
				raw += weightIntention
				reasons = append(reasons, "supports "+in)
			}
		}
		if q.BirthMonth > 0 && containsInt(c.BirthMonths, q.BirthMonth) {
			raw += weightBirthMonth
			reasons = append(reasons, "birthstone for your month")
		}
		if q.Zodiac != "" && contains(c.Zodiac, q.Zodiac) {
			raw += weightZodiac
			reasons = append(reasons, "resonates with "+q.Zodiac)
		}
		for _, ch := range q.Chakras {
			if contains(c.Chakras, ch) {
				raw += weightChakra
				reasons = append(reasons, ch+" chakra")
			}
		}
		if raw == 0 {
			continue
		}
		matches = append(matches, Match{
			Crystal: c,
			Score:   int(math.Round(float64(raw) * 100 / float64(maxScore))),
			Reasons: reasons,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Crystal.Name < matches[j].Crystal.Name
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func normalizeQuery(q MatchQuery) MatchQuery {
	q.Intentions = normalizeSet(q.Intentions)
	q.Chakras = normalizeSet(q.Chakras)
	q.Zodiac = strings.ToLower(strings.TrimSpace(q.Zodiac))
	return q
}

func normalizeSet(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, n := range list {
		if n == v {
			return true
		}
	}
	return false
}
