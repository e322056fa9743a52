package assistant

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchTemplate(t *testing.T) {
	tests := []struct {
		message string
		want    string
		matched bool
	}{
		{"I've been so anxious and stressed at work", "calm", true},
		{"Looking for something for LOVE and romance", "love", true},
		{"Need protection from negative energy vampire coworkers", "protection", true},
		{"birthday gift for my mother", "gift", true},
		{"hello", "general", false},
		{"", "general", false},
		// "lovely" must not count as "love"
		{"what a lovely shop", "general", false},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			tpl, matched := MatchTemplate(tt.message)
			assert.Equal(t, tt.want, tpl.Name)
			assert.Equal(t, tt.matched, matched)
		})
	}
}

func TestMatchTemplateTieGoesToEarlier(t *testing.T) {
	// one hit each for love and calm; love is listed first
	tpl, ok := MatchTemplate("love and peace")
	require.True(t, ok)
	assert.Equal(t, "love", tpl.Name)
}

func TestTemplateRender(t *testing.T) {
	tpl, _ := MatchTemplate("money for my business")
	out := tpl.Render()
	assert.Contains(t, out, "Citrine, Green Aventurine and Tiger's Eye")
	assert.NotContains(t, out, "{{crystals}}")
	assert.Equal(t, []string{"Citrine", "Green Aventurine", "Tiger's Eye"}, tpl.CrystalNames())
}

func TestJoinNatural(t *testing.T) {
	assert.Equal(t, "", JoinNatural(nil))
	assert.Equal(t, "a", JoinNatural([]string{"a"}))
	assert.Equal(t, "a and b", JoinNatural([]string{"a", "b"}))
	assert.Equal(t, "a, b and c", JoinNatural([]string{"a", "b", "c"}))
}

func TestFindCrystalsIn(t *testing.T) {
	got := FindCrystalsIn("Try ROSE QUARTZ with amethyst, and more rose quartz. Tiger's eye too.")
	assert.Equal(t, []string{"Rose Quartz", "Amethyst", "Tiger's Eye"}, got)
	assert.Empty(t, FindCrystalsIn("no stones mentioned here"))
}

func TestLookupCrystal(t *testing.T) {
	c, ok := LookupCrystal("  lapis lazuli ")
	require.True(t, ok)
	assert.Equal(t, "Lapis Lazuli", c.Name)

	_, ok = LookupCrystal("kryptonite")
	assert.False(t, ok)
}

func TestScoreCrystals(t *testing.T) {
	t.Run("ranks by weighted overlap", func(t *testing.T) {
		matches, err := ScoreCrystals(MatchQuery{Intentions: []string{"Calm", "sleep"}, BirthMonth: 2}, 3)
		require.NoError(t, err)
		require.NotEmpty(t, matches)

		top := matches[0]
		assert.Equal(t, "Amethyst", top.Crystal.Name)
		assert.Equal(t, 100, top.Score)
		assert.Contains(t, top.Reasons, "birthstone for your month")
		assert.LessOrEqual(t, len(matches), 3)
		for i := 1; i < len(matches); i++ {
			assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		q := MatchQuery{Intentions: []string{"protection"}, Zodiac: "Scorpio"}
		a, err := ScoreCrystals(q, 0)
		require.NoError(t, err)
		b, err := ScoreCrystals(q, 0)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Equal(t, "Black Tourmaline", a[0].Crystal.Name)
	})

	t.Run("requires some preference", func(t *testing.T) {
		_, err := ScoreCrystals(MatchQuery{Intentions: []string{" "}}, 0)
		assert.Error(t, err)
	})

	t.Run("rejects bad month", func(t *testing.T) {
		_, err := ScoreCrystals(MatchQuery{BirthMonth: 13}, 0)
		assert.Error(t, err)
	})
}

func TestPhaseAt(t *testing.T) {
	tests := []struct {
		offsetDays float64
		want       string
	}{
		{0, "New Moon"},
		{SynodicMonth / 4, "First Quarter"},
		{SynodicMonth / 2, "Full Moon"},
		{SynodicMonth * 3 / 4, "Last Quarter"},
		{SynodicMonth * 10, "New Moon"},
		{-SynodicMonth / 2, "Full Moon"},
	}
	for _, tt := range tests {
		at := referenceNewMoon.Add(time.Duration(tt.offsetDays * 24 * float64(time.Hour)))
		p := PhaseAt(at)
		assert.Equal(t, tt.want, p.Name, "offset %.2f", tt.offsetDays)
		assert.NotEmpty(t, p.Crystals)
	}

	full := PhaseAt(referenceNewMoon.Add(time.Duration(SynodicMonth / 2 * 24 * float64(time.Hour))))
	assert.InDelta(t, 1.0, full.Illumination, 0.001)
	assert.InDelta(t, 0.0, PhaseAt(referenceNewMoon).Illumination, 0.001)
}

func TestPhaseAt_DistantDates(t *testing.T) {
	for _, year := range []int{1600, 2300, 2500, 9999} {
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		later := start.AddDate(0, 0, 14)

		a, b := PhaseAt(start), PhaseAt(later)
		assert.InDelta(t, math.Mod(a.Age+14, SynodicMonth), b.Age, 1e-6, "year %d", year)
		assert.NotEqual(t, a.Name, b.Name, "year %d", year)
		assert.GreaterOrEqual(t, a.Age, 0.0)
		assert.Less(t, a.Age, SynodicMonth)
	}
}
