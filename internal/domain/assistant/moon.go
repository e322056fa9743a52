package assistant

import (
	"math"
	"time"
)

// SynodicMonth is the mean length of a lunar cycle in days
const SynodicMonth = 29.530588853

// referenceNewMoon is a known new moon
var referenceNewMoon = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

// MoonPhase is the lunar phase at an instant with crystal guidance
type MoonPhase struct {
	Name         string
	Age          float64 // days since new moon
	Illumination float64 // 0-1
	Guidance     string
	Crystals     []string
}

type phaseInfo struct {
	name     string
	guidance string
	crystals []string
}

var phases = [8]phaseInfo{
	{"New Moon", "A time for setting intentions and quiet beginnings.", []string{"Moonstone", "Black Tourmaline", "Labradorite"}},
	{"Waxing Crescent", "Nurture the intentions you have planted.", []string{"Citrine", "Green Aventurine"}},
	{"First Quarter", "Take action and push through obstacles.", []string{"Carnelian", "Tiger's Eye"}},
	{"Waxing Gibbous", "Refine your plans and stay patient.", []string{"Clear Quartz", "Lapis Lazuli"}},
	{"Full Moon", "Celebrate, release and cleanse your crystals under the light.", []string{"Selenite", "Clear Quartz", "Moonstone"}},
	{"Waning Gibbous", "Share gratitude and what you have learned.", []string{"Rose Quartz", "Amethyst"}},
	{"Last Quarter", "Let go of what no longer serves you.", []string{"Black Tourmaline", "Garnet"}},
	{"Waning Crescent", "Rest, reflect and recharge before the next cycle.", []string{"Amethyst", "Selenite"}},
}

// PhaseAt computes the moon phase for t
func PhaseAt(t time.Time) MoonPhase {
	// time.Duration overflows about 292 years out, so work in seconds
	secs := float64(t.Unix()-referenceNewMoon.Unix()) + float64(t.Nanosecond())/1e9
	days := secs / 86400
	age := math.Mod(days, SynodicMonth)
	if age < 0 {
		age += SynodicMonth
	}
	fraction := age / SynodicMonth
	idx := int(math.Floor(fraction*8+0.5)) % 8
	info := phases[idx]

	return MoonPhase{
		Name:         info.name,
		Age:          age,
		Illumination: (1 - math.Cos(2*math.Pi*fraction)) / 2,
		Guidance:     info.guidance,
		Crystals:     append([]string(nil), info.crystals...),
	}
}
