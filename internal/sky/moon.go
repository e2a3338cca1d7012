// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package sky

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/unit"
)

// eclipticJ2000 is the mean obliquity of the ecliptic at J2000.
var eclipticJ2000 = coord.NewObliquity(nutation.MeanObliquity(base.J2000))

// MoonPhase returns the elongation of the Moon east of the Sun along the
// ecliptic at t, in degrees in [0, 360): 0 is new, 90 first quarter, 180 full
// and 270 third quarter.
//
// Longitudes are measured in the J2000 ecliptic. Precession moves both
// bodies alike, so their difference does not depend on the equinox.
func (o *Observer) MoonPhase(t time.Time) (float64, error) {
	sun, err := o.Observe(Sun, t)
	if err != nil {
		return 0, err
	}
	moon, err := o.Observe(Moon, t)
	if err != nil {
		return 0, err
	}
	return Elongation(sun, moon), nil
}

// Elongation returns the phase angle [Observer.MoonPhase] reports for
// already observed positions of the Sun and the Moon.
func Elongation(sun, moon Position) float64 {
	return unit.PMod(eclipticLongitude(moon).Deg()-eclipticLongitude(sun).Deg(), 360)
}

func eclipticLongitude(p Position) unit.Angle {
	eq := &coord.Equatorial{RA: p.RA, Dec: p.Dec}
	return new(coord.Ecliptic).EqToEcl(eq, eclipticJ2000).Lon
}

// Illumination returns the percentage of the Moon's disk that is lit at the
// given phase. It varies linearly from 0 at new moon to 100 at full moon.
func Illumination(phase float64) float64 {
	phase = unit.PMod(phase, 360)
	return 100 * (1 - math.Abs(phase-180)/180)
}

// Phase is a named phase of the Moon.
type Phase int

// Phases of the Moon, in the order they occur.
const (
	NewMoon Phase = iota
	WaxingCrescent
	FirstQuarter
	WaxingGibbous
	FullMoon
	WaningGibbous
	ThirdQuarter
	WaningCrescent
)

var phaseNames = [...]string{
	NewMoon:        "new",
	WaxingCrescent: "waxing crescent",
	FirstQuarter:   "first quarter",
	WaxingGibbous:  "waxing gibbous",
	FullMoon:       "full",
	WaningGibbous:  "waning gibbous",
	ThirdQuarter:   "third quarter",
	WaningCrescent: "waning crescent",
}

// Phrases completing "The moon is ...".
var phasePhrases = [...]string{
	NewMoon:        "new",
	WaxingCrescent: "a waxing crescent",
	FirstQuarter:   "at first quarter",
	WaxingGibbous:  "a waxing gibbous",
	FullMoon:       "full",
	WaningGibbous:  "a waning gibbous",
	ThirdQuarter:   "at third quarter",
	WaningCrescent: "a waning crescent",
}

func (p Phase) String() string {
	if p < NewMoon || p > WaningCrescent {
		return "unknown"
	}
	return phaseNames[p]
}

// Phrase returns the phase as it reads after "The moon is", such as
// "a waxing crescent" or "at first quarter".
func (p Phase) Phrase() string {
	if p < NewMoon || p > WaningCrescent {
		return "unknown"
	}
	return phasePhrases[p]
}

// PhaseName classifies a phase angle in degrees. Quarters and the new and
// full moon span 30 degrees centered on their exact angle; crescents and
// gibbous phases fill the 60 degrees between.
func PhaseName(phase float64) Phase {
	phase = unit.PMod(phase, 360)
	switch {
	case phase >= 345 || phase < 15:
		return NewMoon
	case phase < 75:
		return WaxingCrescent
	case phase < 105:
		return FirstQuarter
	case phase < 165:
		return WaxingGibbous
	case phase < 195:
		return FullMoon
	case phase < 255:
		return WaningGibbous
	case phase < 285:
		return ThirdQuarter
	default:
		return WaningCrescent
	}
}
