// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package sky

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
)

// ttMinusTAI is the constant offset of Terrestrial Time from TAI.
const ttMinusTAI = 32.184

// leapSeconds holds TAI-UTC from each date on.
var leapSeconds = []struct {
	since time.Time
	delta float64
}{
	{date(1972, 1), 10},
	{date(1972, 7), 11},
	{date(1973, 1), 12},
	{date(1974, 1), 13},
	{date(1975, 1), 14},
	{date(1976, 1), 15},
	{date(1977, 1), 16},
	{date(1978, 1), 17},
	{date(1979, 1), 18},
	{date(1980, 1), 19},
	{date(1981, 7), 20},
	{date(1982, 7), 21},
	{date(1983, 7), 22},
	{date(1985, 7), 23},
	{date(1988, 1), 24},
	{date(1990, 1), 25},
	{date(1991, 1), 26},
	{date(1992, 7), 27},
	{date(1993, 7), 28},
	{date(1994, 7), 29},
	{date(1996, 1), 30},
	{date(1997, 7), 31},
	{date(1999, 1), 32},
	{date(2006, 1), 33},
	{date(2009, 1), 34},
	{date(2012, 7), 35},
	{date(2015, 7), 36},
	{date(2017, 1), 37},
}

func date(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// TAIMinusUTC returns the number of seconds TAI is ahead of UTC at t. Before
// 1972 it returns the 1972 value of 10 seconds.
func TAIMinusUTC(t time.Time) float64 {
	delta := leapSeconds[0].delta
	for _, ls := range leapSeconds {
		if t.Before(ls.since) {
			break
		}
		delta = ls.delta
	}
	return delta
}

// JDE returns the Julian ephemeris date (TT) of the UTC instant t.
func JDE(t time.Time) float64 {
	return julian.TimeToJD(t.UTC()) + (TAIMinusUTC(t)+ttMinusTAI)/86400
}

// TDB returns the instant t as TDB seconds past J2000, the time argument of
// JPL ephemerides.
func TDB(t time.Time) float64 {
	jde := JDE(t)
	// TDB-TT periodic term, good to about 30 microseconds.
	g := (357.53 + 0.98560028*(jde-base.J2000)) * math.Pi / 180
	return (jde-base.J2000)*86400 + 0.001657*math.Sin(g) + 0.000014*math.Sin(2*g)
}
