// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package sky_test

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/soniakeys/meeus/v3/solar"

	"go.astrophena.name/radecbot/internal/sky"
	"go.astrophena.name/radecbot/internal/spk"
)

const (
	day        = 86400.0
	lightSpeed = 299792.458
	moonRatio  = 81.3 // Earth to Moon mass ratio
)

var (
	eps            = 23.4392911 * math.Pi / 180
	cosEps, sinEps = math.Cos(eps), math.Sin(eps)
)

// orbit is a circular orbit inclined to the J2000 ecliptic, in ICRF
// coordinates.
type orbit struct {
	radius float64 // km
	period float64 // days
	phase  float64 // ecliptic longitude at et 0, degrees
	incl   float64 // degrees
}

func (o orbit) at(et float64) spk.Vector {
	th := o.phase*math.Pi/180 + 2*math.Pi*et/(o.period*day)
	x, y := o.radius*math.Cos(th), o.radius*math.Sin(th)
	i := o.incl * math.Pi / 180
	y, z := y*math.Cos(i), y*math.Sin(i)
	return spk.Vector{x, y*cosEps - z*sinEps, y*sinEps + z*cosEps}
}

// motion is the position of a body relative to its center.
type motion struct {
	center int
	pos    func(et float64) spk.Vector
}

func still(center int) motion {
	return motion{center: center, pos: func(float64) spk.Vector { return spk.Vector{} }}
}

// solarSystem mimics how de421.bsp arranges bodies: barycenters around the
// solar system barycenter, planets at their barycenters, and the Earth and
// the Moon around their common barycenter. et0 fixes the Earth's heliocentric
// ecliptic longitude at 100 degrees, as on 1 January.
func solarSystem(et0 float64) map[int]motion {
	const embPeriod = 365.25636
	moon := orbit{radius: 384400 * moonRatio / (moonRatio + 1), period: 27.321661, phase: 30, incl: 5.145}
	return map[int]motion{
		1:   {0, orbit{radius: 5.79e7, period: 87.969, phase: 57, incl: 7.0}.at},
		2:   {0, orbit{radius: 1.082e8, period: 224.701, phase: 115, incl: 3.39}.at},
		3:   {0, orbit{radius: 1.496e8, period: embPeriod, phase: 100 - 360*et0/(embPeriod*day)}.at},
		4:   {0, orbit{radius: 2.279e8, period: 686.98, phase: 229, incl: 1.85}.at},
		5:   {0, orbit{radius: 7.785e8, period: 4332.59, phase: 29, incl: 1.3}.at},
		6:   {0, orbit{radius: 1.4335e9, period: 10759.22, phase: 315, incl: 2.49}.at},
		7:   {0, orbit{radius: 2.8725e9, period: 30688.5, phase: 52, incl: 0.77}.at},
		8:   {0, orbit{radius: 4.4951e9, period: 60182, phase: 344, incl: 1.77}.at},
		10:  {0, orbit{radius: 7e5, period: 4332.59, phase: 209}.at},
		199: still(1),
		299: still(2),
		499: still(4),
		301: {3, moon.at},
		399: {3, func(et float64) spk.Vector {
			m := moon.at(et)
			return spk.Vector{-m[0] / moonRatio, -m[1] / moonRatio, -m[2] / moonRatio}
		}},
	}
}

// fit returns Chebyshev coefficients of f over [mid-radius, mid+radius],
// interpolating at the Chebyshev nodes.
func fit(f func(float64) float64, mid, radius float64, n int) []float64 {
	vals := make([]float64, n)
	for k := range vals {
		vals[k] = f(mid + radius*math.Cos(math.Pi*(float64(k)+0.5)/float64(n)))
	}
	coef := make([]float64, n)
	for j := range coef {
		var sum float64
		for k, v := range vals {
			sum += v * math.Cos(math.Pi*float64(j)*(float64(k)+0.5)/float64(n))
		}
		coef[j] = 2 * sum / float64(n)
	}
	coef[0] /= 2
	return coef
}

// fitKernel tabulates bodies around et0 as multi-record type 2 segments.
func fitKernel(t *testing.T, bodies map[int]motion, et0 float64) *spk.Kernel {
	t.Helper()
	const (
		records = 8
		intlen  = 4 * day
		ncoef   = 15
	)
	start := et0 - records/2*intlen

	var segs []spk.SegmentData
	for _, target := range []int{1, 2, 3, 4, 5, 6, 7, 8, 10, 199, 299, 499, 301, 399} {
		m := bodies[target]
		seg := spk.SegmentData{Target: target, Center: m.center, Start: start, End: start + records*intlen}
		for j := 0; j < records; j++ {
			mid := start + (float64(j)+0.5)*intlen
			var rec [3][]float64
			for c := range rec {
				rec[c] = fit(func(et float64) float64 { return m.pos(et)[c] }, mid, intlen/2, ncoef)
			}
			seg.Records = append(seg.Records, rec)
		}
		segs = append(segs, seg)
	}

	var buf bytes.Buffer
	if err := spk.Write(&buf, "orbits", segs); err != nil {
		t.Fatal(err)
	}
	k, err := spk.New(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	return k
}

// barycentric follows centers up to the solar system barycenter.
func barycentric(bodies map[int]motion, code int, et float64) spk.Vector {
	var v spk.Vector
	for code != 0 {
		m := bodies[code]
		v = v.Add(m.pos(et))
		code = m.center
	}
	return v
}

func TestObserveOrbits(t *testing.T) {
	at := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	// Five leap seconds fell between J2000 and 2024, when TAI-UTC was
	// 37 s, so TT runs 69.184 s ahead of a clock that ignores them. TDB
	// differs from TT by under 2 ms.
	et0 := at.Sub(time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)).Seconds() + 69.184
	if d := math.Abs(sky.TDB(at) - et0); d > 2e-3 {
		t.Fatalf("TDB(%v) = %v, want %v", at, sky.TDB(at), et0)
	}

	bodies := solarSystem(et0)
	o := sky.NewObserver(fitKernel(t, bodies, et0))

	for _, b := range append(append([]sky.Body{}, sky.Luminaries...), sky.Planets...) {
		t.Run(b.String(), func(t *testing.T) {
			earth := barycentric(bodies, sky.Earth.NAIF(), et0)
			var (
				rel spk.Vector
				lt  float64
			)
			for i := 0; i < 10; i++ {
				rel = barycentric(bodies, b.NAIF(), et0-lt).Sub(earth)
				lt = rel.Len() / lightSpeed
			}
			wantRA := math.Atan2(rel[1], rel[0])
			wantDec := math.Atan2(rel[2], math.Hypot(rel[0], rel[1]))

			got, err := o.Observe(b, at)
			if err != nil {
				t.Fatal(err)
			}
			// 1e-7 rad is 0.02″, far below the one second the posts show.
			dRA := math.Remainder(got.RA.Rad()-wantRA, 2*math.Pi) * math.Cos(wantDec)
			if math.Abs(dRA) > 1e-7 {
				t.Errorf("RA = %vh, want %vh", got.RA.Hour(), wantRA*12/math.Pi)
			}
			if d := got.Dec.Rad() - wantDec; math.Abs(d) > 1e-7 {
				t.Errorf("Dec = %v°, want %v°", got.Dec.Deg(), wantDec*180/math.Pi)
			}
			if d := math.Abs(got.Distance - rel.Len()); d > 1e-6*rel.Len() {
				t.Errorf("Distance = %v km, want %v km", got.Distance, rel.Len())
			}
		})
	}

	// The model puts the Sun where it really is on 1 January, so the frame
	// and signs can be checked against an independent solar theory.
	sun, err := o.Observe(sky.Sun, at)
	if err != nil {
		t.Fatal(err)
	}
	ra, dec := solar.ApparentEquatorial(sky.JDE(at))
	if d := math.Abs(math.Remainder(sun.RA.Rad()-ra.Rad(), 2*math.Pi)); d > math.Pi/180 {
		t.Errorf("Sun RA = %vh, solar theory gives %vh", sun.RA.Hour(), ra.Hour())
	}
	if d := math.Abs(sun.Dec.Deg() - dec.Deg()); d > 1 {
		t.Errorf("Sun Dec = %v°, solar theory gives %v°", sun.Dec.Deg(), dec.Deg())
	}
}
