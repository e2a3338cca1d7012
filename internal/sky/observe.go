// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package sky

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/unit"

	"go.astrophena.name/radecbot/internal/spk"
)

// lightSpeed is the speed of light in km/s.
const lightSpeed = 299792.458

// Ephemeris gives the position of one body relative to another, in km, at a
// TDB time in seconds past J2000. [*spk.Kernel] implements it.
type Ephemeris interface {
	Compute(target, center int, et float64) (spk.Vector, error)
}

// Position is where a body appears from the center of the Earth.
type Position struct {
	RA       unit.RA    // right ascension, ICRF
	Dec      unit.Angle // declination, ICRF
	Distance float64    // km
}

// Observer computes positions as seen from the Earth.
type Observer struct {
	eph Ephemeris
}

// NewObserver returns an Observer backed by eph.
func NewObserver(eph Ephemeris) *Observer {
	return &Observer{eph: eph}
}

// ssb is the NAIF code of the solar system barycenter.
const ssb = 0

// astrometric returns the vector from the Earth to b at t, with b taken at
// the time its light left it.
func (o *Observer) astrometric(b Body, t time.Time) (spk.Vector, error) {
	if b == Earth || !b.valid() {
		return spk.Vector{}, fmt.Errorf("cannot observe %v from the Earth", b)
	}
	et := TDB(t)
	earth, err := o.eph.Compute(Earth.NAIF(), ssb, et)
	if err != nil {
		return spk.Vector{}, fmt.Errorf("earth: %w", err)
	}

	var (
		rel spk.Vector
		lt  float64
	)
	// Three iterations converge well below a millisecond of light time.
	for i := 0; i < 3; i++ {
		p, err := o.eph.Compute(b.NAIF(), ssb, et-lt)
		if err != nil {
			return spk.Vector{}, fmt.Errorf("%v: %w", b, err)
		}
		rel = p.Sub(earth)
		lt = rel.Len() / lightSpeed
	}
	return rel, nil
}

// Observe returns the astrometric geocentric position of b at t.
func (o *Observer) Observe(b Body, t time.Time) (Position, error) {
	v, err := o.astrometric(b, t)
	if err != nil {
		return Position{}, err
	}
	return toPosition(v), nil
}

// ObserveAll observes each of the given bodies at the same instant.
func (o *Observer) ObserveAll(bs []Body, t time.Time) (map[Body]Position, error) {
	out := make(map[Body]Position, len(bs))
	for _, b := range bs {
		p, err := o.Observe(b, t)
		if err != nil {
			return nil, err
		}
		out[b] = p
	}
	return out, nil
}

func toPosition(v spk.Vector) Position {
	return Position{
		RA:       unit.RAFromRad(math.Atan2(v[1], v[0])),
		Dec:      unit.Angle(math.Atan2(v[2], math.Hypot(v[0], v[1]))),
		Distance: v.Len(),
	}
}
