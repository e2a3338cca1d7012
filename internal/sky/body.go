// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package sky computes where the Sun, the Moon and the planets appear from
// the Earth, and the phase of the Moon.
package sky

import (
	"fmt"
	"strings"
)

// Body is a solar system body known to the ephemeris.
type Body int

// Bodies the posts report on, and the Earth they are seen from.
const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Earth
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
)

type bodyInfo struct {
	name   string
	naif   int
	symbol string
}

// Outer planets are observed through their system barycenters, the targets
// de421.bsp tabulates for them.
var bodies = [...]bodyInfo{
	Sun:     {"sun", 10, "☉"},
	Moon:    {"moon", 301, "☾"},
	Mercury: {"mercury", 199, "☿"},
	Venus:   {"venus", 299, "♀"},
	Earth:   {"earth", 399, "♁"},
	Mars:    {"mars", 499, "♂"},
	Jupiter: {"jupiter barycenter", 5, "♃"},
	Saturn:  {"saturn barycenter", 6, "♄"},
	Uranus:  {"uranus barycenter", 7, "⛢"},
	Neptune: {"neptune barycenter", 8, "♆"},
}

// Planets lists the planets other than the Earth, from the Sun outwards.
var Planets = []Body{Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune}

// Luminaries lists the Sun and the Moon.
var Luminaries = []Body{Sun, Moon}

// String returns the ephemeris name of b, such as "mars" or
// "jupiter barycenter".
func (b Body) String() string {
	if !b.valid() {
		return fmt.Sprintf("Body(%d)", int(b))
	}
	return bodies[b].name
}

// NAIF returns the NAIF integer code of b.
func (b Body) NAIF() int {
	if !b.valid() {
		return -1
	}
	return bodies[b].naif
}

// Symbol returns the astronomical symbol of b.
func (b Body) Symbol() string {
	if !b.valid() {
		return "?"
	}
	return bodies[b].symbol
}

func (b Body) valid() bool { return b >= Sun && b <= Neptune }

// ParseBody looks a body up by name. Both "jupiter" and
// "jupiter barycenter" name the same body; case is ignored.
func ParseBody(name string) (Body, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for b, info := range bodies {
		if name == info.name || name == strings.TrimSuffix(info.name, " barycenter") {
			return Body(b), nil
		}
	}
	return 0, fmt.Errorf("unknown body %q", name)
}
