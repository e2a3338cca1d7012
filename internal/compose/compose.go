// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package compose renders the posts: one with the planets, one with the Sun
// and the Moon.
package compose

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.astrophena.name/radecbot/internal/sexa"
	"go.astrophena.name/radecbot/internal/sky"
)

const (
	planetsHeader = "Current planetary RA/Decs:"
	sunMoonHeader = "Current RA/Dec of the Sun & Moon:"
)

// Posts observes the sky at t and returns the planets post followed by the
// Sun and Moon post.
func Posts(o *sky.Observer, t time.Time) ([]string, error) {
	bodies := append(append([]sky.Body{}, sky.Planets...), sky.Luminaries...)
	obs, err := o.ObserveAll(bodies, t)
	if err != nil {
		return nil, err
	}

	planets, err := Planets(obs)
	if err != nil {
		return nil, err
	}
	sunMoon, err := SunMoon(obs, sky.Elongation(obs[sky.Sun], obs[sky.Moon]))
	if err != nil {
		return nil, err
	}
	return []string{planets, sunMoon}, nil
}

// Planets renders the positions of the planets.
func Planets(obs map[sky.Body]sky.Position) (string, error) {
	lines := []string{planetsHeader, ""}
	for _, b := range sky.Planets {
		line, err := positionLine(obs, b)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// SunMoon renders the positions of the Sun and the Moon followed by the phase
// of the Moon, given in degrees as returned by [sky.Observer.MoonPhase].
func SunMoon(obs map[sky.Body]sky.Position, phase float64) (string, error) {
	lines := []string{sunMoonHeader, ""}
	for _, b := range sky.Luminaries {
		line, err := positionLine(obs, b)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", MoonPhase(phase))
	return strings.Join(lines, "\n"), nil
}

// MoonPhase describes the phase of the Moon in a sentence.
func MoonPhase(phase float64) string {
	illum := int(math.Round(sky.Illumination(phase)))
	return fmt.Sprintf("The moon is %s and is %d%% illuminated.", sky.PhaseName(phase).Phrase(), illum)
}

func positionLine(obs map[sky.Body]sky.Position, b sky.Body) (string, error) {
	p, ok := obs[b]
	if !ok {
		return "", fmt.Errorf("no position of %v", b)
	}
	return b.Symbol() + ": " + sexa.FormatRA(p.RA) + "; " + sexa.FormatDec(p.Dec), nil
}
