// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package skytest builds small ephemeris kernels that place bodies at chosen
// geocentric positions, for tests.
package skytest

import (
	"bytes"
	"math"
	"os"
	"sort"
	"testing"
	"time"

	"go.astrophena.name/radecbot/internal/sky"
	"go.astrophena.name/radecbot/internal/spk"
)

// Span is how far around the requested instant the kernels are valid.
const Span = 10 * 86400.0

// Vector returns the geocentric vector of a body at p.
func Vector(p sky.Position) spk.Vector {
	ra, dec := p.RA.Rad(), p.Dec.Rad()
	return spk.Vector{
		p.Distance * math.Cos(dec) * math.Cos(ra),
		p.Distance * math.Cos(dec) * math.Sin(ra),
		p.Distance * math.Sin(dec),
	}
}

// Segments returns kernel segments holding the Earth at the solar system
// barycenter and every body of pos at its position, constant over Span on
// each side of at.
func Segments(pos map[sky.Body]sky.Position, at time.Time) []spk.SegmentData {
	et := sky.TDB(at)
	start, end := et-Span, et+Span
	segs := []spk.SegmentData{
		spk.Constant(3, 0, spk.Vector{}, start, end),
		spk.Constant(sky.Earth.NAIF(), 3, spk.Vector{}, start, end),
	}

	bodies := make([]sky.Body, 0, len(pos))
	for b := range pos {
		bodies = append(bodies, b)
	}
	sort.Slice(bodies, func(i, j int) bool { return bodies[i] < bodies[j] })

	for _, b := range bodies {
		center := 0
		if b == sky.Moon {
			center = 3
		}
		seg := spk.Constant(b.NAIF(), center, Vector(pos[b]), start, end)
		seg.Name = b.String()
		segs = append(segs, seg)
	}
	return segs
}

// Kernel returns an in-memory kernel built from [Segments].
func Kernel(t *testing.T, pos map[sky.Body]sky.Position, at time.Time) *spk.Kernel {
	t.Helper()
	var buf bytes.Buffer
	if err := spk.Write(&buf, "skytest", Segments(pos, at)); err != nil {
		t.Fatal(err)
	}
	k, err := spk.New(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	return k
}

// WriteKernel writes the kernel built from [Segments] to path.
func WriteKernel(t *testing.T, path string, pos map[sky.Body]sky.Position, at time.Time) {
	t.Helper()
	var buf bytes.Buffer
	if err := spk.Write(&buf, "skytest", Segments(pos, at)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}
