// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package spk reads JPL SPICE SPK ephemeris kernels such as de421.bsp.
//
// An SPK file is a NAIF Double precision Array File (DAF): a file record,
// a chain of summary records describing segments, and the segment data
// itself. Each segment tabulates the position of a target body relative to a
// center body over a time span. Only Chebyshev segments (data types 2 and 3),
// which is what the JPL planetary ephemerides use, are supported.
//
// Times are TDB seconds past J2000 and positions are kilometers in the
// segment's reference frame (ICRF for the DE series).
package spk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// Errors returned by this package.
var (
	ErrNotSPK          = errors.New("not an SPK file")
	ErrNoSegment       = errors.New("no segment links the bodies")
	ErrOutOfRange      = errors.New("time outside of the ephemeris coverage")
	ErrUnsupportedType = errors.New("unsupported SPK data type")
)

const (
	recordLen = 1024
	wordLen   = 8

	nd = 2 // doubles per summary
	ni = 6 // integers per summary

	// maxChain bounds how many segments are followed from a body towards
	// the root of its tree.
	maxChain = 16
)

// Vector is a position in kilometers.
type Vector [3]float64

// Sub returns v-w.
func (v Vector) Sub(w Vector) Vector { return Vector{v[0] - w[0], v[1] - w[1], v[2] - w[2]} }

// Add returns v+w.
func (v Vector) Add(w Vector) Vector { return Vector{v[0] + w[0], v[1] + w[1], v[2] + w[2]} }

// Len returns the Euclidean length of v.
func (v Vector) Len() float64 { return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2]) }

// Segment describes one segment of a kernel.
type Segment struct {
	Name   string
	Target int
	Center int
	Frame  int
	Type   int
	// Start and End bound the covered time span, in TDB seconds past J2000.
	Start, End float64

	startAddr, endAddr int // 1-based word addresses of the data

	// Chebyshev directory from the end of the segment.
	init, intlen float64
	rsize, n     int
}

// Covers reports whether et falls inside the segment.
func (s *Segment) Covers(et float64) bool { return et >= s.Start && et <= s.End }

func (s *Segment) String() string {
	return fmt.Sprintf("%d -> %d (type %d, frame %d) %q", s.Center, s.Target, s.Type, s.Frame, s.Name)
}

// Kernel is an opened SPK file. It is safe for concurrent use if the
// underlying reader is.
type Kernel struct {
	r        io.ReaderAt
	closer   io.Closer
	order    binary.ByteOrder
	comment  string
	segments []Segment
	byTarget map[int][]int // indices into segments, in file order
}

// Open opens the SPK file at path.
func Open(path string) (*Kernel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	k, err := New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	k.closer = f
	return k, nil
}

// New reads the kernel structure from r. Segment data is read lazily.
func New(r io.ReaderAt) (*Kernel, error) {
	k := &Kernel{r: r, byTarget: make(map[int][]int)}

	var rec [recordLen]byte
	if _, err := r.ReadAt(rec[:], 0); err != nil {
		return nil, fmt.Errorf("%w: reading file record: %v", ErrNotSPK, err)
	}
	if err := Check(rec[:]); err != nil {
		return nil, err
	}
	k.order = byteOrder(rec[:])

	if got1, got2 := k.order.Uint32(rec[8:]), k.order.Uint32(rec[12:]); got1 != nd || got2 != ni {
		return nil, fmt.Errorf("%w: summary format ND=%d NI=%d, want ND=%d NI=%d", ErrNotSPK, got1, got2, nd, ni)
	}
	k.comment = strings.TrimRight(string(rec[16:76]), " \x00")
	fward := int(int32(k.order.Uint32(rec[76:])))

	for next, seen := fward, 0; next > 0; seen++ {
		if seen > 1<<16 {
			return nil, fmt.Errorf("%w: summary record chain does not end", ErrNotSPK)
		}
		var err error
		next, err = k.readSummaries(next)
		if err != nil {
			return nil, err
		}
	}

	for i := range k.segments {
		if err := k.readDirectory(&k.segments[i]); err != nil {
			return nil, err
		}
		k.byTarget[k.segments[i].Target] = append(k.byTarget[k.segments[i].Target], i)
	}
	return k, nil
}

// Check reports whether b, the start of a file, looks like an SPK kernel. It
// needs at least the first 96 bytes.
func Check(b []byte) error {
	if len(b) < 96 {
		return fmt.Errorf("%w: file is too short", ErrNotSPK)
	}
	switch id := string(b[:8]); id {
	case "DAF/SPK ", "NAIF/DAF":
	default:
		return fmt.Errorf("%w: unknown file identifier %q", ErrNotSPK, id)
	}
	order := byteOrder(b)
	if order.Uint32(b[8:]) != nd || order.Uint32(b[12:]) != ni {
		return fmt.Errorf("%w: not an ephemeris summary layout", ErrNotSPK)
	}
	return nil
}

// byteOrder picks the byte order from LOCFMT, falling back to whichever
// order makes ND sensible for files written before LOCFMT existed.
func byteOrder(rec []byte) binary.ByteOrder {
	switch string(rec[88:96]) {
	case "LTL-IEEE":
		return binary.LittleEndian
	case "BIG-IEEE":
		return binary.BigEndian
	}
	if binary.LittleEndian.Uint32(rec[8:]) == nd {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// readSummaries reads the summary record n and its name record and returns
// the number of the next summary record, or zero at the end of the chain.
func (k *Kernel) readSummaries(n int) (int, error) {
	var sum, names [recordLen]byte
	if _, err := k.r.ReadAt(sum[:], int64(n-1)*recordLen); err != nil {
		return 0, fmt.Errorf("%w: reading summary record %d: %v", ErrNotSPK, n, err)
	}
	if _, err := k.r.ReadAt(names[:], int64(n)*recordLen); err != nil {
		return 0, fmt.Errorf("%w: reading name record %d: %v", ErrNotSPK, n+1, err)
	}

	next := int(k.f64(sum[0:]))
	count := int(k.f64(sum[16:]))

	const (
		ss = nd + (ni+1)/2 // summary size in words
		nc = ss * wordLen  // name size in bytes
	)
	if count < 0 || 24+count*ss*wordLen > recordLen {
		return 0, fmt.Errorf("%w: summary record %d claims %d summaries", ErrNotSPK, n, count)
	}

	for i := 0; i < count; i++ {
		b := sum[24+i*ss*wordLen:]
		ints := b[nd*wordLen:]
		seg := Segment{
			Start:     k.f64(b[0:]),
			End:       k.f64(b[8:]),
			Target:    k.i32(ints[0:]),
			Center:    k.i32(ints[4:]),
			Frame:     k.i32(ints[8:]),
			Type:      k.i32(ints[12:]),
			startAddr: k.i32(ints[16:]),
			endAddr:   k.i32(ints[20:]),
			Name:      strings.TrimRight(string(names[i*nc:(i+1)*nc]), " \x00"),
		}
		k.segments = append(k.segments, seg)
	}
	return next, nil
}

func (k *Kernel) readDirectory(s *Segment) error {
	if s.Type != 2 && s.Type != 3 {
		// Other types are listed but cannot be evaluated.
		return nil
	}
	if s.endAddr-s.startAddr < 4 {
		return fmt.Errorf("%w: segment %v is too short", ErrNotSPK, s)
	}
	dir, err := k.words(s.endAddr-3, 4)
	if err != nil {
		return fmt.Errorf("reading directory of segment %v: %w", s, err)
	}
	s.init, s.intlen = dir[0], dir[1]
	s.rsize, s.n = int(dir[2]), int(dir[3])

	comps := 3
	if s.Type == 3 {
		comps = 6
	}
	if s.intlen <= 0 || s.n <= 0 || s.rsize < 2+comps || (s.rsize-2)%comps != 0 {
		return fmt.Errorf("%w: segment %v has a malformed directory", ErrNotSPK, s)
	}
	if want := s.startAddr + s.n*s.rsize + 4 - 1; want != s.endAddr {
		return fmt.Errorf("%w: segment %v: %d records of %d words do not fill the segment", ErrNotSPK, s, s.n, s.rsize)
	}
	return nil
}

func (k *Kernel) f64(b []byte) float64 { return math.Float64frombits(k.order.Uint64(b)) }
func (k *Kernel) i32(b []byte) int     { return int(int32(k.order.Uint32(b))) }

// words reads n doubles starting at the 1-based word address addr.
func (k *Kernel) words(addr, n int) ([]float64, error) {
	buf := make([]byte, n*wordLen)
	if _, err := k.r.ReadAt(buf, int64(addr-1)*wordLen); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	if err := binary.Read(bytes.NewReader(buf), k.order, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the file opened by [Open]. It is a no-op for kernels made
// with [New].
func (k *Kernel) Close() error {
	if k.closer == nil {
		return nil
	}
	return k.closer.Close()
}

// Comment returns the internal file name recorded in the kernel.
func (k *Kernel) Comment() string { return k.comment }

// Segments returns the kernel's segments in file order.
func (k *Kernel) Segments() []Segment {
	out := make([]Segment, len(k.segments))
	copy(out, k.segments)
	return out
}

// Covers reports whether some segment of the kernel covers et.
func (k *Kernel) Covers(et float64) bool {
	for i := range k.segments {
		if k.segments[i].Covers(et) {
			return true
		}
	}
	return false
}

// segmentFor returns the segment giving the position of target at et. Later
// segments take precedence over earlier ones, as in SPICE. found reports
// whether the kernel has any segment for target at all.
func (k *Kernel) segmentFor(target int, et float64) (seg *Segment, found bool) {
	idx := k.byTarget[target]
	for i := len(idx) - 1; i >= 0; i-- {
		if s := &k.segments[idx[i]]; s.Covers(et) {
			return s, true
		}
	}
	return nil, len(idx) > 0
}

// chain returns the position of body relative to the root of its segment
// tree at et, and that root.
func (k *Kernel) chain(body int, et float64) (Vector, int, error) {
	var pos Vector
	for i := 0; i < maxChain; i++ {
		seg, found := k.segmentFor(body, et)
		if seg == nil {
			if found {
				return Vector{}, 0, fmt.Errorf("body %d at %.1f: %w", body, et, ErrOutOfRange)
			}
			return pos, body, nil
		}
		p, err := k.evaluate(seg, et)
		if err != nil {
			return Vector{}, 0, err
		}
		pos = pos.Add(p)
		body = seg.Center
	}
	return Vector{}, 0, fmt.Errorf("body %d: %w: segment chain too long", body, ErrNoSegment)
}

// Compute returns the position of target relative to center at et, in
// kilometers. When no single segment links them, both bodies are resolved
// against the root of their segment tree (the solar system barycenter in
// planetary ephemerides).
func (k *Kernel) Compute(target, center int, et float64) (Vector, error) {
	tpos, troot, err := k.chain(target, et)
	if err != nil {
		return Vector{}, err
	}
	cpos, croot, err := k.chain(center, et)
	if err != nil {
		return Vector{}, err
	}
	if troot != croot {
		return Vector{}, fmt.Errorf("%d relative to %d: %w", target, center, ErrNoSegment)
	}
	return tpos.Sub(cpos), nil
}

// evaluate computes the position given by segment s at et.
func (k *Kernel) evaluate(s *Segment, et float64) (Vector, error) {
	if s.Type != 2 && s.Type != 3 {
		return Vector{}, fmt.Errorf("segment %v: %w", s, ErrUnsupportedType)
	}

	i := int(math.Floor((et - s.init) / s.intlen))
	if i == s.n && et <= s.End {
		// The final instant belongs to the last record.
		i = s.n - 1
	}
	if i < 0 || i >= s.n {
		return Vector{}, fmt.Errorf("segment %v at %.1f: %w", s, et, ErrOutOfRange)
	}

	rec, err := k.words(s.startAddr+i*s.rsize, s.rsize)
	if err != nil {
		return Vector{}, fmt.Errorf("reading record %d of segment %v: %w", i, s, err)
	}
	mid, radius := rec[0], rec[1]
	comps := 3
	if s.Type == 3 {
		comps = 6
	}
	ncoef := (s.rsize - 2) / comps
	x := (et - mid) / radius

	var pos Vector
	for c := range pos {
		pos[c] = Chebyshev(rec[2+c*ncoef:2+(c+1)*ncoef], x)
	}
	return pos, nil
}

// Chebyshev evaluates the Chebyshev series with coefficients coef at x in
// [-1, 1] using Clenshaw's recurrence.
func Chebyshev(coef []float64, x float64) float64 {
	if len(coef) == 0 {
		return 0
	}
	var b1, b2 float64
	for i := len(coef) - 1; i >= 1; i-- {
		b1, b2 = 2*x*b1-b2+coef[i], b1
	}
	return x*b1 - b2 + coef[0]
}
