// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package spk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// SegmentData is the content of a type 2 segment for [Write].
type SegmentData struct {
	Name           string
	Target, Center int
	Frame          int // 1 (J2000) if zero
	// Start and End bound the covered span. Records split it into
	// len(Records) equal intervals.
	Start, End float64
	// Records hold the Chebyshev coefficients of each interval, x then y
	// then z, all of the same degree.
	Records [][3][]float64
}

// Constant returns a segment holding target at pos relative to center for
// the whole of [start, end].
func Constant(target, center int, pos Vector, start, end float64) SegmentData {
	return SegmentData{
		Target:  target,
		Center:  center,
		Start:   start,
		End:     end,
		Records: [][3][]float64{{{pos[0]}, {pos[1]}, {pos[2]}}},
	}
}

const maxSummaries = (recordLen - 24) / ((nd + (ni+1)/2) * wordLen)

// Write writes a little-endian SPK kernel with the given type 2 segments to
// w. It is meant for building small fixture kernels.
func Write(w io.Writer, comment string, segs []SegmentData) error {
	if len(segs) == 0 {
		return errors.New("spk: no segments")
	}
	if len(segs) > maxSummaries {
		return fmt.Errorf("spk: at most %d segments are supported, got %d", maxSummaries, len(segs))
	}

	le := binary.LittleEndian
	var (
		file  = make([]byte, recordLen)
		sum   = make([]byte, recordLen)
		names = make([]byte, recordLen)
		data  []float64
	)
	// Data starts right after the file, summary and name records.
	addr := 3*recordLen/wordLen + 1

	for i, s := range segs {
		if len(s.Records) == 0 {
			return fmt.Errorf("spk: segment %d has no records", i)
		}
		if !(s.End > s.Start) {
			return fmt.Errorf("spk: segment %d has an empty time span", i)
		}
		deg := len(s.Records[0][0])
		if deg == 0 {
			return fmt.Errorf("spk: segment %d has no coefficients", i)
		}
		intlen := (s.End - s.Start) / float64(len(s.Records))
		start := addr
		for j, rec := range s.Records {
			for c := range rec {
				if len(rec[c]) != deg {
					return fmt.Errorf("spk: segment %d record %d: component %d has %d coefficients, want %d", i, j, c, len(rec[c]), deg)
				}
			}
			mid := s.Start + (float64(j)+0.5)*intlen
			data = append(data, mid, intlen/2)
			data = append(data, rec[0]...)
			data = append(data, rec[1]...)
			data = append(data, rec[2]...)
		}
		rsize := 2 + 3*deg
		data = append(data, s.Start, intlen, float64(rsize), float64(len(s.Records)))
		addr += len(s.Records)*rsize + 4

		frame := s.Frame
		if frame == 0 {
			frame = 1
		}
		b := sum[24+i*40:]
		le.PutUint64(b[0:], math.Float64bits(s.Start))
		le.PutUint64(b[8:], math.Float64bits(s.End))
		for k, v := range []int{s.Target, s.Center, frame, 2, start, addr - 1} {
			le.PutUint32(b[16+4*k:], uint32(int32(v)))
		}
		copy(names[i*40:(i+1)*40], pad(s.Name, 40))
	}
	le.PutUint64(sum[0:], math.Float64bits(0))
	le.PutUint64(sum[8:], math.Float64bits(0))
	le.PutUint64(sum[16:], math.Float64bits(float64(len(segs))))

	copy(file[0:], "DAF/SPK ")
	le.PutUint32(file[8:], nd)
	le.PutUint32(file[12:], ni)
	copy(file[16:76], pad(comment, 60))
	le.PutUint32(file[76:], 2) // FWARD
	le.PutUint32(file[80:], 2) // BWARD
	le.PutUint32(file[84:], uint32(addr))
	copy(file[88:], "LTL-IEEE")

	for _, rec := range [][]byte{file, sum, names} {
		if _, err := w.Write(rec); err != nil {
			return err
		}
	}
	// Pad the data to whole records, as DAF files are.
	if rem := len(data) % (recordLen / wordLen); rem != 0 {
		data = append(data, make([]float64, recordLen/wordLen-rem)...)
	}
	return binary.Write(w, le, data)
}

func pad(s string, n int) []byte {
	b := []byte(s)
	if len(b) > n {
		b = b[:n]
	}
	for len(b) < n {
		b = append(b, ' ')
	}
	return b
}
