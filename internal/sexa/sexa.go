// Package sexa formats right ascension and declination the way
// astronomers write them: 13h27m41s and -12°34′56″.
package sexa

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/soniakeys/unit"
)

// Parts is a value split into whole units, minutes and seconds.
type Parts struct {
	Neg   bool
	Units int // hours or degrees
	Min   int
	Sec   int
}

func split(v float64) Parts {
	p := Parts{Neg: v < 0}
	// Round once, on the total, so 59.6 seconds carries into the minutes
	// instead of printing as 60.
	total := int64(math.Round(math.Abs(v) * 3600))
	p.Units = int(total / 3600)
	p.Min = int(total / 60 % 60)
	p.Sec = int(total % 60)
	if p.Units == 0 && p.Min == 0 && p.Sec == 0 {
		p.Neg = false
	}
	return p
}

// HMS splits a right ascension into hours, minutes and seconds, rounded to
// the nearest second. Values that round up to 24h wrap to 00h00m00s.
func HMS(ra unit.RA) Parts {
	p := split(unit.PMod(ra.Hour(), 24))
	if p.Units >= 24 {
		p.Units -= 24
	}
	return p
}

// DMS splits an angle into degrees, minutes and seconds of arc, rounded to
// the nearest second.
func DMS(a unit.Angle) Parts {
	return split(a.Deg())
}

// FormatRA formats ra as HHhMMmSSs.
func FormatRA(ra unit.RA) string {
	p := HMS(ra)
	return fmt.Sprintf("%02dh%02dm%02ds", p.Units, p.Min, p.Sec)
}

// FormatDec formats dec as ±DD°MM′SS″. The sign is always present, so a
// declination just south of the equator reads -00°30′00″.
func FormatDec(dec unit.Angle) string {
	p := DMS(dec)
	sign := "+"
	if p.Neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%02d°%02d′%02d″", sign, p.Units, p.Min, p.Sec)
}

// ErrSyntax is returned for strings that are not in the format produced by
// FormatRA or FormatDec.
var ErrSyntax = errors.New("invalid sexagesimal value")

// ParseRA parses a right ascension formatted by [FormatRA]. Seconds may have
// a fractional part.
func ParseRA(s string) (unit.RA, error) {
	neg, h, m, sec, err := parse(s, "h", "m", "s", false)
	if err != nil {
		return 0, err
	}
	if neg || h > 23 {
		return 0, fmt.Errorf("%w: %q: right ascension out of range", ErrSyntax, s)
	}
	return unit.RAFromHour(float64(h) + float64(m)/60 + sec/3600), nil
}

// ParseDec parses a declination formatted by [FormatDec]. Seconds may have
// a fractional part.
func ParseDec(s string) (unit.Angle, error) {
	neg, d, m, sec, err := parse(s, "°", "′", "″", true)
	if err != nil {
		return 0, err
	}
	if d > 90 || (d == 90 && (m > 0 || sec > 0)) {
		return 0, fmt.Errorf("%w: %q: declination out of range", ErrSyntax, s)
	}
	deg := float64(d) + float64(m)/60 + sec/3600
	if neg {
		deg = -deg
	}
	return unit.AngleFromDeg(deg), nil
}

func parse(s, unitMark, minMark, secMark string, signed bool) (neg bool, units, mins int, sec float64, err error) {
	fail := func() (bool, int, int, float64, error) {
		return false, 0, 0, 0, fmt.Errorf("%w: %q", ErrSyntax, s)
	}

	rest := strings.TrimSpace(s)
	if signed {
		switch {
		case strings.HasPrefix(rest, "+"):
			rest = rest[1:]
		case strings.HasPrefix(rest, "-"):
			neg = true
			rest = rest[1:]
		default:
			return fail()
		}
	}

	us, rest, ok := strings.Cut(rest, unitMark)
	if !ok {
		return fail()
	}
	ms, rest, ok := strings.Cut(rest, minMark)
	if !ok {
		return fail()
	}
	ss, rest, ok := strings.Cut(rest, secMark)
	if !ok || rest != "" {
		return fail()
	}

	if units, err = strconv.Atoi(us); err != nil || units < 0 {
		return fail()
	}
	if mins, err = strconv.Atoi(ms); err != nil || mins < 0 || mins > 59 {
		return fail()
	}
	if sec, err = strconv.ParseFloat(ss, 64); err != nil || sec < 0 || sec >= 60 {
		return fail()
	}
	return neg, units, mins, sec, nil
}
