package value

import (
	"fmt"
	"strings"
	"time"
)

// ISO date/time layouts, matching §8's wg_strf_iso_datetime /
// wg_strp_iso_date / wg_strp_iso_time round trip.
const (
	isoDateLayout = "2006-01-02"
	isoTimeLayout = "15:04:05.00"
)

// FormatISODateTime renders a date word and a time word (either may be the
// zero Word, meaning absent) as a single "YYYY-MM-DD HH:MM:SS.CC" string.
func FormatISODateTime(date, t Word) (string, error) {
	var parts []string
	if date != 0 {
		dt, err := DecodeDate(date)
		if err != nil {
			return "", err
		}
		parts = append(parts, dt.Format(isoDateLayout))
	}
	if t != 0 {
		cs, err := DecodeTime(t)
		if err != nil {
			return "", err
		}
		parts = append(parts, formatCentiseconds(cs))
	}
	return strings.Join(parts, " "), nil
}

func formatCentiseconds(cs int64) string {
	hh := cs / 360000
	mm := (cs / 6000) % 60
	ss := (cs / 100) % 60
	cc := cs % 100
	return fmt.Sprintf("%02d:%02d:%02d.%02d", hh, mm, ss, cc)
}

// ParseISODate parses a "YYYY-MM-DD" string back into a date Word.
func ParseISODate(s string) (Word, error) {
	t, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return 0, ErrBadArgument
	}
	return EncodeDate(t), nil
}

// ParseISOTime parses a "HH:MM:SS.CC" string back into a time Word.
func ParseISOTime(s string) (Word, error) {
	t, err := time.Parse(isoTimeLayout, s)
	if err != nil {
		return 0, ErrBadArgument
	}
	return EncodeTime(t), nil
}
