// Package localtime converts between instants and the clinic's local
// wall-clock ISO-8601 form ("2006-01-02T15:04:05", no zone designator).
package localtime

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the wall-clock format exchanged with the model.
const Layout = "2006-01-02T15:04:05"

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.000Z0700",
}

var naiveLayouts = []string{
	Layout,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Format renders an instant as wall-clock time in loc. The conversion goes
// through the zone database, so the offset applied is the one in effect at
// that instant, which keeps DST boundaries correct.
func Format(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(Layout)
}

// Parse reads a timestamp into loc. Zoned inputs (RFC3339, "Z" suffix,
// numeric offsets) are converted; naive inputs are taken as already local.
func Parse(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("cannot parse timestamp %q", raw)
}

// Normalize rewrites any supported timestamp into wall-clock form in loc.
func Normalize(raw string, loc *time.Location) (string, error) {
	t, err := Parse(raw, loc)
	if err != nil {
		return "", err
	}
	return Format(t, loc), nil
}
