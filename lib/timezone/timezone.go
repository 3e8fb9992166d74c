package timezone

import (
	"fmt"
	"time"

	// the origin timezone must resolve the same way regardless of the
	// zoneinfo installed on the machine.
	_ "time/tzdata"
)

// DefaultOrigin is the zone codeforces renders its timestamps in.
const DefaultOrigin = "Europe/Moscow"

// Load resolves an IANA zone name, an empty name resolves to DefaultOrigin.
func Load(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultOrigin
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// ParseIn parses a wall clock timestamp that was displayed in `loc` and
// returns it as a time in UTC.
func ParseIn(layout, value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
