package clock

import (
	"fmt"
	"time"
)

// Layout is the only timestamp format accepted on the booking boundary.
// It is zero-padded and fixed-width, so the stored strings also sort
// chronologically, but all comparisons inside the engine happen on parsed
// time.Time values.
const Layout = "2006-01-02 15:04:05"

// Parse parses a boundary timestamp. Anything that does not match Layout
// exactly is rejected.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q must match format '%s': %w", s, "YYYY-MM-DD HH:MM:SS", err)
	}
	return t, nil
}

// Format renders an instant back into the boundary format.
func Format(t time.Time) string {
	return t.Format(Layout)
}
