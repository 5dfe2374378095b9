package accrual

import (
	"fmt"
	"math"
	"time"
)

// Mode selects how playtime hours are derived from a booking interval.
type Mode string

const (
	// ModeFloor credits whole hours, rounding the interval down.
	ModeFloor Mode = "floor"
	// ModeFractional credits the raw fractional hour count.
	ModeFractional Mode = "fractional"
)

// Policy is the single accrual configuration for the service. A deployment
// picks one mode and one minimum; the engine never mixes modes per request.
type Policy struct {
	Mode         Mode
	MinimumHours float64
}

// DefaultPolicy matches the historical behavior: whole hours with a one hour
// minimum for any valid non-empty interval.
func DefaultPolicy() Policy {
	return Policy{
		Mode:         ModeFloor,
		MinimumHours: 1,
	}
}

func (p Policy) Validate() error {
	if p.Mode != ModeFloor && p.Mode != ModeFractional {
		return fmt.Errorf("accrual mode must be %q or %q, got: %q", ModeFloor, ModeFractional, p.Mode)
	}
	if p.MinimumHours <= 0 {
		return fmt.Errorf("accrual minimum must be positive, got: %v", p.MinimumHours)
	}
	return nil
}

// Delta computes the playtime hours credited for a booking of [start, end).
// An explicit hour count, when present, overrides the derived value outright.
// The result is never below the policy minimum, so short intervals cannot
// round down to a zero credit.
func (p Policy) Delta(start, end time.Time, explicit *float64) float64 {
	var hours float64
	if explicit != nil {
		hours = *explicit
	} else {
		hours = end.Sub(start).Seconds() / 3600
		if p.Mode == ModeFloor {
			hours = math.Floor(hours)
		}
	}

	if hours < p.MinimumHours {
		return p.MinimumHours
	}
	return hours
}
