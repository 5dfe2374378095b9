package model

import (
	"time"
)

// Booking reserves one console for the half-open window [StartTime, EndTime).
// Ids are assigned from a counter on insertion, grow monotonically and are
// never reused. A booking is written exactly once and never mutated; there is
// no cancel or edit path.
type Booking struct {
	ID        int64     `json:"id" bson:"_id"`
	UserID    int64     `json:"user_id" bson:"user_id"`
	ConsoleID int64     `json:"console_id" bson:"console_id"`
	StartTime time.Time `json:"start_time" bson:"start_time"`
	EndTime   time.Time `json:"end_time" bson:"end_time"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Overlaps reports whether the booking's window intersects [start, end).
// Both bounds are strict, so a booking ending exactly when another starts is
// not a conflict.
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

// ReserveRequest is the reservation request body. Timestamps arrive as
// "2006-01-02 15:04:05" strings and are parsed before any other check runs.
// Hours, when present, overrides the accrual derived from the window length.
type ReserveRequest struct {
	UserID    int64    `json:"user_id" validate:"required,gt=0"`
	ConsoleID int64    `json:"console_id" validate:"required,gt=0"`
	StartTime string   `json:"start_time" validate:"required"`
	EndTime   string   `json:"end_time" validate:"required"`
	Hours     *float64 `json:"hours,omitempty" validate:"omitempty,gt=0"`
}

// BookingReceipt is returned from a successful reservation: the stored
// booking, the hours it accrued and the member's new playtime total.
type BookingReceipt struct {
	Booking      *Booking `json:"booking"`
	HoursAccrued float64  `json:"hours_accrued"`
	Playtime     float64  `json:"playtime"`
}

// BookingView is the listing projection joined with the owning username and
// console name.
type BookingView struct {
	ID        int64     `json:"id" bson:"_id"`
	Username  string    `json:"username" bson:"username"`
	Console   string    `json:"console" bson:"console"`
	StartTime time.Time `json:"start_time" bson:"start_time"`
	EndTime   time.Time `json:"end_time" bson:"end_time"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
