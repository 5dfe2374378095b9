package model

import "time"

// ConsoleLock is an advisory lock document serializing the overlap check and
// insert for one console. Uniqueness of _id makes acquisition atomic; the
// expires_at TTL index reaps locks left behind by a crashed request.
type ConsoleLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
