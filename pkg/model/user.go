package model

// User is a club member account. Playtime is a cumulative hour count and only
// ever grows: successful bookings and direct increments add to it, nothing
// subtracts.
type User struct {
	ID           int64   `json:"id" bson:"_id"`
	Username     string  `json:"username" bson:"username" validate:"required,min=2,max=50"`
	PasswordHash string  `json:"-" bson:"password_hash"`
	Playtime     float64 `json:"playtime" bson:"playtime"`
	Email        string  `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Phone        string  `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
}

// Profile is the public projection of a user account.
type Profile struct {
	ID       int64   `json:"id" bson:"_id"`
	Username string  `json:"username" bson:"username"`
	Email    string  `json:"email,omitempty" bson:"email,omitempty"`
	Phone    string  `json:"phone,omitempty" bson:"phone,omitempty"`
	Playtime float64 `json:"playtime" bson:"playtime"`
}

// ProfileUpdate carries the mutable contact fields.
type ProfileUpdate struct {
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// Credentials is the register and login request body. The password cap
// matches the bcrypt input limit.
type Credentials struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// PlaytimeRequest is a direct playtime increment outside the booking flow.
type PlaytimeRequest struct {
	Hours float64 `json:"hours" validate:"required,gt=0"`
}
