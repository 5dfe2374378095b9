package model

// Console is a bookable unit on the club floor. The set is seeded once by the
// migration command and is read-only at runtime.
type Console struct {
	ID   int64  `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name" validate:"required,min=2,max=50"`
}
