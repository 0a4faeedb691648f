package model

import (
	"time"
)

const (
	StatusAvailable = "available"
	StatusReserved  = "reserved"
	StatusEmergency = "emergency"
)

type Booking struct {
	ID             string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomID         string          `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	UserID         string          `json:"user_id" bson:"user_id" validate:"required"`
	Title          string          `json:"title" bson:"title" validate:"required,min=1,max=100"`
	Description    string          `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=500"`
	StartTime      time.Time       `json:"start_time" bson:"start_time" validate:"required"`
	EndTime        time.Time       `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	Status         string          `json:"status" bson:"status" validate:"required,oneof=available reserved emergency"`
	IsEmergency    bool            `json:"is_emergency" bson:"is_emergency"`
	Notes          string          `json:"notes" bson:"notes" validate:"omitempty,max=2000"`
	OverrideEvents []OverrideEvent `json:"override_events,omitempty" bson:"override_events,omitempty"`
	Version        int64           `json:"version" bson:"version"`
	CreatedAt      time.Time       `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

type BookingUpdate struct {
	RoomID      string     `json:"room_id,omitempty" validate:"omitempty,mongodb"`
	Title       string     `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	StartTime   *time.Time `json:"start_time,omitempty" validate:"omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty" validate:"omitempty"`
	Status      string     `json:"status,omitempty" validate:"omitempty,oneof=available reserved emergency"`
	Notes       *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// OverrideEvent records a single emergency override applied to a booking.
// The legacy annotation line appended to Notes carries the same information
// for callers that only read free text.
type OverrideEvent struct {
	OverriddenBy string    `json:"overridden_by" bson:"overridden_by"`
	Title        string    `json:"title" bson:"title"`
	Timestamp    time.Time `json:"timestamp" bson:"timestamp"`
}

// Overlaps reports whether the booking's half-open interval [StartTime, EndTime)
// intersects [start, end). Touching intervals do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}
