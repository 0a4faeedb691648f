package model

import "time"

// RoomLock is an advisory lock taken for the duration of a booking submission.
// Holding the lock serializes conflict checks for a room so two concurrent
// submissions cannot both pass the overlap check.
type RoomLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
