package model

import "time"

const (
	ActionCreate = "Create"
	ActionUpdate = "Update"
	ActionDelete = "Delete"
)

// AuditLog is an append-only record of a mutating action. Entries are never
// updated or deleted by normal operation.
type AuditLog struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     string    `json:"user_id" bson:"user_id"`
	UserName   string    `json:"user_name" bson:"user_name"`
	Action     string    `json:"action" bson:"action"`
	EntityName string    `json:"entity_name" bson:"entity_name"`
	EntityID   string    `json:"entity_id,omitempty" bson:"entity_id,omitempty"`
	Details    string    `json:"details,omitempty" bson:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
}
