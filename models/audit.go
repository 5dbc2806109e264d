package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AuditActionCreate     = "CREATE"
	AuditActionUpdate     = "UPDATE"
	AuditActionDelete     = "DELETE"
	AuditActionActivate   = "ACTIVATE"
	AuditActionDeactivate = "DEACTIVATE"
)

// AuditEntry is an append-only record of an administrative mutation.
// Entries are created by the audit recorder and never updated or deleted.
type AuditEntry struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Action     string                 `bson:"action" json:"action"`
	EntityType string                 `bson:"entity_type" json:"entity_type"`
	EntityID   string                 `bson:"entity_id" json:"entity_id"`
	UserID     string                 `bson:"user_id" json:"user_id"`
	PropertyID string                 `bson:"property_id" json:"property_id"`
	Details    map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt  time.Time              `bson:"created_at" json:"created_at"`
}
