package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dcode-github/property_management_system/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Audits is the append-only audit trail. Entries are only ever inserted.
type Audits struct {
	coll *mongo.Collection
}

func NewAudits(coll *mongo.Collection) *Audits {
	return &Audits{coll: coll}
}

func (r *Audits) Record(ctx context.Context, entry *models.AuditEntry) error {
	entry.ID = primitive.NewObjectID()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("recording audit entry: %w", err)
	}
	return nil
}
