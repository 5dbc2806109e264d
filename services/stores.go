// Package services orchestrates the property lifecycle across the document
// store, the image store and the audit trail. Repository and store failures
// are normalized here; handlers above only ever see typed errors or results.
package services

import (
	"context"

	"github.com/dcode-github/property_management_system/backend/models"
	"github.com/dcode-github/property_management_system/backend/repository"
	"github.com/dcode-github/property_management_system/backend/storage"
)

// ErrNotFound is the single not-found condition used by both the scoped and
// the admin service.
var ErrNotFound = repository.ErrNotFound

type PropertyStore interface {
	Create(ctx context.Context, p *models.Property) error
	Find(ctx context.Context, f repository.Filter, sort repository.Sort, page repository.Page) ([]models.Property, int64, error)
	FindByID(ctx context.Context, id string, scope repository.Scope) (*models.Property, error)
	Update(ctx context.Context, id string, scope repository.Scope, fields map[string]interface{}) (*models.Property, error)
	Delete(ctx context.Context, id string, scope repository.Scope) (*models.Property, error)
	SetActive(ctx context.Context, id string, scope repository.Scope, active bool) (*models.Property, error)
	GroupCount(ctx context.Context, f repository.Filter, field string) (map[string]int64, error)
}

type ImageStore interface {
	Save(ctx context.Context, propertyID string, data []byte, originalFilename string) (string, error)
	Delete(ctx context.Context, ref string) (storage.DeleteOutcome, error)
	DeleteNamespace(ctx context.Context, propertyID string) error
}

type AuditStore interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
}
