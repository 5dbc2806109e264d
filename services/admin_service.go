package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dcode-github/property_management_system/backend/models"
	"github.com/dcode-github/property_management_system/backend/repository"
)

const auditEntityProperty = "property"

// AdminService mirrors the lifecycle surface without owner scoping. Every
// mutation records an audit entry with the pre-state before the change is
// applied; a failed audit write aborts the mutation.
type AdminService struct {
	properties PropertyStore
	images     ImageStore
	audits     AuditStore
}

func NewAdminService(properties PropertyStore, images ImageStore, audits AuditStore) *AdminService {
	return &AdminService{properties: properties, images: images, audits: audits}
}

type AdminListQuery struct {
	PropertyType    string
	City            string
	Search          string
	IncludeInactive bool
	Sort            repository.Sort
	Page            repository.Page
}

func (s *AdminService) List(ctx context.Context, q AdminListQuery) (*ListResult, error) {
	f := repository.Filter{
		Scope:           repository.Unscoped(),
		PropertyType:    q.PropertyType,
		City:            q.City,
		Search:          q.Search,
		IncludeInactive: q.IncludeInactive,
	}
	items, total, err := s.properties.Find(ctx, f, q.Sort, q.Page)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	summary, err := buildSummary(ctx, s.properties, f)
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Properties: newViews(items),
		Pagination: paginate(q.Page, total),
		Summary:    summary,
	}, nil
}

func (s *AdminService) Get(ctx context.Context, id string) (*models.PropertyView, error) {
	p, err := s.properties.FindByID(ctx, id, repository.Unscoped())
	if err != nil {
		return nil, err
	}
	return newView(p), nil
}

// Create persists an admin-created property. The owner may come from the
// input or be left empty for legacy data. Audited with the after-state.
func (s *AdminService) Create(ctx context.Context, adminID string, in *models.PropertyInput, uploads []ImageUpload) (*CreateResult, error) {
	p := in.ToProperty()
	if err := s.properties.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating property: %w", err)
	}

	if err := s.record(ctx, adminID, models.AuditActionCreate, p.ID.Hex(), map[string]interface{}{"after": p}); err != nil {
		return nil, err
	}

	refs, failed := saveImages(ctx, s.images, p.ID.Hex(), uploads)
	if len(refs) > 0 {
		updated, err := s.properties.Update(ctx, p.ID.Hex(), repository.Unscoped(), map[string]interface{}{
			"images":     refs,
			"updated_at": time.Now().UTC(),
		})
		if err != nil {
			log.Printf("Image reference write-back failed for property %s: %v", p.ID.Hex(), err)
		} else {
			p = updated
		}
	}
	return &CreateResult{Property: newView(p), ImagesCount: len(refs), ImagesFailed: failed}, nil
}

func (s *AdminService) Update(ctx context.Context, adminID, id string, patch *models.PropertyPatch, uploads []ImageUpload, deleteRefs []string) (*UpdateResult, error) {
	current, err := s.properties.FindByID(ctx, id, repository.Unscoped())
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, adminID, models.AuditActionUpdate, id, map[string]interface{}{"before": current}); err != nil {
		return nil, err
	}
	return applyUpdate(ctx, s.properties, s.images, repository.Unscoped(), current, patch, uploads, deleteRefs)
}

func (s *AdminService) Delete(ctx context.Context, adminID, id string, preserveHistory bool) (*DeleteResult, error) {
	current, err := s.properties.FindByID(ctx, id, repository.Unscoped())
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, adminID, models.AuditActionDelete, id, map[string]interface{}{"entity": current}); err != nil {
		return nil, err
	}

	if preserveHistory {
		p, err := s.properties.SetActive(ctx, id, repository.Unscoped(), false)
		if err != nil {
			return nil, err
		}
		return &DeleteResult{Mode: "soft", Property: newView(p)}, nil
	}

	p, err := s.properties.Delete(ctx, id, repository.Unscoped())
	if err != nil {
		return nil, err
	}
	deleted, failed := purgeImages(ctx, s.images, p)
	return &DeleteResult{Mode: "hard", Property: newView(p), ImagesDeleted: deleted, ImagesFailed: failed}, nil
}

func (s *AdminService) Activate(ctx context.Context, adminID, id string) (*models.PropertyView, error) {
	return s.setActive(ctx, adminID, id, true, models.AuditActionActivate)
}

func (s *AdminService) Deactivate(ctx context.Context, adminID, id string) (*models.PropertyView, error) {
	return s.setActive(ctx, adminID, id, false, models.AuditActionDeactivate)
}

func (s *AdminService) setActive(ctx context.Context, adminID, id string, active bool, action string) (*models.PropertyView, error) {
	// The lookup runs first so a missing id surfaces as NotFound without
	// leaving an audit entry behind.
	current, err := s.properties.FindByID(ctx, id, repository.Unscoped())
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, adminID, action, id, map[string]interface{}{"before": current}); err != nil {
		return nil, err
	}
	p, err := s.properties.SetActive(ctx, id, repository.Unscoped(), active)
	if err != nil {
		return nil, err
	}
	return newView(p), nil
}

func (s *AdminService) record(ctx context.Context, adminID, action, propertyID string, details map[string]interface{}) error {
	entry := &models.AuditEntry{
		Action:     action,
		EntityType: auditEntityProperty,
		EntityID:   propertyID,
		UserID:     adminID,
		PropertyID: propertyID,
		Details:    details,
	}
	if err := s.audits.Record(ctx, entry); err != nil {
		return fmt.Errorf("audit write for %s on property %s: %w", action, propertyID, err)
	}
	return nil
}
