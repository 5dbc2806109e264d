package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dcode-github/property_management_system/backend/models"
	"github.com/dcode-github/property_management_system/backend/repository"
)

// PropertyService is the owner-scoped lifecycle service. Every call carries
// the caller's user id and only ever touches documents that id owns.
type PropertyService struct {
	properties PropertyStore
	images     ImageStore
}

func NewPropertyService(properties PropertyStore, images ImageStore) *PropertyService {
	return &PropertyService{properties: properties, images: images}
}

type CreateResult struct {
	Property     *models.PropertyView `json:"property"`
	ImagesCount  int                  `json:"images_count"`
	ImagesFailed int                  `json:"images_failed"`
}

// Create persists the document first to obtain an id, then stores the
// supplied images best-effort and writes the surviving references back.
func (s *PropertyService) Create(ctx context.Context, userID string, in *models.PropertyInput, uploads []ImageUpload) (*CreateResult, error) {
	p := in.ToProperty()
	p.UserID = userID
	if err := s.properties.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating property: %w", err)
	}

	refs, failed := saveImages(ctx, s.images, p.ID.Hex(), uploads)
	if len(refs) > 0 {
		updated, err := s.properties.Update(ctx, p.ID.Hex(), repository.Owner(userID), map[string]interface{}{
			"images":     refs,
			"updated_at": time.Now().UTC(),
		})
		if err != nil {
			// The property exists; losing the reference write-back is the
			// same partial state as a crash between the two steps.
			log.Printf("Image reference write-back failed for property %s: %v", p.ID.Hex(), err)
		} else {
			p = updated
		}
	}

	return &CreateResult{
		Property:     newView(p),
		ImagesCount:  len(refs),
		ImagesFailed: failed,
	}, nil
}

type ListQuery struct {
	PropertyType string
	City         string
	Sort         repository.Sort
	Page         repository.Page
}

type Pagination struct {
	Page            int64 `json:"page"`
	Limit           int64 `json:"limit"`
	Total           int64 `json:"total"`
	HasNextPage     bool  `json:"has_next_page"`
	HasPreviousPage bool  `json:"has_previous_page"`
}

type Summary struct {
	ByType map[string]int64 `json:"by_type"`
	ByCity map[string]int64 `json:"by_city"`
}

type ListResult struct {
	Properties []*models.PropertyView `json:"properties"`
	Pagination Pagination             `json:"pagination"`
	Summary    Summary                `json:"summary"`
}

// List returns one page plus summary aggregates computed over the full
// unpaginated active set for the caller's scope.
func (s *PropertyService) List(ctx context.Context, userID string, q ListQuery) (*ListResult, error) {
	f := repository.Filter{
		Scope:        repository.Owner(userID),
		PropertyType: q.PropertyType,
		City:         q.City,
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

// Get returns one property with derived fields. The include parameter is a
// comma-separated set of relation expansions; ical_connections is the only
// recognized token and currently expands to nothing. Unknown tokens are
// ignored rather than rejected.
func (s *PropertyService) Get(ctx context.Context, userID, id, include string) (*models.PropertyView, error) {
	p, err := s.properties.FindByID(ctx, id, repository.Owner(userID))
	if err != nil {
		return nil, err
	}
	if includesToken(include, "ical_connections") {
		// Calendar connections are not expanded yet; the token is accepted
		// so callers can start sending it ahead of the feature.
		log.Printf("ical_connections expansion requested for property %s, not yet available", id)
	}
	return newView(p), nil
}

// includesToken checks a comma-separated include list for one token.
// Unknown tokens are tolerated, never an error.
func includesToken(include, token string) bool {
	for _, t := range strings.Split(include, ",") {
		if strings.TrimSpace(t) == token {
			return true
		}
	}
	return false
}

// Update diffs the patch against the current document, merges the image
// list and writes the result atomically. A no-op update succeeds with
// ChangesCount zero.
func (s *PropertyService) Update(ctx context.Context, userID, id string, patch *models.PropertyPatch, uploads []ImageUpload, deleteRefs []string) (*UpdateResult, error) {
	scope := repository.Owner(userID)
	current, err := s.properties.FindByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	return applyUpdate(ctx, s.properties, s.images, scope, current, patch, uploads, deleteRefs)
}

type DeleteResult struct {
	Mode          string               `json:"mode"` // "soft" or "hard"
	Property      *models.PropertyView `json:"property"`
	ImagesDeleted int                  `json:"images_deleted"`
	ImagesFailed  int                  `json:"images_failed"`
}

// Delete either soft-deactivates (preserveHistory, images kept) or hard
// deletes the document and then purges its images best-effort. Once the
// document is gone the delete reports success regardless of image cleanup.
func (s *PropertyService) Delete(ctx context.Context, userID, id string, preserveHistory bool) (*DeleteResult, error) {
	scope := repository.Owner(userID)
	if preserveHistory {
		p, err := s.properties.SetActive(ctx, id, scope, false)
		if err != nil {
			return nil, err
		}
		return &DeleteResult{Mode: "soft", Property: newView(p)}, nil
	}

	p, err := s.properties.Delete(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	deleted, failed := purgeImages(ctx, s.images, p)
	return &DeleteResult{
		Mode:          "hard",
		Property:      newView(p),
		ImagesDeleted: deleted,
		ImagesFailed:  failed,
	}, nil
}

func paginate(page repository.Page, total int64) Pagination {
	return Pagination{
		Page:            page.Number,
		Limit:           page.Limit,
		Total:           total,
		HasNextPage:     page.Number*page.Limit < total,
		HasPreviousPage: page.Number > 1,
	}
}

func buildSummary(ctx context.Context, properties PropertyStore, f repository.Filter) (Summary, error) {
	byType, err := properties.GroupCount(ctx, f, "property_type")
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing by type: %w", err)
	}
	byCity, err := properties.GroupCount(ctx, f, "address.city")
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing by city: %w", err)
	}
	return Summary{ByType: byType, ByCity: byCity}, nil
}
