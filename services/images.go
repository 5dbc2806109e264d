package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/dcode-github/property_management_system/backend/models"
	"github.com/dcode-github/property_management_system/backend/repository"
	"github.com/dcode-github/property_management_system/backend/storage"
)

// Each image write or delete is bounded so a stuck filesystem degrades into
// a per-image save failure instead of hanging the request.
const imageIOTimeout = 15 * time.Second

// ImageUpload is one raw file supplied on a create or update call.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// saveImages stores a batch concurrently. Results are merged back in input
// order, so the reference list never depends on completion timing. A failed
// image is logged and dropped; it never fails the batch.
func saveImages(ctx context.Context, images ImageStore, propertyID string, uploads []ImageUpload) ([]string, int) {
	if len(uploads) == 0 {
		return nil, 0
	}
	refs := make([]string, len(uploads))
	var wg sync.WaitGroup
	for i, up := range uploads {
		wg.Add(1)
		go func(i int, up ImageUpload) {
			defer wg.Done()
			saveCtx, cancel := context.WithTimeout(ctx, imageIOTimeout)
			defer cancel()
			ref, err := images.Save(saveCtx, propertyID, up.Data, up.Filename)
			if err != nil {
				log.Printf("Image save failed for property %s (%s): %v", propertyID, up.Filename, err)
				return
			}
			refs[i] = ref
		}(i, up)
	}
	wg.Wait()

	saved := make([]string, 0, len(uploads))
	failed := 0
	for _, ref := range refs {
		if ref == "" {
			failed++
			continue
		}
		saved = append(saved, ref)
	}
	return saved, failed
}

// deleteImageRef is the best-effort single delete: the outcome is logged and
// returned, never escalated.
func deleteImageRef(ctx context.Context, images ImageStore, ref string) storage.DeleteOutcome {
	delCtx, cancel := context.WithTimeout(ctx, imageIOTimeout)
	defer cancel()
	outcome, err := images.Delete(delCtx, ref)
	switch outcome {
	case storage.Deleted:
	case storage.NotFound:
		log.Printf("Image %s already absent, nothing to delete", ref)
	default:
		log.Printf("Image delete failed for %s: %v", ref, err)
	}
	return outcome
}

// purgeImages removes every referenced object and then the property's whole
// image namespace. The document is already gone by the time this runs, so
// failures are logged per file and never block the delete from succeeding.
func purgeImages(ctx context.Context, images ImageStore, p *models.Property) (deleted, failed int) {
	for _, ref := range p.Images {
		switch deleteImageRef(ctx, images, ref) {
		case storage.Deleted:
			deleted++
		case storage.Failed:
			failed++
		}
	}
	if err := images.DeleteNamespace(ctx, p.ID.Hex()); err != nil {
		log.Printf("Image namespace cleanup failed for property %s: %v", p.ID.Hex(), err)
	}
	return deleted, failed
}

// UpdateResult reports what an update changed.
type UpdateResult struct {
	Property      *models.PropertyView `json:"property"`
	ChangesCount  int                  `json:"changes_count"`
	UpdatedFields []string             `json:"updated_fields"`
	ImagesAdded   int                  `json:"images_added"`
	ImagesDeleted int                  `json:"images_deleted"`
	ImagesFailed  int                  `json:"images_failed"`
}

// applyUpdate runs the shared update flow against an already-loaded current
// document: diff the scalar fields, merge the image list in two
// order-independent phases, then write everything in one atomic update.
func applyUpdate(ctx context.Context, properties PropertyStore, images ImageStore, scope repository.Scope,
	current *models.Property, patch *models.PropertyPatch, uploads []ImageUpload, deleteRefs []string) (*UpdateResult, error) {

	fields, updated := patch.Diff(current)

	merged := make([]string, len(current.Images))
	copy(merged, current.Images)
	imagesChanged := false

	imagesDeleted := 0
	imagesFailed := 0
	for _, ref := range deleteRefs {
		if idx := indexOf(merged, ref); idx >= 0 {
			merged = append(merged[:idx], merged[idx+1:]...)
			imagesChanged = true
		}
		switch deleteImageRef(ctx, images, ref) {
		case storage.Deleted:
			imagesDeleted++
		case storage.Failed:
			imagesFailed++
		}
	}

	saved, saveFailed := saveImages(ctx, images, current.ID.Hex(), uploads)
	imagesFailed += saveFailed
	if len(saved) > 0 {
		merged = append(merged, saved...)
		imagesChanged = true
	}

	if imagesChanged {
		fields["images"] = merged
		updated = append(updated, "images")
	}

	if len(updated) == 0 {
		return &UpdateResult{
			Property:      newView(current),
			UpdatedFields: []string{},
			ImagesDeleted: imagesDeleted,
			ImagesFailed:  imagesFailed,
		}, nil
	}

	fields["updated_at"] = time.Now().UTC()
	after, err := properties.Update(ctx, current.ID.Hex(), scope, fields)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{
		Property:      newView(after),
		ChangesCount:  len(updated),
		UpdatedFields: updated,
		ImagesAdded:   len(saved),
		ImagesDeleted: imagesDeleted,
		ImagesFailed:  imagesFailed,
	}, nil
}

func indexOf(refs []string, ref string) int {
	for i, r := range refs {
		if r == ref {
			return i
		}
	}
	return -1
}
