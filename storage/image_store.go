// Package storage persists property image binaries on disk and hands out
// store-relative references. Translating a reference to a physical path is
// this package's sole responsibility; no other component parses image paths.
package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Namespace is the leading segment of every image reference.
const Namespace = "property-images"

// DeleteOutcome reports what a best-effort delete actually did.
type DeleteOutcome int

const (
	Deleted DeleteOutcome = iota
	NotFound
	Failed
)

func (o DeleteOutcome) String() string {
	switch o {
	case Deleted:
		return "deleted"
	case NotFound:
		return "not_found"
	default:
		return "failed"
	}
}

type StorageError struct {
	Op  string // "write" or "delete"
	Ref string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("image %s failed for %s: %v", e.Op, e.Ref, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

var extRe = regexp.MustCompile(`^[a-z0-9]+$`)

// DiskImageStore writes image objects under an explicitly configured root
// directory, one subdirectory per property id.
type DiskImageStore struct {
	root string
}

func NewDiskImageStore(root string) (*DiskImageStore, error) {
	if root == "" {
		return nil, fmt.Errorf("image store root directory not configured")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating image store root %s: %w", root, err)
	}
	return &DiskImageStore{root: root}, nil
}

// Save writes the file bytes under the property's namespace and returns a
// store-relative reference of the form /property-images/{propertyID}/{name}.{ext}.
func (s *DiskImageStore) Save(ctx context.Context, propertyID string, data []byte, originalFilename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &StorageError{Op: "write", Ref: originalFilename, Err: err}
	}
	if len(data) == 0 {
		return "", &StorageError{Op: "write", Ref: originalFilename, Err: fmt.Errorf("no file bytes available")}
	}

	name := uuid.NewString()
	if ext := fileExtension(originalFilename); ext != "" {
		name = name + "." + ext
	}

	dir := filepath.Join(s.root, propertyID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &StorageError{Op: "write", Ref: originalFilename, Err: err}
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", &StorageError{Op: "write", Ref: originalFilename, Err: err}
	}
	return "/" + path.Join(Namespace, propertyID, name), nil
}

// Delete removes the object behind a reference. A missing object is reported
// as NotFound with a nil error; only real I/O problems surface as Failed.
func (s *DiskImageStore) Delete(ctx context.Context, ref string) (DeleteOutcome, error) {
	if err := ctx.Err(); err != nil {
		return Failed, &StorageError{Op: "delete", Ref: ref, Err: err}
	}
	phys, err := s.physicalPath(ref)
	if err != nil {
		return Failed, &StorageError{Op: "delete", Ref: ref, Err: err}
	}
	if err := os.Remove(phys); err != nil {
		if os.IsNotExist(err) {
			return NotFound, nil
		}
		return Failed, &StorageError{Op: "delete", Ref: ref, Err: err}
	}
	return Deleted, nil
}

// DeleteNamespace removes the whole directory tree for a property id.
// Idempotent when the tree is already absent.
func (s *DiskImageStore) DeleteNamespace(ctx context.Context, propertyID string) error {
	if err := ctx.Err(); err != nil {
		return &StorageError{Op: "delete", Ref: propertyID, Err: err}
	}
	if propertyID == "" {
		return &StorageError{Op: "delete", Ref: propertyID, Err: fmt.Errorf("empty property id")}
	}
	if err := os.RemoveAll(filepath.Join(s.root, propertyID)); err != nil {
		return &StorageError{Op: "delete", Ref: propertyID, Err: err}
	}
	return nil
}

// physicalPath maps a store-relative reference back to the on-disk location,
// rejecting anything outside this store's namespace.
func (s *DiskImageStore) physicalPath(ref string) (string, error) {
	prefix := "/" + Namespace + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", fmt.Errorf("reference %q is outside the %s namespace", ref, Namespace)
	}
	rel := path.Clean(strings.TrimPrefix(ref, prefix))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("reference %q escapes the store root", ref)
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

// fileExtension returns the last dot-delimited segment of the name,
// lowercased, or "" when there is none or it is not filesystem-safe.
func fileExtension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	ext := strings.ToLower(name[idx+1:])
	if !extRe.MatchString(ext) {
		return ""
	}
	return ext
}
