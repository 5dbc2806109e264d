package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) (*DiskImageStore, string) {
	t.Helper()
	root := t.TempDir()
	store, err := NewDiskImageStore(root)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return store, root
}

func TestSaveReturnsRelativeReference(t *testing.T) {
	store, root := newTestStore(t)

	ref, err := store.Save(context.Background(), "prop-1", []byte("image-bytes"), "Front Door.JPG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(ref, "/property-images/prop-1/") {
		t.Fatalf("reference %q outside the property namespace", ref)
	}
	if !strings.HasSuffix(ref, ".jpg") {
		t.Fatalf("expected lowercased extension, got %q", ref)
	}

	// The reference must map back to a readable object.
	rel := strings.TrimPrefix(ref, "/property-images/")
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("backing object missing: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Fatalf("object content mismatch: %q", data)
	}
}

func TestSaveExtensionHandling(t *testing.T) {
	store, _ := newTestStore(t)

	tests := []struct {
		name     string
		filename string
		wantExt  string
	}{
		{"plain extension", "photo.png", ".png"},
		{"multiple dots", "archive.tar.gz", ".gz"},
		{"no extension", "README", ""},
		{"trailing dot", "weird.", ""},
		{"unsafe extension", "shot.p?g", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := store.Save(context.Background(), "prop-1", []byte("x"), tt.filename)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantExt == "" {
				if strings.Contains(filepath.Base(ref), ".") {
					t.Fatalf("expected no extension, got %q", ref)
				}
			} else if !strings.HasSuffix(ref, tt.wantExt) {
				t.Fatalf("expected suffix %q, got %q", tt.wantExt, ref)
			}
		})
	}
}

func TestSaveUniqueNames(t *testing.T) {
	store, _ := newTestStore(t)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		ref, err := store.Save(context.Background(), "prop-1", []byte("same-bytes"), "same.jpg")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[ref] {
			t.Fatalf("reference collision on %q", ref)
		}
		seen[ref] = true
	}
}

func TestSaveEmptyBytes(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Save(context.Background(), "prop-1", nil, "empty.jpg")
	if err == nil {
		t.Fatal("expected an error for empty file bytes")
	}
	var sErr *StorageError
	if !errors.As(err, &sErr) || sErr.Op != "write" {
		t.Fatalf("expected a write StorageError, got %v", err)
	}
}

func TestDeleteOutcomes(t *testing.T) {
	store, _ := newTestStore(t)

	ref, err := store.Save(context.Background(), "prop-1", []byte("x"), "a.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outcome, err := store.Delete(context.Background(), ref)
	if err != nil || outcome != Deleted {
		t.Fatalf("expected Deleted, got %v / %v", outcome, err)
	}

	// Deleting again is not-found both times, never an error.
	for i := 0; i < 2; i++ {
		outcome, err = store.Delete(context.Background(), ref)
		if err != nil {
			t.Fatalf("missing object must not error: %v", err)
		}
		if outcome != NotFound {
			t.Fatalf("expected NotFound, got %v", outcome)
		}
	}
}

func TestDeleteRejectsForeignReferences(t *testing.T) {
	store, _ := newTestStore(t)

	for _, ref := range []string{
		"/etc/passwd",
		"/property-images/../outside",
		"not-a-reference",
	} {
		outcome, err := store.Delete(context.Background(), ref)
		if outcome != Failed || err == nil {
			t.Fatalf("reference %q: expected Failed with error, got %v / %v", ref, outcome, err)
		}
	}
}

func TestDeleteNamespace(t *testing.T) {
	store, root := newTestStore(t)

	store.Save(context.Background(), "prop-1", []byte("a"), "a.jpg")
	store.Save(context.Background(), "prop-1", []byte("b"), "b.jpg")
	store.Save(context.Background(), "prop-2", []byte("c"), "c.jpg")

	if err := store.DeleteNamespace(context.Background(), "prop-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "prop-1")); !os.IsNotExist(err) {
		t.Fatal("prop-1 namespace directory still exists")
	}
	if _, err := os.Stat(filepath.Join(root, "prop-2")); err != nil {
		t.Fatalf("prop-2 namespace must be untouched: %v", err)
	}

	// Idempotent when already absent.
	if err := store.DeleteNamespace(context.Background(), "prop-1"); err != nil {
		t.Fatalf("second namespace delete must be a no-op: %v", err)
	}
}

func TestNewStoreRequiresRoot(t *testing.T) {
	if _, err := NewDiskImageStore(""); err == nil {
		t.Fatal("expected an error for an unconfigured root")
	}
}
