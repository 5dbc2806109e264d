package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dcode-github/property_management_system/backend/models"
	"github.com/dcode-github/property_management_system/backend/services"
)

const maxUploadMemory = 32 << 20

// decodeCreateRequest accepts either multipart/form-data (a "property" JSON
// field plus "images" file parts) or a plain JSON body with no files.
func decodeCreateRequest(r *http.Request) (*models.PropertyInput, []services.ImageUpload, error) {
	if !isMultipart(r) {
		var in models.PropertyInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			return nil, nil, fmt.Errorf("invalid request body: %w", err)
		}
		return &in, nil, nil
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	var in models.PropertyInput
	if err := json.Unmarshal([]byte(r.FormValue("property")), &in); err != nil {
		return nil, nil, fmt.Errorf("invalid property payload: %w", err)
	}
	uploads, err := readUploads(r)
	if err != nil {
		return nil, nil, err
	}
	return &in, uploads, nil
}

// decodeUpdateRequest additionally reads a "delete_images" JSON array of
// references to drop. The JSON form carries the same list inline.
func decodeUpdateRequest(r *http.Request) (*models.PropertyPatch, []services.ImageUpload, []string, error) {
	if !isMultipart(r) {
		var body struct {
			models.PropertyPatch
			DeleteImages []string `json:"delete_images"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, nil, nil, fmt.Errorf("invalid request body: %w", err)
		}
		return &body.PropertyPatch, nil, body.DeleteImages, nil
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	var patch models.PropertyPatch
	if raw := r.FormValue("property"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &patch); err != nil {
			return nil, nil, nil, fmt.Errorf("invalid property payload: %w", err)
		}
	}
	var deleteRefs []string
	if raw := r.FormValue("delete_images"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &deleteRefs); err != nil {
			return nil, nil, nil, fmt.Errorf("invalid delete_images payload: %w", err)
		}
	}
	uploads, err := readUploads(r)
	if err != nil {
		return nil, nil, nil, err
	}
	return &patch, uploads, deleteRefs, nil
}

func readUploads(r *http.Request) ([]services.ImageUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File["images"]
	uploads := make([]services.ImageUpload, 0, len(files))
	for _, header := range files {
		data, err := readFilePart(header)
		if err != nil {
			// A single unreadable part degrades to a save failure for that
			// image; the rest of the batch still goes through.
			log.Printf("Could not read uploaded file %s: %v", header.Filename, err)
			uploads = append(uploads, services.ImageUpload{Filename: header.Filename})
			continue
		}
		uploads = append(uploads, services.ImageUpload{Filename: header.Filename, Data: data})
	}
	return uploads, nil
}

func readFilePart(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}
