package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dcode-github/property_management_system/backend/models"
	"github.com/dcode-github/property_management_system/backend/repository"
	"github.com/dcode-github/property_management_system/backend/services"
	"github.com/dcode-github/property_management_system/backend/storage"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Minimal in-memory stores so handlers can be exercised without mongo.

type fakePropertyStore struct {
	props map[string]*models.Property
}

func (f *fakePropertyStore) Create(ctx context.Context, p *models.Property) error {
	p.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.IsActive = true
	if p.Images == nil {
		p.Images = []string{}
	}
	f.props[p.ID.Hex()] = p
	return nil
}

func (f *fakePropertyStore) Find(ctx context.Context, fl repository.Filter, s repository.Sort, pg repository.Page) ([]models.Property, int64, error) {
	return nil, 0, nil
}

func (f *fakePropertyStore) FindByID(ctx context.Context, id string, scope repository.Scope) (*models.Property, error) {
	p, ok := f.props[id]
	if !ok || (scope.OwnerID != "" && p.UserID != scope.OwnerID) {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakePropertyStore) Update(ctx context.Context, id string, scope repository.Scope, fields map[string]interface{}) (*models.Property, error) {
	return f.FindByID(ctx, id, scope)
}

func (f *fakePropertyStore) Delete(ctx context.Context, id string, scope repository.Scope) (*models.Property, error) {
	p, err := f.FindByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	delete(f.props, id)
	return p, nil
}

func (f *fakePropertyStore) SetActive(ctx context.Context, id string, scope repository.Scope, active bool) (*models.Property, error) {
	p, err := f.FindByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	p.IsActive = active
	return p, nil
}

func (f *fakePropertyStore) GroupCount(ctx context.Context, fl repository.Filter, field string) (map[string]int64, error) {
	return map[string]int64{}, nil
}

type fakeImageStore struct{}

func (fakeImageStore) Save(ctx context.Context, propertyID string, data []byte, name string) (string, error) {
	return "/" + storage.Namespace + "/" + propertyID + "/" + name, nil
}

func (fakeImageStore) Delete(ctx context.Context, ref string) (storage.DeleteOutcome, error) {
	return storage.Deleted, nil
}

func (fakeImageStore) DeleteNamespace(ctx context.Context, propertyID string) error { return nil }

func newTestHandlerService() (*services.PropertyService, *fakePropertyStore) {
	store := &fakePropertyStore{props: make(map[string]*models.Property)}
	return services.NewPropertyService(store, fakeImageStore{}), store
}

func authedRequest(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), UserIDKey, userID)
	return r.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not a valid envelope: %v", err)
	}
	return resp
}

func TestGetPropertyNotFoundEnvelope(t *testing.T) {
	svc, _ := newTestHandlerService()
	router := mux.NewRouter()
	router.HandleFunc("/api/properties/{id}", GetProperty(svc)).Methods("GET")

	req := authedRequest(httptest.NewRequest("GET", "/api/properties/656e6f2d737563682d696431", nil), "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Success {
		t.Fatal("expected success=false")
	}
	if resp.Error != "not_found" {
		t.Fatalf("expected error=not_found, got %q", resp.Error)
	}
	if resp.Timestamp == "" {
		t.Fatal("envelope must carry a timestamp")
	}
}

func TestCreatePropertyJSONBody(t *testing.T) {
	svc, store := newTestHandlerService()
	router := mux.NewRouter()
	router.HandleFunc("/api/properties", CreateProperty(svc, nil)).Methods("POST")

	body, _ := json.Marshal(models.PropertyInput{
		Name:         "Lakeview Cabin",
		PropertyType: models.TypeCabin,
		Address:      &models.Address{City: "Tahoe", Country: "US"},
		Capacity:     models.Capacity{Accommodates: 4, Bedrooms: 2, Beds: 3, Bathrooms: 1},
	})
	req := authedRequest(httptest.NewRequest("POST", "/api/properties", bytes.NewReader(body)), "user-1")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	if !resp.Success {
		t.Fatalf("expected success envelope, got %+v", resp)
	}
	data := resp.Data.(map[string]interface{})
	property := data["property"].(map[string]interface{})
	if property["location"] != "Tahoe, US" {
		t.Fatalf("expected derived location, got %v", property["location"])
	}
	if len(store.props) != 1 {
		t.Fatalf("expected 1 stored property, got %d", len(store.props))
	}
}

func TestCreatePropertyValidationEnvelope(t *testing.T) {
	svc, _ := newTestHandlerService()
	router := mux.NewRouter()
	router.HandleFunc("/api/properties", CreateProperty(svc, nil)).Methods("POST")

	body, _ := json.Marshal(models.PropertyInput{
		Name:         "No Type",
		PropertyType: "TREEHOUSE",
		Capacity:     models.Capacity{Accommodates: 2},
	})
	req := authedRequest(httptest.NewRequest("POST", "/api/properties", bytes.NewReader(body)), "user-1")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Success || resp.Error != "validation_error" {
		t.Fatalf("expected validation failure envelope, got %+v", resp)
	}
	if resp.Details["field"] != "property_type" {
		t.Fatalf("expected details.field=property_type, got %v", resp.Details)
	}
}

func TestDeletePropertySoftMode(t *testing.T) {
	svc, store := newTestHandlerService()
	router := mux.NewRouter()
	router.HandleFunc("/api/properties/{id}", DeleteProperty(svc, nil)).Methods("DELETE")

	p := &models.Property{UserID: "user-1", Name: "Cabin", PropertyType: models.TypeCabin}
	store.Create(context.Background(), p)

	req := authedRequest(httptest.NewRequest("DELETE", "/api/properties/"+p.ID.Hex()+"?preserve_history=true", nil), "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.props[p.ID.Hex()] == nil {
		t.Fatal("soft delete must keep the document")
	}
	if store.props[p.ID.Hex()].IsActive {
		t.Fatal("soft-deleted property must be inactive")
	}
}
