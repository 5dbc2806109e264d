package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dcode-github/property_management_system/backend/models"
	"github.com/dcode-github/property_management_system/backend/repository"
	"github.com/dcode-github/property_management_system/backend/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// journal records cross-mock call order so tests can assert sequencing.
type journal struct {
	mu  sync.Mutex
	ops []string
}

func (j *journal) add(op string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ops = append(j.ops, op)
}

type mockPropertyStore struct {
	jrnl        *journal
	props       map[string]*models.Property
	findTotal   *int64
	groupCounts map[string]map[string]int64
	failUpdate  error
	updateCalls int
}

func newMockPropertyStore() *mockPropertyStore {
	return &mockPropertyStore{jrnl: &journal{}, props: make(map[string]*models.Property)}
}

func (m *mockPropertyStore) Create(ctx context.Context, p *models.Property) error {
	m.jrnl.add("create")
	p.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.IsActive = true
	if p.Images == nil {
		p.Images = []string{}
	}
	stored := *p
	m.props[p.ID.Hex()] = &stored
	return nil
}

func (m *mockPropertyStore) lookup(id string, scope repository.Scope) (*models.Property, error) {
	p, ok := m.props[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if scope.OwnerID != "" && p.UserID != scope.OwnerID {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (m *mockPropertyStore) Find(ctx context.Context, f repository.Filter, sort repository.Sort, page repository.Page) ([]models.Property, int64, error) {
	var items []models.Property
	for _, p := range m.props {
		if !f.IncludeInactive && !p.IsActive {
			continue
		}
		if f.Scope.OwnerID != "" && p.UserID != f.Scope.OwnerID {
			continue
		}
		if f.PropertyType != "" && p.PropertyType != f.PropertyType {
			continue
		}
		if f.City != "" {
			if p.Address == nil || !strings.Contains(strings.ToLower(p.Address.City), strings.ToLower(f.City)) {
				continue
			}
		}
		items = append(items, *p)
	}
	total := int64(len(items))
	if m.findTotal != nil {
		total = *m.findTotal
	}
	return items, total, nil
}

func (m *mockPropertyStore) FindByID(ctx context.Context, id string, scope repository.Scope) (*models.Property, error) {
	p, err := m.lookup(id, scope)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (m *mockPropertyStore) Update(ctx context.Context, id string, scope repository.Scope, fields map[string]interface{}) (*models.Property, error) {
	m.jrnl.add("update")
	m.updateCalls++
	if m.failUpdate != nil {
		return nil, m.failUpdate
	}
	p, err := m.lookup(id, scope)
	if err != nil {
		return nil, err
	}
	for k, v := range fields {
		switch k {
		case "name":
			p.Name = v.(string)
		case "description":
			p.Description = v.(string)
		case "property_type":
			p.PropertyType = v.(string)
		case "address":
			p.Address = v.(*models.Address)
		case "capacity":
			p.Capacity = v.(models.Capacity)
		case "amenities":
			p.Amenities = v.(models.Amenities)
		case "policies":
			p.Policies = v.(models.Policies)
		case "images":
			p.Images = v.([]string)
		case "updated_at":
			p.UpdatedAt = v.(time.Time)
		}
	}
	cp := *p
	return &cp, nil
}

func (m *mockPropertyStore) Delete(ctx context.Context, id string, scope repository.Scope) (*models.Property, error) {
	m.jrnl.add("delete")
	p, err := m.lookup(id, scope)
	if err != nil {
		return nil, err
	}
	delete(m.props, id)
	return p, nil
}

func (m *mockPropertyStore) SetActive(ctx context.Context, id string, scope repository.Scope, active bool) (*models.Property, error) {
	m.jrnl.add("set_active")
	p, err := m.lookup(id, scope)
	if err != nil {
		return nil, err
	}
	p.IsActive = active
	now := time.Now().UTC()
	p.UpdatedAt = now
	if active {
		p.DeactivatedAt = nil
	} else {
		p.DeactivatedAt = &now
	}
	cp := *p
	return &cp, nil
}

func (m *mockPropertyStore) GroupCount(ctx context.Context, f repository.Filter, field string) (map[string]int64, error) {
	if m.groupCounts != nil {
		return m.groupCounts[field], nil
	}
	counts := make(map[string]int64)
	for _, p := range m.props {
		if !f.IncludeInactive && !p.IsActive {
			continue
		}
		if f.Scope.OwnerID != "" && p.UserID != f.Scope.OwnerID {
			continue
		}
		switch field {
		case "property_type":
			counts[p.PropertyType]++
		case "address.city":
			if p.Address != nil && p.Address.City != "" {
				counts[p.Address.City]++
			}
		}
	}
	return counts, nil
}

type mockImageStore struct {
	mu                sync.Mutex
	objects           map[string]bool
	failSaveNames     map[string]bool
	failDeleteRefs    map[string]bool
	deletedNamespaces []string
}

func newMockImageStore() *mockImageStore {
	return &mockImageStore{
		objects:        make(map[string]bool),
		failSaveNames:  make(map[string]bool),
		failDeleteRefs: make(map[string]bool),
	}
}

func (m *mockImageStore) Save(ctx context.Context, propertyID string, data []byte, originalFilename string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaveNames[originalFilename] {
		return "", errors.New("disk full")
	}
	ref := "/" + storage.Namespace + "/" + propertyID + "/" + originalFilename
	m.objects[ref] = true
	return ref, nil
}

func (m *mockImageStore) Delete(ctx context.Context, ref string) (storage.DeleteOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDeleteRefs[ref] {
		return storage.Failed, errors.New("permission denied")
	}
	if !m.objects[ref] {
		return storage.NotFound, nil
	}
	delete(m.objects, ref)
	return storage.Deleted, nil
}

func (m *mockImageStore) DeleteNamespace(ctx context.Context, propertyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletedNamespaces = append(m.deletedNamespaces, propertyID)
	prefix := "/" + storage.Namespace + "/" + propertyID + "/"
	for ref := range m.objects {
		if strings.HasPrefix(ref, prefix) {
			delete(m.objects, ref)
		}
	}
	return nil
}

type mockAuditStore struct {
	jrnl    *journal
	entries []models.AuditEntry
	fail    error
}

func (m *mockAuditStore) Record(ctx context.Context, entry *models.AuditEntry) error {
	if m.jrnl != nil {
		m.jrnl.add("audit")
	}
	if m.fail != nil {
		return m.fail
	}
	m.entries = append(m.entries, *entry)
	return nil
}
