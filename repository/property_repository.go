package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dcode-github/property_management_system/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound covers both a genuinely missing document and a scoped lookup
// on a document owned by someone else. Scoping folds the owner into the
// query filter, so non-owned documents are indistinguishable from absent
// ones and existence never leaks.
var ErrNotFound = errors.New("property not found")

// Scope is the owner token carried by every scoped query or mutation.
// The zero value (via Unscoped) admits any document and is reserved for
// the admin surface.
type Scope struct {
	OwnerID string
}

func Owner(userID string) Scope { return Scope{OwnerID: userID} }

func Unscoped() Scope { return Scope{} }

func (s Scope) apply(q bson.M) bson.M {
	if s.OwnerID != "" {
		q["user_id"] = s.OwnerID
	}
	return q
}

type Filter struct {
	Scope           Scope
	PropertyType    string
	City            string // case-insensitive substring on address.city
	Search          string // admin free-text across name/description/city/country
	IncludeInactive bool
}

func (f Filter) build() bson.M {
	q := bson.M{}
	if !f.IncludeInactive {
		q["is_active"] = true
	}
	f.Scope.apply(q)
	if f.PropertyType != "" {
		q["property_type"] = f.PropertyType
	}
	if f.City != "" {
		q["address.city"] = bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(f.City), Options: "i"}}
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": re}},
			bson.M{"description": bson.M{"$regex": re}},
			bson.M{"address.city": bson.M{"$regex": re}},
			bson.M{"address.country": bson.M{"$regex": re}},
		}
	}
	return q
}

type Sort struct {
	Field string
	Desc  bool
}

func (s Sort) spec() bson.D {
	field := s.Field
	if field == "" {
		field = "created_at"
	}
	dir := 1
	if s.Desc {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}}
}

type Page struct {
	Number int64
	Limit  int64
}

func (p Page) skip() int64 {
	return (p.Number - 1) * p.Limit
}

// Properties is the mongo-backed property repository.
type Properties struct {
	coll *mongo.Collection
}

func NewProperties(coll *mongo.Collection) *Properties {
	return &Properties{coll: coll}
}

// Create assigns identity and lifecycle fields and persists the document.
func (r *Properties) Create(ctx context.Context, p *models.Property) error {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.IsActive = true
	if p.Images == nil {
		p.Images = []string{}
	}
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("inserting property: %w", err)
	}
	return nil
}

// Find returns one page of matches plus the total match count.
func (r *Properties) Find(ctx context.Context, f Filter, sort Sort, page Page) ([]models.Property, int64, error) {
	query := f.build()

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("counting properties: %w", err)
	}

	opts := options.Find().
		SetSort(sort.spec()).
		SetSkip(page.skip()).
		SetLimit(page.Limit)

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("finding properties: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.Property
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decoding properties: %w", err)
	}
	return items, total, nil
}

func (r *Properties) FindByID(ctx context.Context, id string, scope Scope) (*models.Property, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var p models.Property
	err = r.coll.FindOne(ctx, scope.apply(bson.M{"_id": objID})).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding property %s: %w", id, err)
	}
	return &p, nil
}

// Update applies the given fields in one atomic $set and returns the
// post-update document.
func (r *Properties) Update(ctx context.Context, id string, scope Scope, fields map[string]interface{}) (*models.Property, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Property
	err = r.coll.FindOneAndUpdate(ctx, scope.apply(bson.M{"_id": objID}), bson.M{"$set": toBSON(fields)}, opts).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating property %s: %w", id, err)
	}
	return &p, nil
}

// Delete hard-deletes the document and returns its final state.
func (r *Properties) Delete(ctx context.Context, id string, scope Scope) (*models.Property, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var p models.Property
	err = r.coll.FindOneAndDelete(ctx, scope.apply(bson.M{"_id": objID})).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("deleting property %s: %w", id, err)
	}
	return &p, nil
}

// SetActive flips the soft-delete marker. Deactivation stamps
// deactivated_at; activation clears it again.
func (r *Properties) SetActive(ctx context.Context, id string, scope Scope, active bool) (*models.Property, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	now := time.Now().UTC()
	set := bson.M{"is_active": active, "updated_at": now}
	update := bson.M{"$set": set}
	if active {
		update["$unset"] = bson.M{"deactivated_at": ""}
	} else {
		set["deactivated_at"] = now
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Property
	err = r.coll.FindOneAndUpdate(ctx, scope.apply(bson.M{"_id": objID}), update, opts).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("setting active=%t on property %s: %w", active, id, err)
	}
	return &p, nil
}

// GroupCount counts matching documents grouped by the given field over the
// full unpaginated match set. Grouping by address.city excludes documents
// with a null or absent city.
func (r *Properties) GroupCount(ctx context.Context, f Filter, field string) (map[string]int64, error) {
	match := f.build()
	if field == "address.city" {
		present := bson.M{"$exists": true, "$nin": bson.A{nil, ""}}
		if existing, ok := match["address.city"].(bson.M); ok {
			for k, v := range present {
				existing[k] = v
			}
		} else {
			match["address.city"] = present
		}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregating properties by %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Key   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decoding %s aggregation: %w", field, err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

func toBSON(fields map[string]interface{}) bson.M {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	return set
}
