package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	tenantdb "siteforge/internal/mongo"
)

// ErrNotFound is returned when a content document does not exist.
var ErrNotFound = errors.New("document not found")

// ContentStore abstracts tenant-scoped document CRUD. Handlers depend on
// this interface so tests can substitute the MongoDB implementation.
type ContentStore interface {
	Create(ctx context.Context, tenant, collection string, doc interface{}) (primitive.ObjectID, error)
	List(ctx context.Context, tenant, collection string, results interface{}) error
	Get(ctx context.Context, tenant, collection string, id primitive.ObjectID, result interface{}) error
	GetByFilter(ctx context.Context, tenant, collection string, filter bson.M, result interface{}) error
	Update(ctx context.Context, tenant, collection string, id primitive.ObjectID, doc interface{}) error
	Delete(ctx context.Context, tenant, collection string, id primitive.ObjectID) error
}

// ContentRepository is the MongoDB-backed ContentStore. Which database a
// call lands in is decided entirely by the injected resolver: the shared
// server resolves per request, a dedicated tenant server always resolves to
// its fixed database.
type ContentRepository struct {
	resolver tenantdb.Resolver
}

// NewContentRepository creates a content repository over a tenant resolver.
func NewContentRepository(resolver tenantdb.Resolver) *ContentRepository {
	return &ContentRepository{
		resolver: resolver,
	}
}

func (r *ContentRepository) collection(tenant, name string) (*mongo.Collection, error) {
	db, err := r.resolver.Database(tenant)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// Create inserts a document and returns its generated id.
func (r *ContentRepository) Create(ctx context.Context, tenant, collection string, doc interface{}) (primitive.ObjectID, error) {
	col, err := r.collection(tenant, collection)
	if err != nil {
		return primitive.NilObjectID, err
	}

	res, err := col.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id, nil
}

// List loads all documents of a collection ordered by their ordering field,
// then creation time.
func (r *ContentRepository) List(ctx context.Context, tenant, collection string, results interface{}) error {
	col, err := r.collection(tenant, collection)
	if err != nil {
		return err
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "order", Value: 1},
		{Key: "created_at", Value: 1},
	})
	cursor, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, results); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return nil
}

// Get loads one document by id.
func (r *ContentRepository) Get(ctx context.Context, tenant, collection string, id primitive.ObjectID, result interface{}) error {
	return r.GetByFilter(ctx, tenant, collection, bson.M{"_id": id}, result)
}

// GetByFilter loads the first document matching a filter.
func (r *ContentRepository) GetByFilter(ctx context.Context, tenant, collection string, filter bson.M, result interface{}) error {
	col, err := r.collection(tenant, collection)
	if err != nil {
		return err
	}

	if err := col.FindOne(ctx, filter).Decode(result); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get from %s: %w", collection, err)
	}
	return nil
}

// Update applies the document's fields to an existing document.
// Last writer wins: there is no conflict detection between concurrent edits.
func (r *ContentRepository) Update(ctx context.Context, tenant, collection string, id primitive.ObjectID, doc interface{}) error {
	col, err := r.collection(tenant, collection)
	if err != nil {
		return err
	}

	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": doc})
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", collection, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one document by id.
func (r *ContentRepository) Delete(ctx context.Context, tenant, collection string, id primitive.ObjectID) error {
	col, err := r.collection(tenant, collection)
	if err != nil {
		return err
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", collection, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
