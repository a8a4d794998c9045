package document

import (
	"context"
	"fmt"

	"go-docflow/internal/database"
	"go-docflow/pkg/apperrors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DocumentRepository interface {
	Insert(ctx context.Context, doc *Document) error
	FindByID(ctx context.Context, id string) (*Document, error)
	// Save writes the whole document graph conditioned on the version the
	// caller read. A stale version returns apperrors.ErrConflict and writes
	// nothing. On success doc.Version is bumped.
	Save(ctx context.Context, doc *Document) error
	Delete(ctx context.Context, id string) error
	ListByAuthor(ctx context.Context, authorID string) ([]Document, error)
	ListByStatus(ctx context.Context, status Status) ([]Document, error)
	EnsureIndexes(ctx context.Context) error
}

type ActivityRepository interface {
	Insert(ctx context.Context, activity Activity) error
	ListByDocument(ctx context.Context, docID string) ([]Activity, error)
	DeleteByDocument(ctx context.Context, docID string) error
}

type DocumentRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewDocumentRepository(mongodb *database.MongodbDB) DocumentRepository {
	return &DocumentRepositoryImpl{
		Collection: mongodb.DB.Collection("documents"),
	}
}

func (r *DocumentRepositoryImpl) Insert(ctx context.Context, doc *Document) error {
	_, err := r.Collection.InsertOne(ctx, doc)
	return err
}

func (r *DocumentRepositoryImpl) FindByID(ctx context.Context, id string) (*Document, error) {
	var doc Document
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepositoryImpl) Save(ctx context.Context, doc *Document) error {
	// The graph is embedded in a single record, so one conditional replace is
	// atomic: either this writer saw the latest version or nothing happens.
	filter := bson.M{"_id": doc.ID, "version": doc.Version}

	next := *doc
	next.Version = doc.Version + 1

	result, err := r.Collection.ReplaceOne(ctx, filter, &next)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("document %s version %d: %w", doc.ID, doc.Version, apperrors.ErrConflict)
	}

	doc.Version = next.Version
	return nil
}

func (r *DocumentRepositoryImpl) Delete(ctx context.Context, id string) error {
	_, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *DocumentRepositoryImpl) ListByAuthor(ctx context.Context, authorID string) ([]Document, error) {
	return r.list(ctx, bson.M{"author_id": authorID})
}

func (r *DocumentRepositoryImpl) ListByStatus(ctx context.Context, status Status) ([]Document, error) {
	return r.list(ctx, bson.M{"status": status})
}

func (r *DocumentRepositoryImpl) list(ctx context.Context, filter bson.M) ([]Document, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []Document
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *DocumentRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}

type ActivityRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewActivityRepository(mongodb *database.MongodbDB) ActivityRepository {
	return &ActivityRepositoryImpl{
		Collection: mongodb.DB.Collection("document_activities"),
	}
}

func (r *ActivityRepositoryImpl) Insert(ctx context.Context, activity Activity) error {
	_, err := r.Collection.InsertOne(ctx, activity)
	return err
}

func (r *ActivityRepositoryImpl) ListByDocument(ctx context.Context, docID string) ([]Activity, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := r.Collection.Find(ctx, bson.M{"document_id": docID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var activities []Activity
	if err = cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *ActivityRepositoryImpl) DeleteByDocument(ctx context.Context, docID string) error {
	_, err := r.Collection.DeleteMany(ctx, bson.M{"document_id": docID})
	return err
}
