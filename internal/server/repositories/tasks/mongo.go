package tasks

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrijs2005/agentdesk/internal/server/models"
)

// CollectionName is the Mongo collection holding task records.
const CollectionName = "task_records"

type recordDocument struct {
	ID        string            `bson:"_id"`
	Kind      string            `bson:"kind"`
	Input     string            `bson:"input"`
	Fields    map[string]string `bson:"fields"`
	CreatedAt time.Time         `bson:"created_at"`
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the per-kind recency index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "kind", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Insert(ctx context.Context, rec *models.TaskRecord) error {
	doc := recordDocument{
		ID:        rec.ID,
		Kind:      string(rec.Kind),
		Input:     rec.Input,
		Fields:    rec.Fields,
		CreatedAt: rec.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) ListRecent(ctx context.Context, kind models.TaskKind, limit int) ([]models.TaskRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{"kind": string(kind)}, opts)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var result []models.TaskRecord
	for cur.Next(ctx) {
		var doc recordDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, models.TaskRecord{
			ID:        doc.ID,
			Kind:      models.TaskKind(doc.Kind),
			Input:     doc.Input,
			Fields:    doc.Fields,
			CreatedAt: doc.CreatedAt,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
