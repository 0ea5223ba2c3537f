package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
)

// CollectionName is the Mongo collection holding sessions. Messages are
// embedded in their session document; array position is append order.
const CollectionName = "sessions"

type messageDocument struct {
	Role      string    `bson:"role"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
}

type sessionDocument struct {
	ID        string            `bson:"_id"`
	UserName  string            `bson:"username"`
	Title     string            `bson:"title"`
	CreatedAt time.Time         `bson:"created_at"`
	Messages  []messageDocument `bson:"messages,omitempty"`
}

func (d sessionDocument) toModel() *models.Session {
	return &models.Session{ID: d.ID, UserName: d.UserName, Title: d.Title, CreatedAt: d.CreatedAt}
}

var withoutMessages = bson.M{"messages": 0}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the per-user recency index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, s *models.Session) (*models.Session, error) {
	doc := sessionDocument{ID: s.ID, UserName: s.UserName, Title: s.Title, CreatedAt: s.CreatedAt}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	var doc sessionDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(withoutMessages)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) ListByUser(ctx context.Context, userName string) ([]models.Session, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(withoutMessages)

	cur, err := r.coll.Find(ctx, bson.M{"username": userName}, opts)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var result []models.Session
	for cur.Next(ctx) {
		var doc sessionDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *doc.toModel())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Append upserts the session keyed by id and owner and pushes the message in
// a single findAndModify. A duplicate _id means the session exists but did
// not match the filter: either another user owns it (common.ErrorUnauthorized)
// or a concurrent append by the same owner inserted it first, in which case
// the push is retried once against the now existing document.
func (r *MongoRepository) Append(ctx context.Context, s *models.Session, m *models.Message) (*models.Session, error) {
	doc, err := r.findAndPush(ctx, s, m)
	if err == nil {
		return doc.toModel(), nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	existing, err := r.Get(ctx, s.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("db error: session %s collided on insert but is gone", s.ID)
		}
		return nil, err
	}
	if existing.UserName != s.UserName {
		return nil, common.ErrorUnauthorized
	}

	doc, err = r.findAndPush(ctx, s, m)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) findAndPush(ctx context.Context, s *models.Session, m *models.Message) (*sessionDocument, error) {
	filter := bson.M{"_id": s.ID, "username": s.UserName}
	update := bson.M{
		"$setOnInsert": bson.M{"title": s.Title, "created_at": s.CreatedAt},
		"$push": bson.M{"messages": messageDocument{
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(withoutMessages)

	var doc sessionDocument
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *MongoRepository) Messages(ctx context.Context, sessionID string) ([]models.Message, error) {
	var doc sessionDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := make([]models.Message, 0, len(doc.Messages))
	for _, m := range doc.Messages {
		result = append(result, models.Message{
			SessionID: doc.ID,
			Role:      models.Role(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return result, nil
}
