package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/dmitrijs2005/agentdesk/internal/server/models"
)

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := repo.Insert(context.Background(), &models.TaskRecord{
			ID:     "r-1",
			Kind:   models.KindResearch,
			Input:  "q",
			Fields: map[string]string{"answer": "a"},
		})
		require.NoError(mt, err)
	})

	mt.Run("insert failure", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 91, Name: "ShutdownInProgress", Message: "shutting down"}))

		err := repo.Insert(context.Background(), &models.TaskRecord{ID: "r-1", Kind: models.KindResearch})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "db error")
	})

	mt.Run("list recent", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		ns := mt.DB.Name() + "." + CollectionName
		ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "r-2"}, {Key: "kind", Value: "research"}, {Key: "input", Value: "q2"},
				{Key: "fields", Value: bson.D{{Key: "answer", Value: "a2"}}}, {Key: "created_at", Value: ts.Add(time.Minute)},
			},
			bson.D{
				{Key: "_id", Value: "r-1"}, {Key: "kind", Value: "research"}, {Key: "input", Value: "q1"},
				{Key: "fields", Value: bson.D{{Key: "answer", Value: "a1"}}}, {Key: "created_at", Value: ts},
			})
		end := mtest.CreateCursorResponse(0, ns, mtest.NextBatch)
		mt.AddMockResponses(first, end)

		got, err := repo.ListRecent(context.Background(), models.KindResearch, 5)
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "r-2", got[0].ID)
		assert.Equal(mt, "a2", got[0].Fields["answer"])
	})
}
