package repository

import (
	"context"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoScanLogRepository implements the ScanLogRepository interface
type MongoScanLogRepository struct {
	collection *mongo.Collection
}

// NewMongoScanLogRepository creates a new MongoDB scan log repository
func NewMongoScanLogRepository(db *mongo.Database) repository.ScanLogRepository {
	collection := db.Collection("scanLogs")

	// Indexes for the admin log viewer's queries
	ctx := context.Background()

	jobTimeIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "job", Value: 1},
			{Key: "finishedAt", Value: -1},
		},
	}

	targetIndex := mongo.IndexModel{
		Keys: bson.M{"target": 1},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		jobTimeIndex,
		targetIndex,
	})

	return &MongoScanLogRepository{collection: collection}
}

// Append inserts one audit entry; entries are never updated afterwards
func (r *MongoScanLogRepository) Append(ctx context.Context, log *entity.ScanLog) error {
	if log.ID == "" {
		log.ID = primitive.NewObjectID().Hex()
	}
	if log.FinishedAt.IsZero() {
		log.FinishedAt = time.Now().UTC()
	}

	_, err := r.collection.InsertOne(ctx, log)
	return err
}

// ListRecent returns the newest entries for a job, most recent first
func (r *MongoScanLogRepository) ListRecent(ctx context.Context, job string, limit int) ([]*entity.ScanLog, error) {
	limit64 := int64(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"job": job}, &options.FindOptions{
		Limit: &limit64,
		Sort:  bson.D{{Key: "finishedAt", Value: -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []*entity.ScanLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
