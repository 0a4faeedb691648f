package repository

import (
	"context"
	"fmt"
	"time"

	"hallpass/pkg/config"
	"hallpass/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Audit_logs"
)

type mongoAuditLogRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type AuditLogRepository interface {
	Insert(ctx context.Context, entry *model.AuditLog) error
	FindRecent(ctx context.Context, limit int, offset int64) ([]*model.AuditLog, error)
	FindByEntity(ctx context.Context, entityName string, entityID string, limit int, offset int64) ([]*model.AuditLog, error)
	Count(ctx context.Context) (int64, error)
}

func NewMongoAuditLogRepository(cfg *config.Config) AuditLogRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAuditLogRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoAuditLogRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Insert honors a SessionContext so an entry commits atomically with the
// mutation it records.
func (r *mongoAuditLogRepository) Insert(ctx context.Context, entry *model.AuditLog) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAuditLogRepository) FindRecent(ctx context.Context, limit int, offset int64) ([]*model.AuditLog, error) {
	return r.find(ctx, bson.M{}, limit, offset)
}

func (r *mongoAuditLogRepository) FindByEntity(ctx context.Context, entityName string, entityID string, limit int, offset int64) ([]*model.AuditLog, error) {
	filter := bson.M{"entity_name": entityName}
	if entityID != "" {
		filter["entity_id"] = entityID
	}
	return r.find(ctx, filter, limit, offset)
}

func (r *mongoAuditLogRepository) find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.AuditLog, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.AuditLog
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}

	return entries, nil
}

func (r *mongoAuditLogRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	return count, nil
}
