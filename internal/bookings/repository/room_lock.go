package repository

import (
	"context"
	"time"

	"hallpass/pkg/config"
	"hallpass/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RoomLockRepository provides operations for per-room advisory locks
type RoomLockRepository interface {
	Acquire(ctx context.Context, lockID string, ttl time.Duration) (*model.RoomLock, error)
	Release(ctx context.Context, lockID string) error
}

type mongoRoomLockRepository struct {
	collection *mongo.Collection
}

func NewRoomLockRepository(cfg *config.Config) RoomLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomLockRepository{
		collection: db.Collection("Room_locks"),
	}
}

// Acquire inserts the lock document. A duplicate key error means another
// request holds the lock; stale locks expire through the TTL index on
// expires_at. IsDuplicateKeyError on the returned error distinguishes
// contention from infrastructure failure.
func (r *mongoRoomLockRepository) Acquire(ctx context.Context, lockID string, ttl time.Duration) (*model.RoomLock, error) {
	now := time.Now().UTC()
	lock := &model.RoomLock{
		ID:        lockID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

// Release removes an advisory lock
func (r *mongoRoomLockRepository) Release(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}

// IsDuplicateKeyError reports whether the insert failed because the lock
// already exists.
func IsDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
