package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "hallpass/internal/bookings/errors"
	"hallpass/pkg/config"
	mongotx "hallpass/pkg/db/mongo"
	"hallpass/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

// OverrideUpdate carries the per-booking changes applied when an emergency
// booking displaces an existing one.
type OverrideUpdate struct {
	ID    string
	Notes string
	Event model.OverrideEvent
}

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	Search(ctx context.Context, roomID string, userID string, startTime *time.Time, endTime *time.Time, limit int, offset int64) ([]*model.Booking, error)
	CountBySearch(ctx context.Context, roomID string, userID string, startTime *time.Time, endTime *time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountByRoom(ctx context.Context, roomID string) (int64, error)
	FindOverlapping(ctx context.Context, roomID string, startTime time.Time, endTime time.Time, excludeID string) ([]*model.Booking, error)
	Update(ctx context.Context, id string, expectedVersion int64, booking *model.Booking) (*mongo.UpdateResult, error)
	ApplyOverrides(ctx context.Context, updates []OverrideUpdate) error
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	booking.Version = 1
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}

	var booking model.Booking
	err = r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) Search(
	ctx context.Context,
	roomID string,
	userID string,
	startTime, endTime *time.Time,
	limit int, offset int64,
) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := r.buildSearchFilter(roomID, userID, startTime, endTime)

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) CountBySearch(
	ctx context.Context,
	roomID string,
	userID string,
	startTime, endTime *time.Time,
) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := r.buildSearchFilter(roomID, userID, startTime, endTime)

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings by search: %w", err)
	}
	return count, nil
}

// buildSearchFilter builds a filter matching bookings whose half-open interval
// intersects [startTime, endTime). A booking ending exactly at startTime or
// starting exactly at endTime does not match.
func (r *mongoBookingRepository) buildSearchFilter(roomID string, userID string, startTime, endTime *time.Time) bson.M {
	filter := bson.M{}

	if roomID != "" {
		filter["room_id"] = roomID
	}
	if userID != "" {
		filter["user_id"] = userID
	}

	if startTime != nil && endTime != nil {
		filter["start_time"] = bson.M{"$lt": *endTime}
		filter["end_time"] = bson.M{"$gt": *startTime}
	} else if startTime != nil {
		filter["end_time"] = bson.M{"$gt": *startTime}
	} else if endTime != nil {
		filter["start_time"] = bson.M{"$lt": *endTime}
	}

	return filter
}

func (r *mongoBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	return count, nil
}

func (r *mongoBookingRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings by status: %w", err)
	}

	return count, nil
}

func (r *mongoBookingRepository) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"room_id": roomID})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings by room: %w", err)
	}

	return count, nil
}

// FindOverlapping returns bookings in the room whose half-open interval
// intersects [startTime, endTime). excludeID, when non-empty, removes a
// booking from the result so an edit does not conflict with itself.
func (r *mongoBookingRepository) FindOverlapping(
	ctx context.Context,
	roomID string,
	startTime, endTime time.Time,
	excludeID string,
) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"room_id":    roomID,
		"start_time": bson.M{"$lt": endTime},
		"end_time":   bson.M{"$gt": startTime},
	}

	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping bookings: %w", err)
	}

	return bookings, nil
}

// Update replaces the mutable fields of a booking. The filter matches on both
// id and expectedVersion, so a concurrent writer that bumped the version since
// the caller read the document causes ErrStaleVersion instead of a lost update.
func (r *mongoBookingRepository) Update(ctx context.Context, id string, expectedVersion int64, booking *model.Booking) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	filter := bson.M{"_id": objectID, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{
			"room_id":      booking.RoomID,
			"title":        booking.Title,
			"description":  booking.Description,
			"start_time":   booking.StartTime,
			"end_time":     booking.EndTime,
			"status":       booking.Status,
			"is_emergency": booking.IsEmergency,
			"notes":        booking.Notes,
			"updated_at":   now,
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	if result.MatchedCount == 0 {
		exists, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
		if countErr != nil {
			return nil, fmt.Errorf("failed to update booking: %w", countErr)
		}
		if exists == 0 {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, bookingserrors.ErrStaleVersion
	}

	return result, nil
}

// ApplyOverrides annotates displaced bookings in a single bulk write. Each
// update sets the new notes, appends the override event and bumps the version.
func (r *mongoBookingRepository) ApplyOverrides(ctx context.Context, updates []OverrideUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	models := make([]mongo.WriteModel, 0, len(updates))
	for _, u := range updates {
		objectID, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, u.ID)
		}

		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": objectID}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"notes":      u.Notes,
					"updated_at": now,
				},
				"$push": bson.M{"override_events": u.Event},
				"$inc":  bson.M{"version": 1},
			}))
	}

	_, err := r.collection.BulkWrite(ctx, models)
	if err != nil {
		return fmt.Errorf("failed to apply override updates: %w", err)
	}

	return nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
