package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"hallpass/internal/audit/repository"
	"hallpass/pkg/auth"
	"hallpass/pkg/config"
	apperrors "hallpass/pkg/errors"
	"hallpass/pkg/kafka"
	"hallpass/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// EventPublisher is the producer-side slice of the Kafka client.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type AuditService interface {
	Record(ctx context.Context, entry *model.AuditLog) error
	Publish(entry *model.AuditLog)
	List(ctx context.Context, entityName string, entityID string, limit int, offset int64) ([]*model.AuditLog, int64, error)
}

type auditService struct {
	repo      repository.AuditLogRepository
	publisher EventPublisher
	cfg       *config.Config
}

func NewAuditService(repo repository.AuditLogRepository, publisher EventPublisher, cfg *config.Config) AuditService {
	return &auditService{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Record persists the entry and then publishes it downstream. The insert joins
// the caller's transaction when ctx is a SessionContext; the publish is
// best-effort and never fails the caller.
func (s *auditService) Record(ctx context.Context, entry *model.AuditLog) error {
	if entry.UserID == "" || entry.Action == "" || entry.EntityName == "" {
		return apperrors.InvalidInput("Audit entry requires user_id, action and entity_name")
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC().Truncate(time.Millisecond)
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		s.cfg.Log.Error("Failed to persist audit entry", "action", entry.Action, "entity", entry.EntityName, "error", err)
		return apperrors.Internal("Failed to persist audit entry", err)
	}

	// Inside a transaction the caller publishes after commit; emitting here
	// would leak events for transactions that abort or get retried.
	if _, inTx := ctx.(mongo.SessionContext); inTx {
		return nil
	}

	s.publish(entry)
	return nil
}

// Publish emits an already-committed entry to the audit topic. Transactional
// callers invoke this once their transaction has committed.
func (s *auditService) Publish(entry *model.AuditLog) {
	s.publish(entry)
}

func (s *auditService) List(ctx context.Context, entityName string, entityID string, limit int, offset int64) ([]*model.AuditLog, int64, error) {
	principal, _ := auth.FromContext(ctx)
	if err := auth.RequireRole(principal, auth.RoleAdmin); err != nil {
		return nil, 0, err
	}

	var count int64
	var entries []*model.AuditLog
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count audit entries", "error", errCount)
			errCount = apperrors.Internal("Failed to count audit entries", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		if entityName != "" {
			entries, err = s.repo.FindByEntity(ctx, entityName, entityID, limit, offset)
		} else {
			entries, err = s.repo.FindRecent(ctx, limit, offset)
		}
		if err != nil {
			s.cfg.Log.Error("Failed to list audit entries", "error", err)
			errFind = apperrors.Internal("Failed to retrieve audit entries", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return entries, count, nil
}

// publish emits the entry to the audit topic. Failures are logged, never
// propagated; the mongo insert is the source of truth.
func (s *auditService) publish(entry *model.AuditLog) {
	if s.publisher == nil {
		return
	}

	key := entry.EntityID
	if key == "" {
		key = entry.UserID
	}

	msg := kafka.NewMessage().
		WithKey(key).
		WithValue(entry).
		WithEventType("audit." + strings.ToLower(entry.Action)).
		WithSource("hallpass").
		Build()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish audit event",
			"action", entry.Action,
			"entity", entry.EntityName,
			"entity_id", entry.EntityID,
			"error", err,
		)
	}
}
