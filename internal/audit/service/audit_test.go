package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hallpass/pkg/auth"
	"hallpass/pkg/config"
	apperrors "hallpass/pkg/errors"
	"hallpass/pkg/kafka"
	"hallpass/pkg/logger"
	"hallpass/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockAuditLogRepository struct {
	insertFunc       func(ctx context.Context, entry *model.AuditLog) error
	findRecentFunc   func(ctx context.Context, limit int, offset int64) ([]*model.AuditLog, error)
	findByEntityFunc func(ctx context.Context, entityName, entityID string, limit int, offset int64) ([]*model.AuditLog, error)
	countFunc        func(ctx context.Context) (int64, error)
}

func (m *mockAuditLogRepository) Insert(ctx context.Context, entry *model.AuditLog) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, entry)
	}
	return nil
}

func (m *mockAuditLogRepository) FindRecent(ctx context.Context, limit int, offset int64) ([]*model.AuditLog, error) {
	if m.findRecentFunc != nil {
		return m.findRecentFunc(ctx, limit, offset)
	}
	return []*model.AuditLog{}, nil
}

func (m *mockAuditLogRepository) FindByEntity(ctx context.Context, entityName, entityID string, limit int, offset int64) ([]*model.AuditLog, error) {
	if m.findByEntityFunc != nil {
		return m.findByEntityFunc(ctx, entityName, entityID, limit, offset)
	}
	return []*model.AuditLog{}, nil
}

func (m *mockAuditLogRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

type mockPublisher struct {
	publishFunc func(ctx context.Context, msg kafka.Message) error
	published   []kafka.Message
}

func (m *mockPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, msg)
	}
	m.published = append(m.published, msg)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log:          logger.New(logger.Config{Level: logger.ERROR}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func validEntry() *model.AuditLog {
	return &model.AuditLog{
		UserID:     "teacher-1",
		UserName:   "Teacher",
		Action:     model.ActionCreate,
		EntityName: "Booking",
		EntityID:   "65a000000000000000000001",
	}
}

func TestRecord_SetsTimestampAndPublishes(t *testing.T) {
	var inserted *model.AuditLog
	repo := &mockAuditLogRepository{
		insertFunc: func(ctx context.Context, entry *model.AuditLog) error {
			inserted = entry
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := NewAuditService(repo, publisher, testConfig())

	if err := svc.Record(context.Background(), validEntry()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inserted == nil || inserted.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be set before insert")
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.published))
	}

	msg := publisher.published[0]
	if msg.Key != "65a000000000000000000001" {
		t.Errorf("expected entity id as partition key, got %q", msg.Key)
	}
	if eventType, _ := msg.GetHeader(kafka.HeaderEventType); eventType != "audit.create" {
		t.Errorf("expected event type audit.create, got %q", eventType)
	}

	var decoded model.AuditLog
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("failed to decode event payload: %v", err)
	}
	if decoded.UserID != "teacher-1" || decoded.Action != model.ActionCreate {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestRecord_InTransactionDefersPublish(t *testing.T) {
	var inserted *model.AuditLog
	repo := &mockAuditLogRepository{
		insertFunc: func(ctx context.Context, entry *model.AuditLog) error {
			inserted = entry
			return nil
		},
	}
	publisher := &mockPublisher{}
	svc := NewAuditService(repo, publisher, testConfig())

	sessCtx := mongo.NewSessionContext(context.Background(), nil)
	entry := validEntry()
	if err := svc.Record(sessCtx, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inserted == nil {
		t.Fatal("expected entry to be inserted within the transaction")
	}
	if len(publisher.published) != 0 {
		t.Fatalf("publish must wait for commit, got %d events", len(publisher.published))
	}

	svc.Publish(entry)
	if len(publisher.published) != 1 {
		t.Fatalf("expected 1 published event after commit, got %d", len(publisher.published))
	}
}

func TestRecord_PublishFailureIsSwallowed(t *testing.T) {
	publisher := &mockPublisher{
		publishFunc: func(ctx context.Context, msg kafka.Message) error {
			return errors.New("broker unreachable")
		},
	}
	svc := NewAuditService(&mockAuditLogRepository{}, publisher, testConfig())

	if err := svc.Record(context.Background(), validEntry()); err != nil {
		t.Errorf("publish failure must not fail the record, got %v", err)
	}
}

func TestRecord_InsertFailurePropagates(t *testing.T) {
	repo := &mockAuditLogRepository{
		insertFunc: func(ctx context.Context, entry *model.AuditLog) error {
			return errors.New("write concern error")
		},
	}
	svc := NewAuditService(repo, nil, testConfig())

	err := svc.Record(context.Background(), validEntry())
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("expected INTERNAL_ERROR, got %v", err)
	}
}

func TestRecord_RejectsIncompleteEntry(t *testing.T) {
	svc := NewAuditService(&mockAuditLogRepository{}, nil, testConfig())

	err := svc.Record(context.Background(), &model.AuditLog{Action: model.ActionCreate})
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for missing fields, got %v", err)
	}
}

func TestList_AdminOnly(t *testing.T) {
	svc := NewAuditService(&mockAuditLogRepository{}, nil, testConfig())

	_, _, err := svc.List(context.Background(), "", "", 10, 0)
	if !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("expected UNAUTHORIZED without principal, got %v", err)
	}

	faculty := auth.NewContext(context.Background(), &auth.Principal{ID: "t1", Roles: []string{auth.RoleFaculty}})
	_, _, err = svc.List(faculty, "", "", 10, 0)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected FORBIDDEN for faculty, got %v", err)
	}

	admin := auth.NewContext(context.Background(), &auth.Principal{ID: "a1", Roles: []string{auth.RoleAdmin}})
	if _, _, err := svc.List(admin, "", "", 10, 0); err != nil {
		t.Errorf("admin list failed: %v", err)
	}
}

func TestList_FiltersByEntity(t *testing.T) {
	var gotEntity, gotID string
	repo := &mockAuditLogRepository{
		findByEntityFunc: func(ctx context.Context, entityName, entityID string, limit int, offset int64) ([]*model.AuditLog, error) {
			gotEntity, gotID = entityName, entityID
			return []*model.AuditLog{}, nil
		},
	}
	svc := NewAuditService(repo, nil, testConfig())

	admin := auth.NewContext(context.Background(), &auth.Principal{ID: "a1", Roles: []string{auth.RoleAdmin}})
	if _, _, err := svc.List(admin, "Booking", "65a000000000000000000001", 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotEntity != "Booking" || gotID != "65a000000000000000000001" {
		t.Errorf("entity filter not forwarded, got %q/%q", gotEntity, gotID)
	}
}
