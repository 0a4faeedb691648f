package service

import (
	"context"
	"testing"
	"time"

	roomserrors "hallpass/internal/rooms/errors"
	"hallpass/internal/rooms/repository"
	"hallpass/internal/rooms/validator"
	"hallpass/pkg/auth"
	"hallpass/pkg/config"
	apperrors "hallpass/pkg/errors"
	"hallpass/pkg/logger"
	"hallpass/pkg/model"
)

type mockRoomRepository struct {
	createFunc       func(ctx context.Context, room *model.Room) error
	findByIDFunc     func(ctx context.Context, id string) (*model.Room, error)
	findAllFunc      func(ctx context.Context, limit int, offset int64) ([]*model.Room, error)
	searchByNameFunc func(ctx context.Context, name string, limit int, offset int64) ([]*model.Room, error)
	countFunc        func(ctx context.Context) (int64, error)
	updateFunc       func(ctx context.Context, id string, room *model.Room) error
	deleteFunc       func(ctx context.Context, id string) error
}

func (m *mockRoomRepository) Create(ctx context.Context, room *model.Room) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, room)
	}
	room.ID = "507f1f77bcf86cd799439011"
	return nil
}

func (m *mockRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.Room{ID: id, Name: "Room 101", Location: "Main", Capacity: 30}, nil
}

func (m *mockRoomRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Room{}, nil
}

func (m *mockRoomRepository) SearchByName(ctx context.Context, name string, limit int, offset int64) ([]*model.Room, error) {
	if m.searchByNameFunc != nil {
		return m.searchByNameFunc(ctx, name, limit, offset)
	}
	return []*model.Room{}, nil
}

func (m *mockRoomRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockRoomRepository) Update(ctx context.Context, id string, room *model.Room) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, room)
	}
	return nil
}

func (m *mockRoomRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockBookingCounter struct {
	countByRoomFunc func(ctx context.Context, roomID string) (int64, error)
}

func (m *mockBookingCounter) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	if m.countByRoomFunc != nil {
		return m.countByRoomFunc(ctx, roomID)
	}
	return 0, nil
}

type mockAuditSink struct {
	entries []*model.AuditLog
}

func (m *mockAuditSink) Record(ctx context.Context, entry *model.AuditLog) error {
	m.entries = append(m.entries, entry)
	return nil
}

func newTestService(repo repository.RoomRepository, bookings BookingCounter, audit AuditSink) RoomService {
	cfg := &config.Config{
		Log:          logger.New(logger.Config{Level: logger.ERROR}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return NewRoomService(repo, bookings, audit, validator.NewRoomValidator(cfg.Log), cfg)
}

func adminContext() context.Context {
	return auth.NewContext(context.Background(), &auth.Principal{
		ID:    "admin-1",
		Name:  "Admin",
		Roles: []string{auth.RoleAdmin},
	})
}

func facultyContext() context.Context {
	return auth.NewContext(context.Background(), &auth.Principal{
		ID:    "teacher-1",
		Name:  "Teacher",
		Roles: []string{auth.RoleFaculty},
	})
}

func TestCreate_AdminOnly(t *testing.T) {
	svc := newTestService(&mockRoomRepository{}, &mockBookingCounter{}, &mockAuditSink{})
	room := &model.Room{Name: "Lab 3", Location: "Annex", Capacity: 20}

	err := svc.Create(context.Background(), room)
	if !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("expected UNAUTHORIZED without principal, got %v", err)
	}

	err = svc.Create(facultyContext(), room)
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected FORBIDDEN for faculty, got %v", err)
	}

	if err := svc.Create(adminContext(), room); err != nil {
		t.Errorf("admin create failed: %v", err)
	}
}

func TestCreate_SanitizesAndAudits(t *testing.T) {
	var created *model.Room
	repo := &mockRoomRepository{
		createFunc: func(ctx context.Context, room *model.Room) error {
			room.ID = "507f1f77bcf86cd799439011"
			created = room
			return nil
		},
	}
	audit := &mockAuditSink{}
	svc := newTestService(repo, &mockBookingCounter{}, audit)

	room := &model.Room{Name: "  Room   101 ", Location: " Main  building ", Capacity: 30}
	if err := svc.Create(adminContext(), room); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Name != "Room 101" {
		t.Errorf("expected normalized name, got %q", created.Name)
	}
	if created.Location != "Main building" {
		t.Errorf("expected normalized location, got %q", created.Location)
	}
	if len(audit.entries) != 1 || audit.entries[0].EntityName != "Room" || audit.entries[0].Action != model.ActionCreate {
		t.Errorf("unexpected audit entries: %+v", audit.entries)
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	repo := &mockRoomRepository{
		createFunc: func(ctx context.Context, room *model.Room) error {
			return roomserrors.ErrDuplicateName
		},
	}
	svc := newTestService(repo, &mockBookingCounter{}, &mockAuditSink{})

	err := svc.Create(adminContext(), &model.Room{Name: "Room 101", Location: "Main", Capacity: 30})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("expected CONFLICT on duplicate name, got %v", err)
	}
}

func TestDelete_RefusedWhileBooked(t *testing.T) {
	bookings := &mockBookingCounter{
		countByRoomFunc: func(ctx context.Context, roomID string) (int64, error) {
			return 3, nil
		},
	}
	svc := newTestService(&mockRoomRepository{}, bookings, &mockAuditSink{})

	err := svc.Delete(adminContext(), "507f1f77bcf86cd799439011")
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("expected CONFLICT when bookings exist, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	audit := &mockAuditSink{}
	svc := newTestService(&mockRoomRepository{}, &mockBookingCounter{}, audit)

	if err := svc.Delete(adminContext(), "507f1f77bcf86cd799439011"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != model.ActionDelete {
		t.Errorf("expected delete audit entry, got %+v", audit.entries)
	}
}

func TestUpdate_MergesFields(t *testing.T) {
	var updated *model.Room
	repo := &mockRoomRepository{
		updateFunc: func(ctx context.Context, id string, room *model.Room) error {
			updated = room
			return nil
		},
	}
	svc := newTestService(repo, &mockBookingCounter{}, &mockAuditSink{})

	capacity := 45
	projector := true
	err := svc.Update(adminContext(), "507f1f77bcf86cd799439011", &model.RoomUpdate{
		Capacity:     &capacity,
		HasProjector: &projector,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Capacity != 45 {
		t.Errorf("expected capacity 45, got %d", updated.Capacity)
	}
	if !updated.HasProjector {
		t.Error("expected projector flag to be set")
	}
	if updated.Name != "Room 101" {
		t.Errorf("untouched fields must survive the merge, got name %q", updated.Name)
	}
}

func TestSearchByName_EmptyRejected(t *testing.T) {
	svc := newTestService(&mockRoomRepository{}, &mockBookingCounter{}, &mockAuditSink{})

	_, err := svc.SearchByName(context.Background(), "   ", 10, 0)
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for blank name, got %v", err)
	}
}
