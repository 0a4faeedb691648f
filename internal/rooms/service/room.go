package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	roomserrors "hallpass/internal/rooms/errors"
	"hallpass/internal/rooms/repository"
	"hallpass/internal/rooms/validator"
	"hallpass/pkg/auth"
	"hallpass/pkg/config"
	apperrors "hallpass/pkg/errors"
	"hallpass/pkg/model"
	"hallpass/pkg/sanitizer"
)

// BookingCounter reports how many bookings reference a room. Deleting a room
// that still has bookings would orphan them.
type BookingCounter interface {
	CountByRoom(ctx context.Context, roomID string) (int64, error)
}

// AuditSink records a mutating action.
type AuditSink interface {
	Record(ctx context.Context, entry *model.AuditLog) error
}

type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	SearchByName(ctx context.Context, name string, limit int, offset int64) ([]*model.Room, error)
	Update(ctx context.Context, id string, updates *model.RoomUpdate) error
	Delete(ctx context.Context, id string) error
}

type roomService struct {
	repo      repository.RoomRepository
	bookings  BookingCounter
	audit     AuditSink
	validator *validator.RoomValidator
	cfg       *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	bookings BookingCounter,
	audit AuditSink,
	validator *validator.RoomValidator,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:      repo,
		bookings:  bookings,
		audit:     audit,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	principal, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}

	s.sanitize(room)
	if err := s.validate(room); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, roomserrors.ErrDuplicateName) {
			return apperrors.Conflict(fmt.Sprintf("A room named %q already exists", room.Name))
		}
		s.cfg.Log.Error("Failed to create room", "error", err)
		return apperrors.Internal("Failed to create room", err)
	}

	s.recordAudit(ctx, principal, model.ActionCreate, room.ID, fmt.Sprintf("name=%q location=%q capacity=%d", room.Name, room.Location, room.Capacity))

	s.cfg.Log.Info("Room created successfully", "id", room.ID, "name", room.Name)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room", id)
		}
		if errors.Is(err, roomserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}

	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rooms", "error", errCount)
			errCount = apperrors.Internal("Failed to count rooms", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list rooms", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve rooms", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return rooms, count, nil
}

func (s *roomService) SearchByName(ctx context.Context, name string, limit int, offset int64) ([]*model.Room, error) {
	name = sanitizer.NormalizeRoomName(name)
	if name == "" {
		return nil, apperrors.InvalidInput("Search name cannot be empty")
	}

	rooms, err := s.repo.SearchByName(ctx, name, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to search rooms", "name", name, "error", err)
		return nil, apperrors.Internal("Failed to search rooms", err)
	}

	return rooms, nil
}

func (s *roomService) Update(ctx context.Context, id string, updates *model.RoomUpdate) error {
	principal, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		if errors.Is(err, roomserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid room ID format")
		}
		return apperrors.Internal("Failed to check room existence", err)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeRoomUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, roomserrors.ErrDuplicateName) {
			return apperrors.Conflict(fmt.Sprintf("A room named %q already exists", merged.Name))
		}
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		s.cfg.Log.Error("Failed to update room", "id", id, "error", err)
		return apperrors.Internal("Failed to update room", err)
	}

	s.recordAudit(ctx, principal, model.ActionUpdate, id, fmt.Sprintf("name=%q location=%q capacity=%d", merged.Name, merged.Location, merged.Capacity))

	s.cfg.Log.Info("Room updated successfully", "id", id)
	return nil
}

func (s *roomService) Delete(ctx context.Context, id string) error {
	principal, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	inUse, err := s.bookings.CountByRoom(ctx, id)
	if err != nil {
		return apperrors.Internal("Failed to check room usage", err)
	}
	if inUse > 0 {
		return apperrors.Conflict(fmt.Sprintf("Room has %d booking(s) and cannot be deleted", inUse))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Room", id)
		}
		if errors.Is(err, roomserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid room ID format")
		}
		return apperrors.Internal("Failed to delete room", err)
	}

	s.recordAudit(ctx, principal, model.ActionDelete, id, "")

	s.cfg.Log.Info("Room deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *roomService) requireAdmin(ctx context.Context) (*auth.Principal, error) {
	principal, _ := auth.FromContext(ctx)
	if err := auth.RequireRole(principal, auth.RoleAdmin); err != nil {
		return nil, err
	}
	return principal, nil
}

func (s *roomService) sanitize(r *model.Room) {
	r.Name = sanitizer.NormalizeRoomName(r.Name)
	r.Location = sanitizer.TrimAndNormalize(r.Location)
	r.Description = sanitizer.NormalizeFreeText(r.Description)
}

func (s *roomService) mergeRoomUpdates(existing *model.Room, updates *model.RoomUpdate) *model.Room {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Location != "" {
		merged.Location = updates.Location
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}
	if updates.HasProjector != nil {
		merged.HasProjector = *updates.HasProjector
	}
	if updates.HasComputers != nil {
		merged.HasComputers = *updates.HasComputers
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}

	return &merged
}

func (s *roomService) validate(room *model.Room) error {
	if err := s.validator.Validate(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "error", err)
		return apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// recordAudit is best-effort for rooms. Room mutations are rare admin actions
// and a missing entry must not fail the operation.
func (s *roomService) recordAudit(ctx context.Context, principal *auth.Principal, action, entityID, details string) {
	if s.audit == nil {
		return
	}

	entry := &model.AuditLog{
		UserID:     principal.ID,
		UserName:   principal.Name,
		Action:     action,
		EntityName: "Room",
		EntityID:   entityID,
		Details:    details,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.cfg.Log.Warn("Failed to record room audit entry", "action", action, "entity_id", entityID, "error", err)
	}
}
