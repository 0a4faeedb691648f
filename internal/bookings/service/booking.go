package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	bookingserrors "hallpass/internal/bookings/errors"
	"hallpass/internal/bookings/repository"
	"hallpass/internal/bookings/validator"
	"hallpass/pkg/auth"
	"hallpass/pkg/config"
	apperrors "hallpass/pkg/errors"
	"hallpass/pkg/model"
	"hallpass/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// overrideNoteFormat is the annotation appended to a displaced booking's notes.
// Downstream consumers parse this line, so the wording is frozen.
const overrideNoteFormat = "\n[EMERGENCY OVERRIDE] This booking was overridden by an emergency booking '%s' at %s."

// RoomReader is the slice of the rooms subsystem the booking service needs.
type RoomReader interface {
	GetByID(ctx context.Context, id string) (*model.Room, error)
}

// AuditSink records a mutating action. Implementations must honor a
// SessionContext so the entry commits atomically with the mutation; Publish
// is called after the transaction commits.
type AuditSink interface {
	Record(ctx context.Context, entry *model.AuditLog) error
	Publish(entry *model.AuditLog)
}

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	Search(ctx context.Context, roomID string, userID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Booking, int64, error)
	CheckConflict(ctx context.Context, roomID string, startTime, endTime time.Time, excludeID string) ([]*model.Booking, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) error
	Delete(ctx context.Context, id string) error
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.RoomLockRepository
	rooms     RoomReader
	audit     AuditSink
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.RoomLockRepository,
	rooms RoomReader,
	audit AuditSink,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		rooms:     rooms,
		audit:     audit,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	principal, ok := auth.FromContext(ctx)
	if !ok {
		return apperrors.Unauthorized("authentication required")
	}
	if err := auth.RequireRole(principal, auth.BookingRoles...); err != nil {
		return err
	}
	booking.UserID = principal.ID

	s.applyDefaults(booking)
	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return err
	}

	if err := s.verifyRoomExists(ctx, booking.RoomID); err != nil {
		return err
	}

	// Advisory lock serializes writers on the same room so two requests
	// cannot both pass the conflict check before either inserts.
	lockID, err := s.acquireRoomLock(ctx, booking.RoomID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseRoomLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	var overridden []*model.Booking
	var auditEntry *model.AuditLog
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		conflicts, err := s.findConflicts(sessCtx, booking.RoomID, booking.StartTime, booking.EndTime, "")
		if err != nil {
			return err
		}

		if len(conflicts) > 0 && !booking.IsEmergency {
			return conflictError(conflicts)
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}

		if booking.IsEmergency && len(conflicts) > 0 {
			if err := s.overrideConflicts(sessCtx, booking, conflicts); err != nil {
				return err
			}
			overridden = conflicts
		}

		entry, err := s.recordAudit(sessCtx, principal, model.ActionCreate, booking.ID, auditDetails(booking, overridden))
		if err != nil {
			return err
		}
		auditEntry = entry
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return err
	}
	s.publishAudit(auditEntry)

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"user_id", booking.UserID,
		"start_time", booking.StartTime,
		"is_emergency", booking.IsEmergency,
		"overridden_count", len(overridden),
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) Search(ctx context.Context, roomID string, userID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	if roomID == "" && userID == "" && startTime == nil && endTime == nil {
		return nil, 0, apperrors.InvalidInput("At least one of room_id, user_id, start_time or end_time is required")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountBySearch(ctx, roomID, userID, startTime, endTime)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings by search",
				"room_id", roomID,
				"user_id", userID,
				"error", err,
			)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.Search(ctx, roomID, userID, startTime, endTime, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search bookings",
				"room_id", roomID,
				"user_id", userID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to search bookings", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.cfg.Log.Debug("Booking search completed",
		"room_id", roomID,
		"user_id", userID,
		"count", len(bookings),
		"total_count", count,
	)
	return bookings, count, nil
}

// CheckConflict returns the bookings in the room whose intervals intersect
// [startTime, endTime). An empty result means the slot is free.
func (s *bookingService) CheckConflict(ctx context.Context, roomID string, startTime, endTime time.Time, excludeID string) ([]*model.Booking, error) {
	if roomID == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}
	if !endTime.After(startTime) {
		return nil, apperrors.Validation("Invalid time range", map[string]any{
			"error": "end_time must be after start_time",
		})
	}

	conflicts, err := s.findConflicts(ctx, roomID, startTime, endTime, excludeID)
	if err != nil {
		return nil, err
	}
	return conflicts, nil
}

func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) error {
	principal, ok := auth.FromContext(ctx)
	if !ok {
		return apperrors.Unauthorized("authentication required")
	}
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		return apperrors.Internal("Failed to check booking existence", err)
	}

	if err := s.requireOwnerOrAdmin(principal, existing); err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeBookingUpdates(existing, updates)
	s.sanitize(merged)

	// The past-start rule only re-applies when the start time itself moves,
	// so in-progress bookings stay editable.
	validateMerged := s.validateExisting
	if updates.StartTime != nil {
		validateMerged = s.validate
	}
	if err := validateMerged(merged); err != nil {
		return err
	}

	if merged.RoomID != existing.RoomID {
		if err := s.verifyRoomExists(ctx, merged.RoomID); err != nil {
			return err
		}
	}

	lockID, err := s.acquireRoomLock(ctx, merged.RoomID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseRoomLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	var auditEntry *model.AuditLog
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		conflicts, err := s.findConflicts(sessCtx, merged.RoomID, merged.StartTime, merged.EndTime, id)
		if err != nil {
			return err
		}

		if len(conflicts) > 0 && !merged.IsEmergency {
			return conflictError(conflicts)
		}

		if _, err := s.repo.Update(sessCtx, id, existing.Version, merged); err != nil {
			if errors.Is(err, bookingserrors.ErrStaleVersion) {
				return apperrors.ConcurrentModification("Booking")
			}
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to update booking", err)
		}

		var overridden []*model.Booking
		if merged.IsEmergency && len(conflicts) > 0 {
			merged.ID = id
			if err := s.overrideConflicts(sessCtx, merged, conflicts); err != nil {
				return err
			}
			overridden = conflicts
		}

		entry, err := s.recordAudit(sessCtx, principal, model.ActionUpdate, id, auditDetails(merged, overridden))
		if err != nil {
			return err
		}
		auditEntry = entry
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		return err
	}
	s.publishAudit(auditEntry)

	s.cfg.Log.Info("Booking updated successfully", "id", id)
	return nil
}

func (s *bookingService) Delete(ctx context.Context, id string) error {
	principal, ok := auth.FromContext(ctx)
	if !ok {
		return apperrors.Unauthorized("authentication required")
	}
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		return apperrors.Internal("Failed to check booking existence", err)
	}

	if err := s.requireOwnerOrAdmin(principal, existing); err != nil {
		return err
	}

	var auditEntry *model.AuditLog
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			if errors.Is(err, bookingserrors.ErrInvalidID) {
				return apperrors.InvalidInput("Invalid booking ID format")
			}
			return apperrors.Internal("Failed to delete booking", err)
		}

		entry, err := s.recordAudit(sessCtx, principal, model.ActionDelete, id, fmt.Sprintf("room_id=%s title=%q", existing.RoomID, existing.Title))
		if err != nil {
			return err
		}
		auditEntry = entry
		return nil
	})
	if err != nil {
		return err
	}
	s.publishAudit(auditEntry)

	s.cfg.Log.Info("Booking deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *bookingService) sanitize(b *model.Booking) {
	b.Title = sanitizer.NormalizeTitle(b.Title)
	b.Description = sanitizer.NormalizeFreeText(b.Description)
	b.Notes = sanitizer.NormalizeFreeText(b.Notes)
}

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		if b.IsEmergency {
			b.Status = model.StatusEmergency
		} else {
			b.Status = model.StatusReserved
		}
	}
	// Status is authoritative; the flag is always derived from it. The
	// conflict branch keys on the flag, so a caller-supplied value must
	// never survive.
	b.IsEmergency = b.Status == model.StatusEmergency
	if b.EndTime.IsZero() && !b.StartTime.IsZero() {
		b.EndTime = b.StartTime.Add(time.Duration(s.cfg.DefaultBookingDurationMin) * time.Minute)
	}
}

func (s *bookingService) mergeBookingUpdates(existing *model.Booking, updates *model.BookingUpdate) *model.Booking {
	merged := *existing

	if updates.RoomID != "" {
		merged.RoomID = updates.RoomID
	}
	if updates.Title != "" {
		merged.Title = updates.Title
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if updates.Notes != nil {
		merged.Notes = *updates.Notes
	}
	merged.IsEmergency = merged.Status == model.StatusEmergency

	return &merged
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) validateExisting(booking *model.Booking) error {
	if err := s.validator.ValidateExisting(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) verifyRoomExists(ctx context.Context, roomID string) error {
	_, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) || apperrors.HasCode(err, apperrors.CodeInvalidInput) {
			return apperrors.Validation("Room does not exist", map[string]any{"room_id": roomID})
		}
		return apperrors.Internal("Failed to verify room", err)
	}
	return nil
}

// findConflicts queries the overlap filter and re-checks each candidate in
// memory. The double check keeps the boundary semantics (touching intervals
// are not conflicts) even if the stored filter drifts.
func (s *bookingService) findConflicts(ctx context.Context, roomID string, startTime, endTime time.Time, excludeID string) ([]*model.Booking, error) {
	candidates, err := s.repo.FindOverlapping(ctx, roomID, startTime, endTime, excludeID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to check existing bookings", err)
	}

	conflicts := make([]*model.Booking, 0, len(candidates))
	for _, c := range candidates {
		if c.Overlaps(startTime, endTime) {
			conflicts = append(conflicts, c)
		}
	}
	return conflicts, nil
}

// overrideConflicts annotates each displaced booking with the frozen note line
// and a structured override event referencing the emergency booking.
func (s *bookingService) overrideConflicts(ctx context.Context, emergency *model.Booking, conflicts []*model.Booking) error {
	now := time.Now().UTC().Truncate(time.Second)
	note := fmt.Sprintf(overrideNoteFormat, emergency.Title, now.Format(time.RFC3339))

	updates := make([]repository.OverrideUpdate, 0, len(conflicts))
	for _, c := range conflicts {
		updates = append(updates, repository.OverrideUpdate{
			ID:    c.ID,
			Notes: c.Notes + note,
			Event: model.OverrideEvent{
				OverriddenBy: emergency.ID,
				Title:        emergency.Title,
				Timestamp:    now,
			},
		})
	}

	if err := s.repo.ApplyOverrides(ctx, updates); err != nil {
		return apperrors.Internal("Failed to annotate overridden bookings", err)
	}
	return nil
}

func (s *bookingService) recordAudit(ctx context.Context, principal *auth.Principal, action, entityID, details string) (*model.AuditLog, error) {
	if s.audit == nil {
		return nil, nil
	}

	entry := &model.AuditLog{
		UserID:     principal.ID,
		UserName:   principal.Name,
		Action:     action,
		EntityName: "Booking",
		EntityID:   entityID,
		Details:    details,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		return nil, apperrors.Internal("Failed to record audit entry", err)
	}
	return entry, nil
}

// publishAudit emits the committed entry downstream. Called only after the
// surrounding transaction has committed.
func (s *bookingService) publishAudit(entry *model.AuditLog) {
	if s.audit == nil || entry == nil {
		return
	}
	s.audit.Publish(entry)
}

func (s *bookingService) requireOwnerOrAdmin(principal *auth.Principal, booking *model.Booking) error {
	if principal.ID == booking.UserID || principal.HasRole(auth.RoleAdmin) {
		return nil
	}
	return apperrors.Forbidden("only the booking owner or an admin can modify this booking")
}

func (s *bookingService) acquireRoomLock(ctx context.Context, roomID string) (string, error) {
	lockID := fmt.Sprintf("room_lock_%s", roomID)

	_, err := s.lockRepo.Acquire(ctx, lockID, s.cfg.RoomLockTTL)
	if err != nil {
		if repository.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This room is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire room lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseRoomLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Release(ctx, lockID)
}

func conflictError(conflicts []*model.Booking) error {
	windows := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		windows = append(windows, fmt.Sprintf("%s - %s",
			c.StartTime.Format(time.RFC3339),
			c.EndTime.Format(time.RFC3339),
		))
	}
	return apperrors.Conflict(fmt.Sprintf(
		"Booking time overlaps with existing booking (%s)",
		strings.Join(windows, "; "),
	))
}

func auditDetails(b *model.Booking, overridden []*model.Booking) string {
	details := fmt.Sprintf("room_id=%s title=%q start=%s end=%s emergency=%t",
		b.RoomID, b.Title,
		b.StartTime.Format(time.RFC3339),
		b.EndTime.Format(time.RFC3339),
		b.IsEmergency,
	)
	if len(overridden) > 0 {
		ids := make([]string, 0, len(overridden))
		for _, o := range overridden {
			ids = append(ids, o.ID)
		}
		details += fmt.Sprintf(" overrode=[%s]", strings.Join(ids, ","))
	}
	return details
}
