package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hallpass/pkg/config"
	apperrors "hallpass/pkg/errors"
	"hallpass/pkg/logger"
	"hallpass/pkg/model"
)

type mockBookingCounter struct {
	countFunc         func(ctx context.Context) (int64, error)
	countByStatusFunc func(ctx context.Context, status string) (int64, error)
	countBySearchFunc func(ctx context.Context, roomID, userID string, start, end *time.Time) (int64, error)
}

func (m *mockBookingCounter) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockBookingCounter) CountByStatus(ctx context.Context, status string) (int64, error) {
	if m.countByStatusFunc != nil {
		return m.countByStatusFunc(ctx, status)
	}
	return 0, nil
}

func (m *mockBookingCounter) CountBySearch(ctx context.Context, roomID, userID string, start, end *time.Time) (int64, error) {
	if m.countBySearchFunc != nil {
		return m.countBySearchFunc(ctx, roomID, userID, start, end)
	}
	return 0, nil
}

type mockRoomCounter struct {
	countFunc func(ctx context.Context) (int64, error)
}

func (m *mockRoomCounter) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log:         logger.New(logger.Config{Level: logger.ERROR}),
		ReadTimeout: 5 * time.Second,
	}
}

func TestGetStats(t *testing.T) {
	bookings := &mockBookingCounter{
		countFunc: func(ctx context.Context) (int64, error) {
			return 120, nil
		},
		countByStatusFunc: func(ctx context.Context, status string) (int64, error) {
			if status != model.StatusEmergency {
				t.Errorf("expected emergency status filter, got %q", status)
			}
			return 4, nil
		},
		countBySearchFunc: func(ctx context.Context, roomID, userID string, start, end *time.Time) (int64, error) {
			if start == nil || end == nil {
				t.Error("expected a bounded day window")
				return 0, nil
			}
			if got := end.Sub(*start); got != 24*time.Hour {
				t.Errorf("expected 24h window, got %s", got)
			}
			return 9, nil
		},
	}
	rooms := &mockRoomCounter{
		countFunc: func(ctx context.Context) (int64, error) {
			return 15, nil
		},
	}

	svc := NewDashboardService(bookings, rooms, testConfig())
	stats, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalRooms != 15 {
		t.Errorf("TotalRooms = %d, want 15", stats.TotalRooms)
	}
	if stats.TotalBookings != 120 {
		t.Errorf("TotalBookings = %d, want 120", stats.TotalBookings)
	}
	if stats.EmergencyBookings != 4 {
		t.Errorf("EmergencyBookings = %d, want 4", stats.EmergencyBookings)
	}
	if stats.BookingsToday != 9 {
		t.Errorf("BookingsToday = %d, want 9", stats.BookingsToday)
	}
}

func TestGetStats_PartialFailure(t *testing.T) {
	bookings := &mockBookingCounter{
		countByStatusFunc: func(ctx context.Context, status string) (int64, error) {
			return 0, errors.New("cursor timeout")
		},
	}
	svc := NewDashboardService(bookings, &mockRoomCounter{}, testConfig())

	_, err := svc.GetStats(context.Background())
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("expected INTERNAL_ERROR on partial failure, got %v", err)
	}
}
