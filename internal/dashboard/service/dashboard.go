package service

import (
	"context"
	"sync"
	"time"

	"hallpass/pkg/config"
	apperrors "hallpass/pkg/errors"
	"hallpass/pkg/model"
)

// BookingCounter is the slice of the bookings repository the dashboard reads.
type BookingCounter interface {
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	CountBySearch(ctx context.Context, roomID string, userID string, startTime, endTime *time.Time) (int64, error)
}

// RoomCounter is the slice of the rooms repository the dashboard reads.
type RoomCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Stats is the aggregate snapshot shown on the landing dashboard.
type Stats struct {
	TotalRooms        int64 `json:"total_rooms"`
	TotalBookings     int64 `json:"total_bookings"`
	EmergencyBookings int64 `json:"emergency_bookings"`
	BookingsToday     int64 `json:"bookings_today"`
}

type DashboardService interface {
	GetStats(ctx context.Context) (*Stats, error)
}

type dashboardService struct {
	bookings BookingCounter
	rooms    RoomCounter
	cfg      *config.Config
	now      func() time.Time
}

func NewDashboardService(bookings BookingCounter, rooms RoomCounter, cfg *config.Config) DashboardService {
	return &dashboardService{
		bookings: bookings,
		rooms:    rooms,
		cfg:      cfg,
		now:      time.Now,
	}
}

// GetStats runs the four counts concurrently; a single failure fails the whole
// snapshot rather than returning partial numbers.
func (s *dashboardService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	errs := make([]error, 4)
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		stats.TotalRooms, errs[0] = s.rooms.Count(ctx)
	}()

	go func() {
		defer wg.Done()
		stats.TotalBookings, errs[1] = s.bookings.Count(ctx)
	}()

	go func() {
		defer wg.Done()
		stats.EmergencyBookings, errs[2] = s.bookings.CountByStatus(ctx, model.StatusEmergency)
	}()

	go func() {
		defer wg.Done()
		dayStart := s.dayStart()
		dayEnd := dayStart.Add(24 * time.Hour)
		stats.BookingsToday, errs[3] = s.bookings.CountBySearch(ctx, "", "", &dayStart, &dayEnd)
	}()

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			s.cfg.Log.Error("Failed to compute dashboard stats", "error", err)
			return nil, apperrors.Internal("Failed to compute dashboard statistics", err)
		}
	}

	return stats, nil
}

func (s *dashboardService) dayStart() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
