package validator

import (
	"testing"
	"time"

	"hallpass/pkg/logger"
	"hallpass/pkg/model"
)

func newTestValidator(t *testing.T) *BookingValidator {
	t.Helper()
	return NewBookingValidator(logger.New(logger.Config{Level: logger.ERROR}))
}

func validBooking() *model.Booking {
	start := time.Now().Add(2 * time.Hour)
	return &model.Booking{
		RoomID:    "507f1f77bcf86cd799439011",
		UserID:    "teacher-42",
		Title:     "Physics lecture",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    model.StatusReserved,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *model.Booking)
		wantErr bool
	}{
		{
			name:    "valid booking",
			mutate:  func(b *model.Booking) {},
			wantErr: false,
		},
		{
			name: "missing room id",
			mutate: func(b *model.Booking) {
				b.RoomID = ""
			},
			wantErr: true,
		},
		{
			name: "malformed room id",
			mutate: func(b *model.Booking) {
				b.RoomID = "not-an-object-id"
			},
			wantErr: true,
		},
		{
			name: "missing user id",
			mutate: func(b *model.Booking) {
				b.UserID = ""
			},
			wantErr: true,
		},
		{
			name: "missing title",
			mutate: func(b *model.Booking) {
				b.Title = ""
			},
			wantErr: true,
		},
		{
			name: "title too long",
			mutate: func(b *model.Booking) {
				for len(b.Title) <= 100 {
					b.Title += "x"
				}
			},
			wantErr: true,
		},
		{
			name: "end before start",
			mutate: func(b *model.Booking) {
				b.EndTime = b.StartTime.Add(-time.Hour)
			},
			wantErr: true,
		},
		{
			name: "end equals start",
			mutate: func(b *model.Booking) {
				b.EndTime = b.StartTime
			},
			wantErr: true,
		},
		{
			name: "unknown status",
			mutate: func(b *model.Booking) {
				b.Status = "pending"
			},
			wantErr: true,
		},
		{
			name: "start in the past",
			mutate: func(b *model.Booking) {
				b.StartTime = time.Now().Add(-time.Hour)
				b.EndTime = b.StartTime.Add(2 * time.Hour)
			},
			wantErr: true,
		},
		{
			name: "emergency may start in the past",
			mutate: func(b *model.Booking) {
				b.StartTime = time.Now().Add(-time.Minute)
				b.EndTime = b.StartTime.Add(2 * time.Hour)
				b.Status = model.StatusEmergency
				b.IsEmergency = true
			},
			wantErr: false,
		},
		{
			name: "emergency status without flag",
			mutate: func(b *model.Booking) {
				b.Status = model.StatusEmergency
				b.IsEmergency = false
			},
			wantErr: true,
		},
	}

	v := newTestValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBooking()
			tt.mutate(b)
			err := v.Validate(b)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateExisting_AllowsPastStart(t *testing.T) {
	v := newTestValidator(t)

	b := validBooking()
	b.StartTime = time.Now().Add(-2 * time.Hour)
	b.EndTime = b.StartTime.Add(4 * time.Hour)

	if err := v.Validate(b); err == nil {
		t.Error("Validate() should reject a new booking starting in the past")
	}
	if err := v.ValidateExisting(b); err != nil {
		t.Errorf("ValidateExisting() should accept an in-progress booking, got %v", err)
	}

	// Everything except the past-start rule still applies.
	b.EndTime = b.StartTime
	if err := v.ValidateExisting(b); err == nil {
		t.Error("ValidateExisting() should reject an empty interval")
	}
}

func TestValidateUpdate(t *testing.T) {
	start := time.Now().Add(time.Hour)
	end := start.Add(time.Hour)
	badEnd := start.Add(-time.Hour)
	longNotes := string(make([]byte, 2001))

	tests := []struct {
		name    string
		update  *model.BookingUpdate
		wantErr bool
	}{
		{
			name:    "empty update",
			update:  &model.BookingUpdate{},
			wantErr: false,
		},
		{
			name:    "title only",
			update:  &model.BookingUpdate{Title: "New title"},
			wantErr: false,
		},
		{
			name:    "consistent time range",
			update:  &model.BookingUpdate{StartTime: &start, EndTime: &end},
			wantErr: false,
		},
		{
			name:    "end before start",
			update:  &model.BookingUpdate{StartTime: &start, EndTime: &badEnd},
			wantErr: true,
		},
		{
			name:    "end equals start",
			update:  &model.BookingUpdate{StartTime: &start, EndTime: &start},
			wantErr: true,
		},
		{
			name:    "invalid status",
			update:  &model.BookingUpdate{Status: "cancelled"},
			wantErr: true,
		},
		{
			name:    "notes too long",
			update:  &model.BookingUpdate{Notes: &longNotes},
			wantErr: true,
		},
	}

	v := newTestValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpdate(tt.update)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUpdate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
