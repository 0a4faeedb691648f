package validator

import (
	"testing"

	"hallpass/pkg/logger"
	"hallpass/pkg/model"
)

func validRoom() *model.Room {
	return &model.Room{
		Name:     "Room 101",
		Location: "Main building, first floor",
		Capacity: 30,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *model.Room)
		wantErr bool
	}{
		{
			name:    "valid room",
			mutate:  func(r *model.Room) {},
			wantErr: false,
		},
		{
			name: "missing name",
			mutate: func(r *model.Room) {
				r.Name = ""
			},
			wantErr: true,
		},
		{
			name: "name too long",
			mutate: func(r *model.Room) {
				for len(r.Name) <= 50 {
					r.Name += "x"
				}
			},
			wantErr: true,
		},
		{
			name: "missing location",
			mutate: func(r *model.Room) {
				r.Location = ""
			},
			wantErr: true,
		},
		{
			name: "zero capacity",
			mutate: func(r *model.Room) {
				r.Capacity = 0
			},
			wantErr: true,
		},
		{
			name: "capacity too large",
			mutate: func(r *model.Room) {
				r.Capacity = 501
			},
			wantErr: true,
		},
		{
			name: "negative capacity",
			mutate: func(r *model.Room) {
				r.Capacity = -5
			},
			wantErr: true,
		},
	}

	v := NewRoomValidator(logger.New(logger.Config{Level: logger.ERROR}))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := validRoom()
			tt.mutate(room)
			err := v.Validate(room)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	zero := 0
	big := 600
	fine := 25

	tests := []struct {
		name    string
		update  *model.RoomUpdate
		wantErr bool
	}{
		{
			name:    "empty update",
			update:  &model.RoomUpdate{},
			wantErr: false,
		},
		{
			name:    "capacity in range",
			update:  &model.RoomUpdate{Capacity: &fine},
			wantErr: false,
		},
		{
			name:    "capacity zero",
			update:  &model.RoomUpdate{Capacity: &zero},
			wantErr: true,
		},
		{
			name:    "capacity too large",
			update:  &model.RoomUpdate{Capacity: &big},
			wantErr: true,
		},
	}

	v := NewRoomValidator(logger.New(logger.Config{Level: logger.ERROR}))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpdate(tt.update)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUpdate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
