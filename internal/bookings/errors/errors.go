package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrTimeConflict = errors.New("booking time conflicts with existing booking")

	ErrStaleVersion = errors.New("booking was modified by another request")

	ErrInvalidTimeRange = errors.New("end time must be after start time")
)
