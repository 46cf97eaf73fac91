package domain

import "errors"

var ErrStaffNotFound = errors.New("staff not found")

// Staff is a doctor that patients can be booked with.
type Staff struct {
	ID             int64
	Name           string
	Specialization string
	Email          string
	Phone          string
}
