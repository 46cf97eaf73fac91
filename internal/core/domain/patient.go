package domain

import "errors"

var ErrPatientNotFound = errors.New("patient not found")

// Patient is a registered user of the clinic. ID is assigned by the store.
type Patient struct {
	ID    int64
	Name  string
	Email string
	Phone string
}
