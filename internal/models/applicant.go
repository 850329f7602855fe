// internal/models/applicant.go
package models

import "time"

// Applicant is a person seeking a mortgage.
type Applicant struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	DateOfBirth Date      `json:"dateOfBirth"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"createdAt"`
}
