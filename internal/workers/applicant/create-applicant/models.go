// internal/workers/applicant/create-applicant/models.go
package createapplicant

import "simple-mortgage/internal/models"

type Input struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"` // YYYY-MM-DD
	Email       string `json:"email"`
}

type Output struct {
	ApplicantID int64             `json:"applicantId"`
	Created     bool              `json:"created"`
	Applicant   *models.Applicant `json:"applicant"`
}
