// internal/mortgage/dedup.go
package mortgage

import (
	"strings"

	"simple-mortgage/internal/models"
)

// IdentityKey identifies an applicant for idempotent creation. Names and email
// are compared case-insensitively after trimming; the birth date exactly.
type IdentityKey struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	Email       string
}

func IdentityKeyOf(a models.Applicant) IdentityKey {
	return IdentityKey{
		FirstName:   normalizeText(a.FirstName),
		LastName:    normalizeText(a.LastName),
		DateOfBirth: a.DateOfBirth.String(),
		Email:       normalizeText(a.Email),
	}
}

// String is stable and suitable as a lock or cache key suffix.
func (k IdentityKey) String() string {
	return strings.Join([]string{k.FirstName, k.LastName, k.DateOfBirth, k.Email}, "|")
}

// Matches reports whether a has this identity.
func (k IdentityKey) Matches(a models.Applicant) bool {
	return IdentityKeyOf(a) == k
}

// MatchApplicant returns the first existing applicant with the candidate's identity.
func MatchApplicant(candidate models.Applicant, existing []models.Applicant) (*models.Applicant, bool) {
	key := IdentityKeyOf(candidate)
	for i := range existing {
		if key.Matches(existing[i]) {
			match := existing[i]
			return &match, true
		}
	}
	return nil, false
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
