// internal/mortgage/dedup_test.go
package mortgage

import (
	"testing"
	"time"

	"simple-mortgage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchApplicant(t *testing.T) {
	existing := []models.Applicant{
		{ID: 1, FirstName: "Gordon", LastName: "Ramsey 17", DateOfBirth: models.NewDate(2003, time.January, 1), Email: "gordon@fakemail.com"},
		{ID: 2, FirstName: "Peter", LastName: "Lansley", DateOfBirth: models.NewDate(2020, time.February, 11), Email: "peter@x"},
	}

	tests := []struct {
		name      string
		candidate models.Applicant
		wantID    int64
		wantMatch bool
	}{
		{
			name:      "exact",
			candidate: models.Applicant{FirstName: "Peter", LastName: "Lansley", DateOfBirth: models.NewDate(2020, time.February, 11), Email: "peter@x"},
			wantID:    2,
			wantMatch: true,
		},
		{
			name:      "case and whitespace differ",
			candidate: models.Applicant{FirstName: "  PETER ", LastName: "lansley", DateOfBirth: models.NewDate(2020, time.February, 11), Email: " Peter@X "},
			wantID:    2,
			wantMatch: true,
		},
		{
			name:      "different birth date",
			candidate: models.Applicant{FirstName: "Peter", LastName: "Lansley", DateOfBirth: models.NewDate(2020, time.February, 12), Email: "peter@x"},
		},
		{
			name:      "different email",
			candidate: models.Applicant{FirstName: "Gordon", LastName: "Ramsey 17", DateOfBirth: models.NewDate(2003, time.January, 1), Email: "ramsey@fakemail.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchApplicant(tt.candidate, existing)
			assert.Equal(t, tt.wantMatch, ok)
			if tt.wantMatch {
				require.NotNil(t, got)
				assert.Equal(t, tt.wantID, got.ID)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestIdentityKey_String(t *testing.T) {
	key := IdentityKeyOf(models.Applicant{
		FirstName:   " Peter",
		LastName:    "LANSLEY",
		DateOfBirth: models.NewDate(2020, time.February, 11),
		Email:       "Peter@X",
	})
	assert.Equal(t, "peter|lansley|2020-02-11|peter@x", key.String())
}
