// internal/storage/postgres_test.go
package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"simple-mortgage/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Applicant Store Tests
// ==========================

var applicantCols = []string{"id", "first_name", "last_name", "date_of_birth", "email", "created_at"}

func TestPostgresApplicantStore_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, first_name, last_name, date_of_birth, email, created_at FROM applicants WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(applicantCols).
			AddRow(1, "Gordon", "Ramsey 17", time.Date(2003, 1, 1, 0, 0, 0, 0, time.UTC), "gordon@fakemail.com", created))

	s := NewPostgresApplicantStore(db)
	a, err := s.Get(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, "2003-01-01", a.DateOfBirth.String())
	assert.Equal(t, created, a.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresApplicantStore_GetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM applicants WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(applicantCols))

	_, err = NewPostgresApplicantStore(db).Get(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresApplicantStore_FindByIdentity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	candidate := models.Applicant{
		FirstName:   " Peter ",
		LastName:    "Lansley",
		DateOfBirth: models.NewDate(2020, time.February, 11),
		Email:       "PETER@x",
	}

	mock.ExpectQuery(`FROM applicants\s+WHERE lower\(trim\(first_name\)\) = \$1`).
		WithArgs("peter", "lansley", "2020-02-11", "peter@x").
		WillReturnRows(sqlmock.NewRows(applicantCols).
			AddRow(1, "Peter", "Lansley", time.Date(2020, 2, 11, 0, 0, 0, 0, time.UTC), "peter@x", time.Now()))

	got, err := NewPostgresApplicantStore(db).FindByIdentity(context.Background(), candidate)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresApplicantStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO applicants`).
		WithArgs("Peter", "Lansley", sqlmock.AnyArg(), "peter@x").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, created))

	a := &models.Applicant{FirstName: "Peter", LastName: "Lansley", DateOfBirth: models.NewDate(2020, time.February, 11), Email: "peter@x"}
	require.NoError(t, NewPostgresApplicantStore(db).Create(context.Background(), a))

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, created, a.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresApplicantStore_UpdateNoRowsIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE applicants`).
		WithArgs(int64(5), "Peter", "Lansley", sqlmock.AnyArg(), "peter@x").
		WillReturnResult(sqlmock.NewResult(0, 0))

	a := &models.Applicant{ID: 5, FirstName: "Peter", LastName: "Lansley", DateOfBirth: models.NewDate(2020, time.February, 11), Email: "peter@x"}
	err = NewPostgresApplicantStore(db).Update(context.Background(), a)

	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresApplicantStore_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM applicants WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM applicants WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := NewPostgresApplicantStore(db)
	assert.NoError(t, s.Delete(context.Background(), 1))
	assert.ErrorIs(t, s.Delete(context.Background(), 1), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresApplicantStore_ExistsAndCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM applicants`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	s := NewPostgresApplicantStore(db)
	ok, err := s.Exists(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresApplicantStore_ListError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM applicants ORDER BY id`).
		WillReturnError(errors.New("connection reset"))

	_, err = NewPostgresApplicantStore(db).List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list applicants")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Product Store Tests
// ==========================

var productCols = []string{"id", "lender", "interest_rate", "interest_term", "ltv"}

func TestPostgresProductStore_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, lender, interest_rate, interest_term, ltv FROM products ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(1, "Bank A", 2.0, "Variable", 60.0).
			AddRow(3, "Bank C", 4.0, "Variable", 90.0))

	list, err := NewPostgresProductStore(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bank C", list[1].Lender)
	assert.Equal(t, 90.0, list[1].LTV)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProductStore_ListEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM products ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(productCols))

	list, err := NewPostgresProductStore(db).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestPostgresProductStore_CreateUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO products`).
		WithArgs("Bank D", 5.5, "Fixed", 75.0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectExec(`UPDATE products`).
		WithArgs(int64(4), "Bank D", 5.0, "Fixed", 75.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s := NewPostgresProductStore(db)
	p := &models.Product{Lender: "Bank D", InterestRate: 5.5, InterestTerm: "Fixed", LTV: 75}
	require.NoError(t, s.Create(context.Background(), p))
	assert.Equal(t, int64(4), p.ID)

	p.InterestRate = 5.0
	require.NoError(t, s.Update(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProductStore_GetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM products WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(productCols))

	_, err = NewPostgresProductStore(db).Get(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS applicants`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
