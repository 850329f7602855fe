// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"simple-mortgage/internal/models"
	"simple-mortgage/internal/mortgage"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the applicants and products tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// PostgresApplicantStore persists applicants in PostgreSQL.
type PostgresApplicantStore struct {
	db *sql.DB
}

func NewPostgresApplicantStore(db *sql.DB) *PostgresApplicantStore {
	return &PostgresApplicantStore{db: db}
}

const applicantColumns = `id, first_name, last_name, date_of_birth, email, created_at`

func scanApplicant(row rowScanner) (*models.Applicant, error) {
	var (
		a   models.Applicant
		dob time.Time
	)
	if err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &dob, &a.Email, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.DateOfBirth = models.DateOf(dob)
	return &a, nil
}

func (s *PostgresApplicantStore) List(ctx context.Context) ([]models.Applicant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+applicantColumns+` FROM applicants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	defer rows.Close()

	out := []models.Applicant{}
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan applicant: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	return out, nil
}

func (s *PostgresApplicantStore) Get(ctx context.Context, id int64) (*models.Applicant, error) {
	a, err := scanApplicant(s.db.QueryRowContext(ctx,
		`SELECT `+applicantColumns+` FROM applicants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get applicant %d: %w", id, err)
	}
	return a, nil
}

func (s *PostgresApplicantStore) FindByIdentity(ctx context.Context, candidate models.Applicant) (*models.Applicant, error) {
	key := mortgage.IdentityKeyOf(candidate)
	query := `
		SELECT ` + applicantColumns + `
		FROM applicants
		WHERE lower(trim(first_name)) = $1
		  AND lower(trim(last_name)) = $2
		  AND date_of_birth = $3
		  AND lower(trim(email)) = $4
		ORDER BY id
		LIMIT 1
	`
	a, err := scanApplicant(s.db.QueryRowContext(ctx, query,
		key.FirstName, key.LastName, key.DateOfBirth, key.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find applicant by identity: %w", err)
	}
	return a, nil
}

func (s *PostgresApplicantStore) Create(ctx context.Context, a *models.Applicant) error {
	query := `
		INSERT INTO applicants (first_name, last_name, date_of_birth, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(ctx, query, a.FirstName, a.LastName, a.DateOfBirth.Time, a.Email).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert applicant: %w", err)
	}
	return nil
}

func (s *PostgresApplicantStore) Update(ctx context.Context, a *models.Applicant) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applicants
		SET first_name = $2, last_name = $3, date_of_birth = $4, email = $5
		WHERE id = $1`,
		a.ID, a.FirstName, a.LastName, a.DateOfBirth.Time, a.Email)
	if err != nil {
		return fmt.Errorf("update applicant %d: %w", a.ID, err)
	}
	return requireAffected(res, ErrConflict)
}

func (s *PostgresApplicantStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM applicants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete applicant %d: %w", id, err)
	}
	return requireAffected(res, ErrNotFound)
}

func (s *PostgresApplicantStore) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, s.db, `SELECT EXISTS(SELECT 1 FROM applicants WHERE id = $1)`, id)
}

func (s *PostgresApplicantStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, `SELECT COUNT(*) FROM applicants`)
}

// PostgresProductStore persists products in PostgreSQL.
type PostgresProductStore struct {
	db *sql.DB
}

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

const productColumns = `id, lender, interest_rate, interest_term, ltv`

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	if err := row.Scan(&p.ID, &p.Lender, &p.InterestRate, &p.InterestTerm, &p.LTV); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresProductStore) List(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func (s *PostgresProductStore) Get(ctx context.Context, id int64) (*models.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (s *PostgresProductStore) Create(ctx context.Context, p *models.Product) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (lender, interest_rate, interest_term, ltv)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		p.Lender, p.InterestRate, p.InterestTerm, p.LTV).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *PostgresProductStore) Update(ctx context.Context, p *models.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET lender = $2, interest_rate = $3, interest_term = $4, ltv = $5
		WHERE id = $1`,
		p.ID, p.Lender, p.InterestRate, p.InterestTerm, p.LTV)
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	return requireAffected(res, ErrConflict)
}

func (s *PostgresProductStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return requireAffected(res, ErrNotFound)
}

func (s *PostgresProductStore) Exists(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, s.db, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id)
}

func (s *PostgresProductStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, `SELECT COUNT(*) FROM products`)
}

func requireAffected(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return none
	}
	return nil
}

func exists(ctx context.Context, db *sql.DB, query string, id int64) (bool, error) {
	var ok bool
	if err := db.QueryRowContext(ctx, query, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("exists check: %w", err)
	}
	return ok, nil
}

func count(ctx context.Context, db *sql.DB, query string) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}
