// internal/storage/store.go
package storage

import (
	"context"
	"errors"

	"simple-mortgage/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an update affected no row.
	ErrConflict = errors.New("record changed concurrently")
)

type ApplicantStore interface {
	List(ctx context.Context) ([]models.Applicant, error)
	Get(ctx context.Context, id int64) (*models.Applicant, error)
	// FindByIdentity returns the stored applicant with candidate's identity key.
	FindByIdentity(ctx context.Context, candidate models.Applicant) (*models.Applicant, error)
	// Create assigns ID and CreatedAt on a.
	Create(ctx context.Context, a *models.Applicant) error
	Update(ctx context.Context, a *models.Applicant) error
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}

type ProductStore interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	// Create assigns ID on p.
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}
