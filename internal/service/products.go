// internal/service/products.go
package service

import (
	"context"
	"errors"
	"strings"

	apperrors "simple-mortgage/internal/common/errors"
	"simple-mortgage/internal/common/logger"
	"simple-mortgage/internal/models"
	"simple-mortgage/internal/mortgage"
	"simple-mortgage/internal/storage"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ProductService owns product CRUD.
type ProductService struct {
	store  storage.ProductStore
	tracer trace.Tracer
	logger logger.Logger
}

func NewProductService(store storage.ProductStore, tracer trace.Tracer, log logger.Logger) *ProductService {
	return &ProductService{
		store:  store,
		tracer: tracer,
		logger: log.WithFields(map[string]interface{}{"component": "product-service"}),
	}
}

func (s *ProductService) List(ctx context.Context) (_ []models.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.List")
	defer func() { endSpan(span, err) }()

	list, err := s.store.List(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseQueryFailedError("list products", err)
	}
	return list, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (_ *models.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Get", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer func() { endSpan(span, err) }()

	p, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NewProductNotFoundError(id)
		}
		return nil, apperrors.NewDatabaseQueryFailedError("get product", err)
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, p models.Product) (_ *models.Product, err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Create")
	defer func() { endSpan(span, err) }()

	if report := mortgage.ValidateProduct(p); report != nil {
		return nil, report
	}
	p.ID = 0
	p.Lender = strings.TrimSpace(p.Lender)
	p.InterestTerm = strings.TrimSpace(p.InterestTerm)

	if err := s.store.Create(ctx, &p); err != nil {
		return nil, apperrors.NewDatabaseInsertFailedError(err)
	}
	s.logger.Info("product created", map[string]interface{}{"productId": p.ID, "lender": p.Lender})
	return &p, nil
}

func (s *ProductService) Replace(ctx context.Context, id int64, p models.Product) (err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Replace", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer func() { endSpan(span, err) }()

	if p.ID != id {
		return apperrors.NewIDMismatchError(id, p.ID)
	}
	if report := mortgage.ValidateProduct(p); report != nil {
		return report
	}
	p.Lender = strings.TrimSpace(p.Lender)
	p.InterestTerm = strings.TrimSpace(p.InterestTerm)

	err = s.store.Update(ctx, &p)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrConflict) {
		return apperrors.NewDatabaseQueryFailedError("update product", err)
	}

	ok, existsErr := s.store.Exists(ctx, id)
	if existsErr != nil {
		return apperrors.NewDatabaseQueryFailedError("product exists", existsErr)
	}
	if !ok {
		return apperrors.NewProductNotFoundError(id)
	}
	return apperrors.NewStorageConflictError("product update affected no rows")
}

func (s *ProductService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Delete", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer func() { endSpan(span, err) }()

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NewProductNotFoundError(id)
		}
		return apperrors.NewDatabaseQueryFailedError("delete product", err)
	}
	s.logger.Info("product deleted", map[string]interface{}{"productId": id})
	return nil
}
