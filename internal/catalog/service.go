// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/promptforge/storefront/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(
	ctx context.Context,
	req CreateProductRequest,
) (*Product, error) {
	if req.Price <= 0 {
		return nil, fmt.Errorf(
			"create product: price must be positive: %w",
			core.ErrInvalidInput,
		)
	}

	product := &Product{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		// Strip any path component; files are addressed by bare name.
		File:         filepath.Base(req.File),
		PreviewImage: req.PreviewImage,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateProductRequest,
) (*Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		product.Title = *req.Title
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, fmt.Errorf(
				"update product: price must be positive: %w",
				core.ErrInvalidInput,
			)
		}
		product.Price = *req.Price
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
