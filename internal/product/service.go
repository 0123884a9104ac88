package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrNegativePrice   = errors.New("price must be non-negative")
	ErrInvalidCategory = errors.New("unknown product category")
)

type Service interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error)
	Create(ctx context.Context, p *Product) (*Product, error)
	Update(ctx context.Context, id primitive.ObjectID, upd Update) (*Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}

	return products, nil
}

func (s *service) GetByID(ctx context.Context, id primitive.ObjectID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to fetch product")
		return nil, fmt.Errorf("service: failed to fetch product: %w", err)
	}

	return p, nil
}

func (s *service) Create(ctx context.Context, p *Product) (*Product, error) {
	if p.Price < 0 {
		return nil, ErrNegativePrice
	}

	if p.Category == "" {
		p.Category = CategoryOther
	}
	if !p.Category.Valid() {
		return nil, ErrInvalidCategory
	}

	id, err := s.repo.Create(ctx, p)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	p.ID = id
	log.Info().Stringer("product_id", id).Str("name", p.Name).Msg("service: product created")

	return p, nil
}

func (s *service) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*Product, error) {
	if upd.Price != nil && *upd.Price < 0 {
		return nil, ErrNegativePrice
	}
	if upd.Category != nil && !upd.Category.Valid() {
		return nil, ErrInvalidCategory
	}

	p, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to update product")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}

	return p, nil
}

func (s *service) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}

	log.Info().Stringer("product_id", id).Msg("service: product deleted")
	return nil
}
