package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mavdeev/shop-backend/internal/product"
)

var (
	ErrNotFound        = errors.New("cart not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotInCart   = errors.New("product not found in cart")
)

// Catalog is the slice of the product service the cart needs: resolving
// item references into product details.
type Catalog interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*product.Product, error)
}

type Service interface {
	GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*View, error)
	AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*View, error)
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

type service struct {
	repo    Repository
	catalog Catalog
}

func NewService(repo Repository, catalog Catalog) Service {
	return &service{repo: repo, catalog: catalog}
}

func (s *service) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*View, error) {
	c, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.resolve(ctx, c)
}

func (s *service) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.catalog.GetByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, product.ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to resolve product for cart add")
		return nil, fmt.Errorf("service: failed to resolve product: %w", err)
	}

	c, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// One entry per product: an add for a product already in the cart
	// bumps its quantity instead of appending a duplicate.
	merged := false
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, Item{ProductID: productID, Quantity: quantity})
	}

	if err := s.repo.ReplaceItems(ctx, c.ID, c.Items); err != nil {
		log.Error().Err(err).Stringer("cart_id", c.ID).Msg("service: failed to save cart after add")
		return nil, fmt.Errorf("service: failed to save cart: %w", err)
	}

	return s.resolve(ctx, c)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*View, error) {
	c, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch cart for remove")
		return nil, fmt.Errorf("service: failed to fetch cart: %w", err)
	}

	items := make([]Item, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}

	// Removing a product that is not in the cart is an error, not a no-op,
	// so caller mistakes surface instead of passing silently.
	if len(items) == len(c.Items) {
		return nil, ErrItemNotInCart
	}

	c.Items = items
	if err := s.repo.ReplaceItems(ctx, c.ID, c.Items); err != nil {
		log.Error().Err(err).Stringer("cart_id", c.ID).Msg("service: failed to save cart after remove")
		return nil, fmt.Errorf("service: failed to save cart: %w", err)
	}

	return s.resolve(ctx, c)
}

func (s *service) Clear(ctx context.Context, userID primitive.ObjectID) error {
	c, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch cart for clear")
		return fmt.Errorf("service: failed to fetch cart: %w", err)
	}

	if err := s.repo.ReplaceItems(ctx, c.ID, nil); err != nil {
		log.Error().Err(err).Stringer("cart_id", c.ID).Msg("service: failed to clear cart")
		return fmt.Errorf("service: failed to clear cart: %w", err)
	}

	log.Info().Stringer("cart_id", c.ID).Msg("service: cart cleared")
	return nil
}

func (s *service) getOrCreate(ctx context.Context, userID primitive.ObjectID) (*Cart, error) {
	c, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch cart")
		return nil, fmt.Errorf("service: failed to fetch cart: %w", err)
	}

	c = &Cart{UserID: userID, Items: []Item{}}

	id, err := s.repo.Create(ctx, c)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to create cart")
		return nil, fmt.Errorf("service: failed to create cart: %w", err)
	}

	c.ID = id
	return c, nil
}

// resolve denormalizes the cart's product references into full product
// details for display.
func (s *service) resolve(ctx context.Context, c *Cart) (*View, error) {
	view := &View{
		ID:        c.ID,
		UserID:    c.UserID,
		Items:     make([]ViewItem, 0, len(c.Items)),
		UpdatedAt: c.UpdatedAt,
	}

	for _, item := range c.Items {
		p, err := s.catalog.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				// The product was deleted after it was added to the cart.
				// Skip the stale reference rather than failing the read.
				log.Warn().Stringer("product_id", item.ProductID).Msg("service: cart references missing product")
				continue
			}
			return nil, fmt.Errorf("service: failed to resolve cart item: %w", err)
		}
		view.Items = append(view.Items, ViewItem{Product: *p, Quantity: item.Quantity})
	}

	return view, nil
}
