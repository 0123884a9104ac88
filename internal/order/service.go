package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mavdeev/shop-backend/internal/cart"
	"github.com/mavdeev/shop-backend/internal/user"
)

var (
	ErrNotFound       = errors.New("order not found")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidInput   = errors.New("shipping address and payment method are required")
	ErrAccessDenied   = errors.New("access denied")
	ErrInvalidStatus  = errors.New("unknown order status")
	ErrInvalidPayment = errors.New("unknown payment status or method")
)

// Carts is the slice of the cart service the checkout flow needs.
type Carts interface {
	GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*cart.View, error)
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

// Users resolves order owners for the denormalized read views.
type Users interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*user.User, error)
}

type Service interface {
	Create(ctx context.Context, userID primitive.ObjectID, addr ShippingAddress, method PaymentMethod) (*Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]Order, error)
	Get(ctx context.Context, requesterID primitive.ObjectID, requesterRole user.Role, orderID primitive.ObjectID) (*Detail, error)
	ListAll(ctx context.Context) ([]Detail, error)
	Update(ctx context.Context, orderID primitive.ObjectID, upd Update) (*Order, error)
}

type service struct {
	repo  Repository
	carts Carts
	users Users
}

func NewService(repo Repository, carts Carts, users Users) Service {
	return &service{repo: repo, carts: carts, users: users}
}

// Create turns the caller's cart into an immutable order: it snapshots
// name, price and quantity per line, sums the total, persists the order
// and then empties the cart. The two writes are separate documents and
// are not wrapped in a transaction; a clear failure after a successful
// insert leaves the order in place and surfaces the error.
func (s *service) Create(ctx context.Context, userID primitive.ObjectID, addr ShippingAddress, method PaymentMethod) (*Order, error) {
	if addr == (ShippingAddress{}) || method == "" {
		return nil, ErrInvalidInput
	}
	if !method.Valid() {
		return nil, ErrInvalidPayment
	}

	view, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to load cart for checkout")
		return nil, fmt.Errorf("service: failed to load cart: %w", err)
	}
	if len(view.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]Item, 0, len(view.Items))
	total := decimal.Zero
	for _, vi := range view.Items {
		items = append(items, Item{
			ProductID: vi.Product.ID,
			Name:      vi.Product.Name,
			Price:     vi.Product.Price,
			Quantity:  vi.Quantity,
		})
		line := decimal.NewFromFloat(vi.Product.Price).Mul(decimal.NewFromInt(int64(vi.Quantity)))
		total = total.Add(line)
	}

	o := &Order{
		UserID:          userID,
		Items:           items,
		Total:           total.InexactFloat64(),
		Status:          StatusPending,
		ShippingAddress: addr,
		PaymentMethod:   method,
		PaymentStatus:   PaymentPending,
	}

	id, err := s.repo.Create(ctx, o)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to persist order")
		return nil, fmt.Errorf("service: failed to persist order: %w", err)
	}
	o.ID = id

	if err := s.carts.Clear(ctx, userID); err != nil {
		log.Error().Err(err).Stringer("order_id", id).Msg("service: order created but cart not cleared")
		return nil, fmt.Errorf("service: order %s created but cart not cleared: %w", id.Hex(), err)
	}

	log.Info().Stringer("order_id", id).Stringer("user_id", userID).Float64("total", o.Total).Msg("service: order created")

	return o, nil
}

func (s *service) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]Order, error) {
	orders, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to list user orders")
		return nil, fmt.Errorf("service: failed to list user orders: %w", err)
	}

	return orders, nil
}

func (s *service) Get(ctx context.Context, requesterID primitive.ObjectID, requesterRole user.Role, orderID primitive.ObjectID) (*Detail, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch order")
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}

	if requesterRole != user.RoleAdmin && o.UserID != requesterID {
		return nil, ErrAccessDenied
	}

	return s.withOwner(ctx, o)
}

func (s *service) ListAll(ctx context.Context) ([]Detail, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}

	details := make([]Detail, 0, len(orders))
	for i := range orders {
		d, err := s.withOwner(ctx, &orders[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}

	return details, nil
}

func (s *service) Update(ctx context.Context, orderID primitive.ObjectID, upd Update) (*Order, error) {
	// Any enumerated value may follow any other; there is no transition
	// guard on status, only membership checks.
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if upd.PaymentStatus != nil && !upd.PaymentStatus.Valid() {
		return nil, ErrInvalidPayment
	}

	o, err := s.repo.Update(ctx, orderID, upd)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to update order")
		return nil, fmt.Errorf("service: failed to update order: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Msg("service: order updated")
	return o, nil
}

func (s *service) withOwner(ctx context.Context, o *Order) (*Detail, error) {
	d := &Detail{Order: *o}

	owner, err := s.users.GetByID(ctx, o.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// The owner account is gone; keep the order readable with the
			// bare user id.
			d.Owner = Owner{ID: o.UserID}
			return d, nil
		}
		log.Error().Err(err).Stringer("order_id", o.ID).Msg("service: failed to resolve order owner")
		return nil, fmt.Errorf("service: failed to resolve order owner: %w", err)
	}

	d.Owner = Owner{ID: owner.ID, Username: owner.Username, Email: owner.Email}
	return d, nil
}
