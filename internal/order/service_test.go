package order_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mavdeev/shop-backend/internal/cart"
	"github.com/mavdeev/shop-backend/internal/order"
	"github.com/mavdeev/shop-backend/internal/product"
	"github.com/mavdeev/shop-backend/internal/user"
)

type mockOrderRepository struct {
	createFunc       func(ctx context.Context, o *order.Order) (primitive.ObjectID, error)
	getByIDFunc      func(ctx context.Context, id primitive.ObjectID) (*order.Order, error)
	listByUserIDFunc func(ctx context.Context, userID primitive.ObjectID) ([]order.Order, error)
	listAllFunc      func(ctx context.Context) ([]order.Order, error)
	updateFunc       func(ctx context.Context, id primitive.ObjectID, upd order.Update) (*order.Order, error)
}

func (m *mockOrderRepository) Create(ctx context.Context, o *order.Order) (primitive.ObjectID, error) {
	return m.createFunc(ctx, o)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*order.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockOrderRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]order.Order, error) {
	return m.listByUserIDFunc(ctx, userID)
}

func (m *mockOrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	return m.listAllFunc(ctx)
}

func (m *mockOrderRepository) Update(ctx context.Context, id primitive.ObjectID, upd order.Update) (*order.Order, error) {
	return m.updateFunc(ctx, id, upd)
}

type mockCarts struct {
	view    *cart.View
	cleared bool
}

func (m *mockCarts) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*cart.View, error) {
	return m.view, nil
}

func (m *mockCarts) Clear(ctx context.Context, userID primitive.ObjectID) error {
	m.cleared = true
	m.view.Items = nil
	return nil
}

type mockUsers struct {
	users map[primitive.ObjectID]*user.User
}

func (m *mockUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

var testAddress = order.ShippingAddress{
	Street:  "12 Main St",
	City:    "Springfield",
	Zipcode: "12345",
	Country: "US",
}

func TestService_Create(t *testing.T) {
	userID := primitive.NewObjectID()

	t.Run("computes_total_and_clears_cart", func(t *testing.T) {
		p1 := product.Product{ID: primitive.NewObjectID(), Name: "A", Price: 10}
		p2 := product.Product{ID: primitive.NewObjectID(), Name: "B", Price: 5}

		carts := &mockCarts{view: &cart.View{
			UserID: userID,
			Items: []cart.ViewItem{
				{Product: p1, Quantity: 2},
				{Product: p2, Quantity: 1},
			},
		}}

		var persisted *order.Order
		repo := &mockOrderRepository{
			createFunc: func(ctx context.Context, o *order.Order) (primitive.ObjectID, error) {
				persisted = o
				return primitive.NewObjectID(), nil
			},
		}

		svc := order.NewService(repo, carts, &mockUsers{})

		o, err := svc.Create(context.Background(), userID, testAddress, order.MethodCash)
		require.NoError(t, err)

		assert.Equal(t, 25.0, o.Total)
		assert.Equal(t, order.StatusPending, o.Status)
		assert.Equal(t, order.PaymentPending, o.PaymentStatus)
		require.Len(t, persisted.Items, 2)
		assert.Equal(t, p1.ID, persisted.Items[0].ProductID)
		assert.Equal(t, "A", persisted.Items[0].Name)
		assert.True(t, carts.cleared)
	})

	t.Run("snapshot_survives_later_price_change", func(t *testing.T) {
		p := product.Product{ID: primitive.NewObjectID(), Name: "Headphones", Price: 19.99}

		carts := &mockCarts{view: &cart.View{
			UserID: userID,
			Items:  []cart.ViewItem{{Product: p, Quantity: 2}},
		}}

		repo := &mockOrderRepository{
			createFunc: func(ctx context.Context, o *order.Order) (primitive.ObjectID, error) {
				return primitive.NewObjectID(), nil
			},
		}

		svc := order.NewService(repo, carts, &mockUsers{})

		o, err := svc.Create(context.Background(), userID, testAddress, order.MethodCard)
		require.NoError(t, err)

		// 19.99 x 2 accumulated as decimals, not binary floats.
		assert.Equal(t, 39.98, o.Total)
		assert.Equal(t, 19.99, o.Items[0].Price)

		// A later catalog edit must not reach the placed order.
		p.Price = 29.99
		assert.Equal(t, 19.99, o.Items[0].Price)
	})

	t.Run("empty_cart", func(t *testing.T) {
		carts := &mockCarts{view: &cart.View{UserID: userID}}

		repo := &mockOrderRepository{
			createFunc: func(ctx context.Context, o *order.Order) (primitive.ObjectID, error) {
				t.Fatal("no order must be persisted for an empty cart")
				return primitive.NilObjectID, nil
			},
		}

		svc := order.NewService(repo, carts, &mockUsers{})

		_, err := svc.Create(context.Background(), userID, testAddress, order.MethodCash)
		assert.ErrorIs(t, err, order.ErrEmptyCart)
		assert.False(t, carts.cleared)
	})

	t.Run("missing_address_or_method", func(t *testing.T) {
		svc := order.NewService(&mockOrderRepository{}, &mockCarts{}, &mockUsers{})

		_, err := svc.Create(context.Background(), userID, order.ShippingAddress{}, order.MethodCash)
		assert.ErrorIs(t, err, order.ErrInvalidInput)

		_, err = svc.Create(context.Background(), userID, testAddress, "")
		assert.ErrorIs(t, err, order.ErrInvalidInput)
	})

	t.Run("unknown_payment_method", func(t *testing.T) {
		svc := order.NewService(&mockOrderRepository{}, &mockCarts{}, &mockUsers{})

		_, err := svc.Create(context.Background(), userID, testAddress, "BARTER")
		assert.ErrorIs(t, err, order.ErrInvalidPayment)
	})
}

func TestService_Get(t *testing.T) {
	ownerID := primitive.NewObjectID()
	strangerID := primitive.NewObjectID()
	adminID := primitive.NewObjectID()
	orderID := primitive.NewObjectID()

	stored := &order.Order{ID: orderID, UserID: ownerID, Total: 42}

	repo := &mockOrderRepository{
		getByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*order.Order, error) {
			if id != orderID {
				return nil, order.ErrNotFound
			}
			cp := *stored
			return &cp, nil
		},
	}

	users := &mockUsers{users: map[primitive.ObjectID]*user.User{
		ownerID: {ID: ownerID, Username: "owner", Email: "owner@example.com"},
	}}

	svc := order.NewService(repo, &mockCarts{}, users)

	t.Run("owner_can_read", func(t *testing.T) {
		detail, err := svc.Get(context.Background(), ownerID, user.RoleUser, orderID)
		require.NoError(t, err)
		assert.Equal(t, "owner", detail.Owner.Username)
		assert.Equal(t, "owner@example.com", detail.Owner.Email)
	})

	t.Run("admin_can_read", func(t *testing.T) {
		_, err := svc.Get(context.Background(), adminID, user.RoleAdmin, orderID)
		assert.NoError(t, err)
	})

	t.Run("stranger_is_denied", func(t *testing.T) {
		_, err := svc.Get(context.Background(), strangerID, user.RoleUser, orderID)
		assert.ErrorIs(t, err, order.ErrAccessDenied)
	})

	t.Run("missing_order", func(t *testing.T) {
		_, err := svc.Get(context.Background(), ownerID, user.RoleUser, primitive.NewObjectID())
		assert.ErrorIs(t, err, order.ErrNotFound)
	})
}

func TestService_Update(t *testing.T) {
	orderID := primitive.NewObjectID()

	t.Run("partial_update_passes_only_supplied_fields", func(t *testing.T) {
		var got order.Update

		repo := &mockOrderRepository{
			updateFunc: func(ctx context.Context, id primitive.ObjectID, upd order.Update) (*order.Order, error) {
				got = upd
				return &order.Order{ID: id, Status: order.StatusPending, PaymentStatus: order.PaymentPaid}, nil
			},
		}

		svc := order.NewService(repo, &mockCarts{}, &mockUsers{})

		ps := order.PaymentPaid
		_, err := svc.Update(context.Background(), orderID, order.Update{PaymentStatus: &ps})
		require.NoError(t, err)

		assert.Nil(t, got.Status)
		require.NotNil(t, got.PaymentStatus)
		assert.Equal(t, order.PaymentPaid, *got.PaymentStatus)
	})

	t.Run("invalid_status_value", func(t *testing.T) {
		svc := order.NewService(&mockOrderRepository{}, &mockCarts{}, &mockUsers{})

		bad := order.Status("TELEPORTED")
		_, err := svc.Update(context.Background(), orderID, order.Update{Status: &bad})
		assert.ErrorIs(t, err, order.ErrInvalidStatus)
	})

	t.Run("missing_order", func(t *testing.T) {
		repo := &mockOrderRepository{
			updateFunc: func(ctx context.Context, id primitive.ObjectID, upd order.Update) (*order.Order, error) {
				return nil, order.ErrNotFound
			},
		}

		svc := order.NewService(repo, &mockCarts{}, &mockUsers{})

		st := order.StatusShipped
		_, err := svc.Update(context.Background(), orderID, order.Update{Status: &st})
		assert.ErrorIs(t, err, order.ErrNotFound)
	})
}

func TestService_ListAll_DenormalizesOwners(t *testing.T) {
	ownerID := primitive.NewObjectID()

	repo := &mockOrderRepository{
		listAllFunc: func(ctx context.Context) ([]order.Order, error) {
			return []order.Order{
				{ID: primitive.NewObjectID(), UserID: ownerID},
				{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID()},
			}, nil
		},
	}

	users := &mockUsers{users: map[primitive.ObjectID]*user.User{
		ownerID: {ID: ownerID, Username: "owner", Email: "owner@example.com"},
	}}

	svc := order.NewService(repo, &mockCarts{}, users)

	details, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, details, 2)

	assert.Equal(t, "owner", details[0].Owner.Username)
	// Orders whose owner account is gone stay readable with the bare id.
	assert.Empty(t, details[1].Owner.Username)
	assert.Equal(t, details[1].UserID, details[1].Owner.ID)
}
