package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mavdeev/shop-backend/internal/auth"
	"github.com/mavdeev/shop-backend/internal/cart"
	"github.com/mavdeev/shop-backend/internal/order"
	"github.com/mavdeev/shop-backend/internal/product"
	"github.com/mavdeev/shop-backend/internal/upload"
	"github.com/mavdeev/shop-backend/internal/user"
)

type RouterConfig struct {
	Users    user.Service
	Products product.Service
	Carts    cart.Service
	Orders   order.Service
	Tokens   *auth.TokenManager
	Uploads  *upload.Store
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := NewAuthHandler(cfg.Users, cfg.Tokens)
	productHandler := NewProductHandler(cfg.Products, cfg.Uploads)
	cartHandler := NewCartHandler(cfg.Carts)
	orderHandler := NewOrderHandler(cfg.Orders)
	authMW := NewAuthMiddleware(cfg.Tokens, cfg.Users)

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	// Uploaded product images are public static assets.
	fileServer := http.StripPrefix("/uploads/products/", http.FileServer(http.Dir(cfg.Uploads.Dir())))
	r.Get("/uploads/products/*", fileServer.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(authMW.Authenticate)

		r.Get("/auth/profile", authHandler.Profile)

		r.Get("/products", productHandler.List)
		r.Get("/products/{id}", productHandler.Get)

		r.Get("/cart", cartHandler.GetCart)
		r.Post("/cart/add", cartHandler.AddItem)
		r.Delete("/cart/{productID}", cartHandler.RemoveItem)

		r.Post("/orders", orderHandler.Create)
		r.Get("/orders/my-orders", orderHandler.ListMine)
		r.Get("/orders/{id}", orderHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)

			r.Post("/products", productHandler.Create)
			r.Put("/products/{id}", productHandler.Update)
			r.Delete("/products/{id}", productHandler.Delete)

			r.Get("/orders", orderHandler.ListAll)
			r.Put("/orders/{id}", orderHandler.Update)
		})
	})

	return r
}
