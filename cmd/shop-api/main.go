package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mavdeev/shop-backend/internal/auth"
	"github.com/mavdeev/shop-backend/internal/cart"
	"github.com/mavdeev/shop-backend/internal/config"
	"github.com/mavdeev/shop-backend/internal/db"
	shopHttp "github.com/mavdeev/shop-backend/internal/handler/http"
	"github.com/mavdeev/shop-backend/internal/order"
	"github.com/mavdeev/shop-backend/internal/product"
	"github.com/mavdeev/shop-backend/internal/upload"
	"github.com/mavdeev/shop-backend/internal/user"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().Msg("Starting shop-api...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	mongo, err := db.New(context.Background(), *cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	uploads, err := upload.NewStore(cfg.App.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare upload store")
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	userSvc := user.NewService(user.NewMongoRepository(mongo.DB))
	productSvc := product.NewService(product.NewMongoRepository(mongo.DB))
	cartSvc := cart.NewService(cart.NewMongoRepository(mongo.DB), productSvc)
	orderSvc := order.NewService(order.NewMongoRepository(mongo.DB), cartSvc, userSvc)

	router := shopHttp.NewRouter(shopHttp.RouterConfig{
		Users:    userSvc,
		Products: productSvc,
		Carts:    cartSvc,
		Orders:   orderSvc,
		Tokens:   tokens,
		Uploads:  uploads,
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	mongo.Close(shutdownCtx)

	log.Info().Msg("shop-api stopped gracefully")
}
