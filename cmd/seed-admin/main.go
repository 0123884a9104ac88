// Command seed-admin creates the initial ADMIN account. Registration
// always produces ordinary users, so the first admin has to be seeded
// out of band.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/mavdeev/shop-backend/internal/config"
	"github.com/mavdeev/shop-backend/internal/db"
	"github.com/mavdeev/shop-backend/internal/user"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	username := os.Getenv("ADMIN_USERNAME")
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || email == "" || password == "" {
		log.Fatal().Msg("ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongo, err := db.New(ctx, *cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer mongo.Close(ctx)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash admin password")
	}

	repo := user.NewMongoRepository(mongo.DB)

	id, err := repo.Create(ctx, &user.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         user.RoleAdmin,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin user")
	}

	log.Info().Stringer("user_id", id).Str("email", email).Msg("Admin user created")
}
