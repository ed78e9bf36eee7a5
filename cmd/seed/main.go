package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/rakapratama/go-admin-backend/config"
	"github.com/rakapratama/go-admin-backend/pkg/helpers"
)

// Seeds a local database with an admin account, the shared manager
// account and the base roles.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	seedRole(db, "admin", "Administrator")
	seedRole(db, cfg.ManagerDefaultRole, "Manager")

	seedUser(db, "admin@example.com", "Demo Admin", "password123", "admin")
	seedUser(db, cfg.ManagerEmail, "Shared Manager", "password123", cfg.ManagerDefaultRole)

	printServiceToken(cfg)
}

// printServiceToken mints a token the external manager tool can use
// against the sync API during local testing.
func printServiceToken(cfg *config.Config) {
	if cfg.ServiceTokenSecret == "" {
		return
	}
	jwtm := helpers.NewJWTManager(cfg.ServiceTokenSecret, cfg.ServiceTokenTTL)
	token, exp, err := jwtm.GenerateServiceToken("manager")
	if err != nil {
		log.Fatalf("failed to generate service token: %v", err)
	}
	fmt.Printf("service token (expires %s): %s\n", exp.Format(time.RFC3339), token)
}

func seedRole(db *sql.DB, slug, title string) {
	var id string
	err := db.QueryRow(`
		INSERT INTO roles (id, slug, title)
		VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET title = EXCLUDED.title, updated_at = now()
		RETURNING id
	`, uuid.NewString(), slug, title).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed role %s: %v", slug, err)
	}
	fmt.Printf("role ensured: %s (%s)\n", slug, id)
}

func seedUser(db *sql.DB, email, name, password, role string) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	token, err := helpers.RandomToken(32)
	if err != nil {
		log.Fatalf("failed to generate remember token: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (id, email, name, password_hash, remember_token, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
		RETURNING id
	`, uuid.NewString(), email, name, hash, token, role).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user %s: %v", email, err)
	}
	fmt.Printf("user seeded: id=%s email=%s password=%s\n", id, email, password)
}
