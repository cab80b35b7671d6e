// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"shopfront-backend/internal/company/domain"
	companyrepo "shopfront-backend/internal/company/repository"
	"shopfront-backend/internal/config"
	"shopfront-backend/internal/db"
	productdomain "shopfront-backend/internal/product/domain"
	productrepo "shopfront-backend/internal/product/repository"
	"shopfront-backend/internal/security"
	userdomain "shopfront-backend/internal/user/domain"
	userrepo "shopfront-backend/internal/user/repository"
)

const (
	devUserEmail = "dev@example.com"
	devPassword  = "password123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)
	companies := companyrepo.NewPostgresRepository(conn)
	products := productrepo.NewPostgresRepository(conn)

	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (dev@example.com exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	companyID := uuid.New().String()

	if err := users.Create(ctx, &userdomain.User{
		ID:           uuid.New().String(),
		Email:        devUserEmail,
		Username:     "dev",
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		log.Fatalf("create dev user: %v", err)
	}

	if err := companies.Create(ctx, &domain.Company{
		ID:        companyID,
		Name:      "Acme Dev Goods",
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		log.Fatalf("create company: %v", err)
	}

	if err := products.Create(ctx, &productdomain.Product{
		ID:                 uuid.New().String(),
		CompanyID:          companyID,
		Name:               "Canvas Tote",
		MarketingStatement: "Carries everything, complains about nothing.",
		ProductPrice:       24.00,
		ProductDiscount:    0,
		CreatedAt:          now,
		UpdatedAt:          now,
	}); err != nil {
		log.Fatalf("create product: %v", err)
	}

	if err := products.Create(ctx, &productdomain.Product{
		ID:                 uuid.New().String(),
		CompanyID:          companyID,
		Name:               "Enamel Mug",
		MarketingStatement: "Camp-grade. Desk-approved.",
		ProductPrice:       14.50,
		ProductDiscount:    2.50,
		CreatedAt:          now,
		UpdatedAt:          now,
	}); err != nil {
		log.Fatalf("create second product: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Dev login: %s / %s\n", devUserEmail, devPassword)
}
