package main

import (
	"flag"
	"log"

	"shopfront-backend/internal/config"
	"shopfront-backend/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		log.Fatalf("migrate %s: %v", *direction, err)
	}
	log.Printf("migrations %s complete", *direction)
}
