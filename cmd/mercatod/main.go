package main

import (
	"log"

	"mercato/internal/config"
	"mercato/internal/infra/db"
	httpinfra "mercato/internal/infra/http"
)

func main() {
	cfg := config.FromEnv()

	store, err := db.NewStore(cfg)
	if err != nil {
		log.Fatalf("failed to init store: %v", err)
	}
	if cfg.AutoMigrate {
		if err := store.AutoMigrate(); err != nil {
			log.Fatalf("auto-migrate failed: %v", err)
		}
	}

	srv := httpinfra.NewServer(cfg, store)
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
