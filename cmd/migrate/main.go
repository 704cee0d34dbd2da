package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/leaseledger/leaseledger/internal/config"
	"github.com/leaseledger/leaseledger/internal/document"
	"github.com/leaseledger/leaseledger/internal/logger"
)

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "Migration timeout")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	db, err := document.NewDB(cfg)
	if err != nil {
		lg.Fatalf("Failed to connect to document store: %v", err)
	}
	defer db.Close()

	client := document.NewClient(db, lg)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	lg.Infow("Migrating document store", "host", cfg.Document.Host, "dbname", cfg.Document.DBName)
	if err := client.Migrate(ctx); err != nil {
		lg.Fatalf("Migration failed: %v", err)
	}

	fmt.Println("Migration complete:", len(document.Collections), "collections")
}
