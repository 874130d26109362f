package main

import (
	"context"
	"fmt"
	"os"

	"storefront/internal/config"

	env "github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5"
)

// Connects with the DB_* environment and reports the schema state.
func main() {
	var cfg config.DatabaseConfig
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid database environment: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	var dbName string
	if err := conn.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	for _, table := range []string{"users", "products", "list_order", "order_items", "outbox_events"} {
		var count int64
		if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			fmt.Printf("  %-14s missing (%v)\n", table, err)
			continue
		}
		fmt.Printf("  %-14s %d rows\n", table, count)
	}
}
