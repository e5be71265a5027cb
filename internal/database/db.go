// internal/database/db.go
package database

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the shared connection pool, used only by the historian; the game
// server itself keeps everything in memory.
var DB *pgxpool.Pool

// ConnectDB opens the pool for the given connection string and verifies
// connectivity. The string comes from config.Load, which assembles it from
// the environment.
func ConnectDB(connStr string) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		log.Fatalf("unable to parse pgx config: %v", err)
	}

	DB, err = pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalf("unable to create pgx pool: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := DB.Ping(ctx); err != nil {
		log.Fatalf("db ping error: %v", err)
	}

	log.Printf("Connected to results database")
}
