package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	config.MaxConns = 20
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	// Postgres may still be starting when we come up in Docker; retry with
	// a growing delay instead of failing the boot.
	var pool *pgxpool.Pool
	delay := time.Second
	for attempt := 1; attempt <= 8; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			pingErr := pool.Ping(ctx)
			if pingErr == nil {
				log.Printf("Database connected (attempt %d)", attempt)
				return pool, nil
			}
			pool.Close()
			err = pingErr
		}
		log.Printf("DB connect attempt %d/8 failed: %v", attempt, err)
		time.Sleep(delay)
		if delay < 8*time.Second {
			delay *= 2
		}
	}

	return nil, fmt.Errorf("failed to connect after 8 attempts: %w", err)
}
