package database

import (
	"fmt"
	"log"

	"rental-service/config"

	"github.com/cenkalti/backoff/v3"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// GetConnection opens the Postgres pool, retrying transient connection
// failures with exponential backoff before giving up.
func GetConnection(cfg *config.DatabaseConfig) *sqlx.DB {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	var db *sqlx.DB
	operation := func() error {
		conn, err := sqlx.Connect("postgres", dsn)
		if err != nil {
			return err
		}
		db = conn
		return nil
	}

	err := backoff.Retry(operation, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5))
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	db.SetMaxOpenConns(cfg.MaxConn)
	return db
}
