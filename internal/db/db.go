// Package db opens the postgres pool the repositories share.
package db

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"dokan-be/internal/config"

	_ "github.com/lib/pq"
)

// InitDB connects to postgres and verifies the connection. Orders and
// stock live here; the process is useless without it, so failure is fatal.
func InitDB(cfg *config.Config) *sql.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	// The saga holds at most a handful of statements per order; a small
	// pool keeps checkout latency steady under burst.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	log.Println("Database connection established")
	return db
}
