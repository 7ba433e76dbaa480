package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Database struct {
	DB *sql.DB
}

// Connect opens a pooled Postgres connection and verifies it with a ping.
// The pool is shared process-wide across concurrent provisioning workflows.
func Connect(uri string) (*Database, error) {
	if uri == "" {
		return nil, errors.New("POSTGRES_URI is required to connect to database")
	}
	db, err := sql.Open("pgx", uri)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	return d.DB.Close()
}
