// Package credstore persists generated broker credentials keyed by the
// derived internal user id. It is the source of truth that lets a second
// registration of the same identity reuse the original secret instead of
// regenerating it.
package credstore

import (
	"database/sql"
	"fmt"
	"log"
)

// The username column is the primary key, so a duplicate insert surfaces as
// a store error rather than silently forking credentials.
const (
	insertUserQuery = `INSERT INTO databroker.users (username, password) VALUES ($1, $2)`
	selectUserQuery = `SELECT password FROM databroker.users WHERE username = $1`
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Lookup returns the stored secret for userID. The second return value
// reports whether a row exists; a missing row is not an error.
func (s *Store) Lookup(userID string) (string, bool, error) {
	var secret string
	err := s.db.QueryRow(selectUserQuery, userID).Scan(&secret)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("credential lookup for %s failed: %w", userID, err)
	}
	return secret, true, nil
}

// Insert stores a freshly generated secret for userID.
func (s *Store) Insert(userID, secret string) error {
	if _, err := s.db.Exec(insertUserQuery, userID, secret); err != nil {
		return fmt.Errorf("credential insert for %s failed: %w", userID, err)
	}
	log.Printf("[credstore] stored credentials for %s", userID)
	return nil
}
