package auth

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// TokenStore persists refresh tokens in a local sqlite file so a gateway
// restart can resume the authorization-code flow without user interaction.
// Only the refresh token is stored; access tokens are never written to disk.
type TokenStore struct {
	db *sql.DB
}

func OpenTokenStore(path string) (*TokenStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening token store: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS refresh_tokens (
		authority TEXT NOT NULL,
		client_id TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (authority, client_id)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing token store schema: %w", err)
	}

	return &TokenStore{db: db}, nil
}

// Load returns the stored refresh token for a registration, or "" when none
// is held.
func (s *TokenStore) Load(authority, clientID string) (string, error) {
	var refreshToken string
	err := s.db.QueryRow(`
		SELECT refresh_token FROM refresh_tokens
		WHERE authority = ? AND client_id = ?
	`, authority, clientID).Scan(&refreshToken)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading refresh token: %w", err)
	}
	return refreshToken, nil
}

// Save upserts the refresh token for a registration.
func (s *TokenStore) Save(authority, clientID, refreshToken string) error {
	_, err := s.db.Exec(`
		INSERT INTO refresh_tokens (authority, client_id, refresh_token, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (authority, client_id)
		DO UPDATE SET refresh_token = excluded.refresh_token, updated_at = CURRENT_TIMESTAMP
	`, authority, clientID, refreshToken)
	if err != nil {
		return fmt.Errorf("saving refresh token: %w", err)
	}
	return nil
}

// Delete removes a stored refresh token, e.g. after the server rejects it.
func (s *TokenStore) Delete(authority, clientID string) error {
	_, err := s.db.Exec(`
		DELETE FROM refresh_tokens WHERE authority = ? AND client_id = ?
	`, authority, clientID)
	if err != nil {
		return fmt.Errorf("deleting refresh token: %w", err)
	}
	return nil
}

func (s *TokenStore) Close() error {
	return s.db.Close()
}
