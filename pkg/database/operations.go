package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"atelier/pkg/utils"
)

// ErrNotFound is returned when a key has no value
var ErrNotFound = errors.New("key not found")

// KV is the console's local storage: string values under string keys
type KV struct {
	db *sql.DB
}

func NewKV(db *sql.DB) *KV {
	return &KV{db: db}
}

// Close releases the underlying connection
func (s *KV) Close() error {
	return s.db.Close()
}

// Get retrieves the value stored under key
func (s *KV) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return value, nil
}

// Set inserts or replaces the value under key
func (s *KV) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO storage (key, value, updated) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	utils.Log("Stored key: %s", key)
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (s *KV) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM storage WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Keys lists keys starting with prefix, sorted
func (s *KV) Keys(prefix string) ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM storage WHERE key LIKE ? ESCAPE '\\' ORDER BY key", likePrefix(prefix))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Purge removes every key starting with prefix and returns how many went
func (s *KV) Purge(prefix string) (int64, error) {
	result, err := s.db.Exec("DELETE FROM storage WHERE key LIKE ? ESCAPE '\\'", likePrefix(prefix))
	if err != nil {
		return 0, fmt.Errorf("purging %q: %w", prefix, err)
	}
	return result.RowsAffected()
}

// GetJSON decodes the value under key into v
func (s *KV) GetJSON(key string, v any) error {
	raw, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key
func (s *KV) SetJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(key, string(raw))
}

func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
