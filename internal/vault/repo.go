package vault

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/formvault/formvault/internal/apperr"
	"github.com/formvault/formvault/internal/models"
)

// Store defines the vault operations consumed by the service and API
// layers. Depend on this interface rather than the concrete *DB to
// facilitate testing with fakes.
type Store interface {
	Upsert(item models.VaultItem) (models.VaultItem, error)
	Get(userID, id string) (*models.VaultItem, error)
	ListByUser(userID string) ([]models.VaultItem, error)
	Search(userID, query string) ([]models.VaultItem, error)
	Delete(userID, id string) error
	Stats(userID string) (models.VaultStats, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// Upsert inserts a field or replaces the existing row for the same
// (user_id, category, field_name). The row id is preserved on update.
func (db *DB) Upsert(item models.VaultItem) (models.VaultItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.UpdatedAt = time.Now().UTC()

	_, err := db.conn.Exec(`
		INSERT INTO data_vault (id, user_id, category, field_name, field_value, is_verified, verification_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, category, field_name) DO UPDATE SET
			field_value       = excluded.field_value,
			is_verified       = excluded.is_verified,
			verification_date = excluded.verification_date,
			updated_at        = excluded.updated_at
	`, item.ID, item.UserID, item.Category, item.FieldName, item.FieldValue,
		item.IsVerified, item.VerificationDate, item.UpdatedAt)
	if err != nil {
		return models.VaultItem{}, fmt.Errorf("vault: upsert: %w", err)
	}

	// Re-read so the caller sees the surviving row id after a conflict.
	row := db.conn.QueryRow(`
		SELECT id FROM data_vault WHERE user_id = ? AND category = ? AND field_name = ?
	`, item.UserID, item.Category, item.FieldName)
	if err := row.Scan(&item.ID); err != nil {
		return models.VaultItem{}, fmt.Errorf("vault: reread after upsert: %w", err)
	}
	return item, nil
}

// Get returns a single item by row id, scoped to the user.
func (db *DB) Get(userID, id string) (*models.VaultItem, error) {
	row := db.conn.QueryRow(`
		SELECT id, user_id, category, field_name, field_value, is_verified, verification_date, updated_at
		FROM data_vault WHERE user_id = ? AND id = ?
	`, userID, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("vault: get: %w", err)
	}
	return item, nil
}

// ListByUser returns every row for a user ordered by category then
// field name. Callers must not rely on any other ordering.
func (db *DB) ListByUser(userID string) ([]models.VaultItem, error) {
	return db.query(`
		SELECT id, user_id, category, field_name, field_value, is_verified, verification_date, updated_at
		FROM data_vault WHERE user_id = ?
		ORDER BY category, field_name
	`, userID)
}

// Search filters a user's rows by a case-insensitive substring over
// field name, value and category.
func (db *DB) Search(userID, query string) ([]models.VaultItem, error) {
	like := "%" + query + "%"
	return db.query(`
		SELECT id, user_id, category, field_name, field_value, is_verified, verification_date, updated_at
		FROM data_vault
		WHERE user_id = ? AND (field_name LIKE ? OR field_value LIKE ? OR category LIKE ?)
		ORDER BY category, field_name
	`, userID, like, like, like)
}

// Delete removes a row by id, scoped to the user.
func (db *DB) Delete(userID, id string) error {
	res, err := db.conn.Exec(`DELETE FROM data_vault WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("vault: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Stats returns aggregate counts for a user's vault.
func (db *DB) Stats(userID string) (models.VaultStats, error) {
	stats := models.VaultStats{Categories: make(map[string]int)}

	rows, err := db.conn.Query(`
		SELECT category, is_verified, COUNT(*)
		FROM data_vault WHERE user_id = ?
		GROUP BY category, is_verified
	`, userID)
	if err != nil {
		return stats, fmt.Errorf("vault: stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var verified bool
		var n int
		if err := rows.Scan(&category, &verified, &n); err != nil {
			return stats, err
		}
		stats.Total += n
		stats.Categories[category] += n
		if verified {
			stats.Verified += n
		} else {
			stats.Pending += n
		}
	}
	return stats, rows.Err()
}

func (db *DB) query(q string, args ...any) ([]models.VaultItem, error) {
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("vault: query: %w", err)
	}
	defer rows.Close()

	var out []models.VaultItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.VaultItem, error) {
	var item models.VaultItem
	var verification sql.NullTime
	if err := s.Scan(&item.ID, &item.UserID, &item.Category, &item.FieldName,
		&item.FieldValue, &item.IsVerified, &verification, &item.UpdatedAt); err != nil {
		return nil, err
	}
	if verification.Valid {
		t := verification.Time
		item.VerificationDate = &t
	}
	return &item, nil
}
