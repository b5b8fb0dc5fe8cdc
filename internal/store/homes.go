// ABOUTME: Home registry store methods on SQLiteStore.
// ABOUTME: CRUD for the homes table with per-home controller configuration.

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateHome registers a new home. Returns ErrDuplicateHome if the home id
// is taken and ErrUserNotFound if the owning user doesn't exist.
func (s *SQLiteStore) CreateHome(ctx context.Context, h *Home) error {
	query := `
		INSERT INTO homes (home_id, user_id, name, controller_url, webhook_id, is_active, test_mode, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		h.ID,
		h.UserID,
		h.Name,
		h.ControllerURL,
		h.WebhookID,
		boolToInt(h.Active),
		boolToInt(h.TestMode),
		formatTime(h.CreatedAt),
		formatTime(h.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateHome
		}
		if isForeignKeyError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("inserting home: %w", err)
	}

	s.logger.Debug("created home", "id", h.ID, "user", h.UserID)
	return nil
}

// GetHome retrieves a home by ID.
// Returns ErrHomeNotFound if the home doesn't exist.
func (s *SQLiteStore) GetHome(ctx context.Context, id string) (*Home, error) {
	query := homeSelect + ` WHERE home_id = ?`

	h, err := scanHomeRow(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrHomeNotFound
	}
	return h, err
}

// ListHomes returns all homes ordered by creation time.
func (s *SQLiteStore) ListHomes(ctx context.Context) ([]*Home, error) {
	return s.queryHomes(ctx, homeSelect+` ORDER BY created_at`)
}

// ListHomesByUser returns all homes owned by the given user.
func (s *SQLiteStore) ListHomesByUser(ctx context.Context, userID string) ([]*Home, error) {
	return s.queryHomes(ctx, homeSelect+` WHERE user_id = ? ORDER BY created_at`, userID)
}

// UpdateHome updates a home's mutable fields and bumps updated_at.
// Returns ErrHomeNotFound if the home doesn't exist.
func (s *SQLiteStore) UpdateHome(ctx context.Context, h *Home) error {
	query := `
		UPDATE homes
		SET name = ?, controller_url = ?, webhook_id = ?, is_active = ?, test_mode = ?, updated_at = ?
		WHERE home_id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		h.Name,
		h.ControllerURL,
		h.WebhookID,
		boolToInt(h.Active),
		boolToInt(h.TestMode),
		formatTime(h.UpdatedAt),
		h.ID,
	)
	if err != nil {
		return fmt.Errorf("updating home: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrHomeNotFound
	}
	return nil
}

// DeleteHome removes a home. Caller mappings bound to the home are removed
// by the foreign-key cascade.
func (s *SQLiteStore) DeleteHome(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM homes WHERE home_id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting home: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrHomeNotFound
	}

	s.logger.Debug("deleted home", "id", id)
	return nil
}

const homeSelect = `
	SELECT home_id, user_id, name, controller_url, webhook_id, is_active, test_mode, created_at, updated_at
	FROM homes`

func (s *SQLiteStore) queryHomes(ctx context.Context, query string, args ...any) ([]*Home, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying homes: %w", err)
	}
	defer rows.Close()

	var homes []*Home
	for rows.Next() {
		h, err := scanHomeRow(rows)
		if err != nil {
			return nil, err
		}
		homes = append(homes, h)
	}
	return homes, rows.Err()
}

func scanHomeRow(row rowScanner) (*Home, error) {
	var h Home
	var active, testMode int
	var createdAt, updatedAt string

	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.ControllerURL, &h.WebhookID, &active, &testMode, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning home: %w", err)
	}

	h.Active = active != 0
	h.TestMode = testMode != 0
	if h.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if h.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &h, nil
}
