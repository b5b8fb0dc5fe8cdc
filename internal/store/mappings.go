// ABOUTME: Caller mapping store methods on SQLiteStore.
// ABOUTME: Binds voice-platform caller ids to homes with upsert semantics.

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// UpsertCallerMapping creates or updates the binding for a caller id. A
// caller maps to exactly one home at a time: re-inserting replaces the
// home and bumps updated_at, preserving the original created_at.
// Returns ErrCallerIDTooLong for oversized ids and ErrHomeNotFound when
// the target home doesn't exist.
func (s *SQLiteStore) UpsertCallerMapping(ctx context.Context, m *CallerMapping) error {
	if len(m.CallerID) > MaxCallerIDLength {
		return ErrCallerIDTooLong
	}

	query := `
		INSERT INTO caller_mappings (caller_id, home_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(caller_id) DO UPDATE SET
			home_id = excluded.home_id,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		m.CallerID,
		m.HomeID,
		formatTime(m.CreatedAt),
		formatTime(m.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrHomeNotFound
		}
		return fmt.Errorf("upserting caller mapping: %w", err)
	}

	s.logger.Debug("upserted caller mapping", "home", m.HomeID)
	return nil
}

// GetCallerMapping retrieves the mapping for a caller id.
// Returns ErrMappingNotFound if none exists.
func (s *SQLiteStore) GetCallerMapping(ctx context.Context, callerID string) (*CallerMapping, error) {
	query := mappingSelect + ` WHERE caller_id = ?`

	m, err := scanMappingRow(s.db.QueryRowContext(ctx, query, callerID))
	if err == sql.ErrNoRows {
		return nil, ErrMappingNotFound
	}
	return m, err
}

// ListCallerMappings returns all caller mappings ordered by creation time.
func (s *SQLiteStore) ListCallerMappings(ctx context.Context) ([]*CallerMapping, error) {
	return s.queryMappings(ctx, mappingSelect+` ORDER BY created_at`)
}

// ListCallerMappingsByHome returns all callers bound to the given home.
func (s *SQLiteStore) ListCallerMappingsByHome(ctx context.Context, homeID string) ([]*CallerMapping, error) {
	return s.queryMappings(ctx, mappingSelect+` WHERE home_id = ? ORDER BY created_at`, homeID)
}

// DeleteCallerMapping removes the binding for a caller id.
// Returns ErrMappingNotFound if none exists.
func (s *SQLiteStore) DeleteCallerMapping(ctx context.Context, callerID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM caller_mappings WHERE caller_id = ?`, callerID)
	if err != nil {
		return fmt.Errorf("deleting caller mapping: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrMappingNotFound
	}
	return nil
}

const mappingSelect = `
	SELECT caller_id, home_id, created_at, updated_at
	FROM caller_mappings`

func (s *SQLiteStore) queryMappings(ctx context.Context, query string, args ...any) ([]*CallerMapping, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying caller mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*CallerMapping
	for rows.Next() {
		m, err := scanMappingRow(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func scanMappingRow(row rowScanner) (*CallerMapping, error) {
	var m CallerMapping
	var createdAt, updatedAt string

	err := row.Scan(&m.CallerID, &m.HomeID, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning caller mapping: %w", err)
	}

	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &m, nil
}
