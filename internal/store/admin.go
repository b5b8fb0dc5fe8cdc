// ABOUTME: Admin user store methods on SQLiteStore.
// ABOUTME: Operator accounts with bcrypt password hashes for the admin API.

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateAdminUser creates a new admin account.
// Returns ErrAdminNameExists if the username is taken.
func (s *SQLiteStore) CreateAdminUser(ctx context.Context, a *AdminUser) error {
	query := `
		INSERT INTO admin_users (id, username, password_hash, display_name, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		a.ID,
		a.Username,
		a.PasswordHash,
		a.DisplayName,
		formatTime(a.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrAdminNameExists
		}
		return fmt.Errorf("inserting admin user: %w", err)
	}

	s.logger.Debug("created admin user", "id", a.ID, "username", a.Username)
	return nil
}

// GetAdminUser retrieves an admin account by ID.
func (s *SQLiteStore) GetAdminUser(ctx context.Context, id string) (*AdminUser, error) {
	query := adminSelect + ` WHERE id = ?`

	a, err := scanAdminRow(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrAdminNotFound
	}
	return a, err
}

// GetAdminUserByUsername retrieves an admin account by username.
func (s *SQLiteStore) GetAdminUserByUsername(ctx context.Context, username string) (*AdminUser, error) {
	query := adminSelect + ` WHERE username = ?`

	a, err := scanAdminRow(s.db.QueryRowContext(ctx, query, username))
	if err == sql.ErrNoRows {
		return nil, ErrAdminNotFound
	}
	return a, err
}

// CountAdminUsers returns the number of admin accounts. Used by bootstrap
// to refuse re-running on an initialized database.
func (s *SQLiteStore) CountAdminUsers(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting admin users: %w", err)
	}
	return count, nil
}

// ListAdminUsers returns all admin accounts ordered by creation time.
func (s *SQLiteStore) ListAdminUsers(ctx context.Context) ([]*AdminUser, error) {
	rows, err := s.db.QueryContext(ctx, adminSelect+` ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying admin users: %w", err)
	}
	defer rows.Close()

	var admins []*AdminUser
	for rows.Next() {
		a, err := scanAdminRow(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

const adminSelect = `
	SELECT id, username, password_hash, display_name, created_at
	FROM admin_users`

func scanAdminRow(row rowScanner) (*AdminUser, error) {
	var a AdminUser
	var createdAt string

	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.DisplayName, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning admin user: %w", err)
	}

	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &a, nil
}
