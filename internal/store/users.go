// ABOUTME: User account store methods on SQLiteStore.
// ABOUTME: CRUD for the users table; deletes cascade to homes and mappings.

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateUser creates a new user account.
// Returns ErrUsernameExists if the username is taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (user_id, username, full_name, email, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		u.ID,
		u.Username,
		u.FullName,
		u.Email,
		boolToInt(u.Active),
		formatTime(u.CreatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Debug("created user", "id", u.ID, "username", u.Username)
	return nil
}

// GetUser retrieves a user by ID.
// Returns ErrUserNotFound if the user doesn't exist.
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT user_id, username, full_name, email, is_active, created_at
		FROM users
		WHERE user_id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByUsername retrieves a user by username.
// Returns ErrUserNotFound if no such user exists.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT user_id, username, full_name, email, is_active, created_at
		FROM users
		WHERE username = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, username))
}

// ListUsers returns all users ordered by creation time.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*User, error) {
	query := `
		SELECT user_id, username, full_name, email, is_active, created_at
		FROM users
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser updates a user's mutable fields (username, full name, email,
// active flag). Returns ErrUserNotFound if the user doesn't exist and
// ErrUsernameExists if the new username collides.
func (s *SQLiteStore) UpdateUser(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET username = ?, full_name = ?, email = ?, is_active = ?
		WHERE user_id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		u.Username,
		u.FullName,
		u.Email,
		boolToInt(u.Active),
		u.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("updating user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser removes a user. Homes owned by the user, and the caller
// mappings bound to those homes, are removed by the foreign-key cascade.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	s.logger.Debug("deleted user", "id", id)
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*User, error) {
	u, err := scanUserRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	return u, err
}

func scanUserRow(row rowScanner) (*User, error) {
	var u User
	var email sql.NullString
	var active int
	var createdAt string

	err := row.Scan(&u.ID, &u.Username, &u.FullName, &email, &active, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.Email = email.String
	u.Active = active != 0
	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
