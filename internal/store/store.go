// ABOUTME: Store interface and data types for gateway persistence.
// ABOUTME: Defines User, Home, CallerMapping structs and per-entity errors.

package store

import (
	"context"
	"errors"
	"time"
)

// MaxCallerIDLength bounds voice-platform caller identifiers. Amazon user
// ids in particular run to several hundred characters.
const MaxCallerIDLength = 500

// Per-entity errors. SQLite reports constraint violations as opaque
// strings, so the store translates them into these sentinels.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrHomeNotFound    = errors.New("home not found")
	ErrMappingNotFound = errors.New("caller mapping not found")
	ErrUsernameExists  = errors.New("username already exists")
	ErrDuplicateHome   = errors.New("home already exists")
	ErrCallerIDTooLong = errors.New("caller id exceeds maximum length")
	ErrAdminNotFound   = errors.New("admin user not found")
	ErrAdminNameExists = errors.New("admin username already exists")
)

// User is an account that owns zero or more homes.
type User struct {
	ID        string
	Username  string
	FullName  string
	Email     string
	Active    bool
	CreatedAt time.Time
}

// Home is a registered home and its controller configuration. The
// controller URL and webhook id tell the scene dispatcher where approved
// intents land. TestMode homes skip controller delivery entirely.
type Home struct {
	ID            string
	UserID        string
	Name          string
	ControllerURL string
	WebhookID     string
	Active        bool
	TestMode      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CallerMapping binds an opaque voice-platform caller id to a home. One
// caller maps to exactly one home at a time; re-inserting updates the
// mapping in place.
type CallerMapping struct {
	CallerID  string
	HomeID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AdminUser is an operator account for the admin API.
type AdminUser struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt
	DisplayName  string
	CreatedAt    time.Time
}

// UserStore defines user account operations.
type UserStore interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, u *User) error
	DeleteUser(ctx context.Context, id string) error
}

// HomeStore defines home registry operations.
type HomeStore interface {
	CreateHome(ctx context.Context, h *Home) error
	GetHome(ctx context.Context, id string) (*Home, error)
	ListHomes(ctx context.Context) ([]*Home, error)
	ListHomesByUser(ctx context.Context, userID string) ([]*Home, error)
	UpdateHome(ctx context.Context, h *Home) error
	DeleteHome(ctx context.Context, id string) error
}

// MappingStore defines caller-to-home binding operations.
type MappingStore interface {
	UpsertCallerMapping(ctx context.Context, m *CallerMapping) error
	GetCallerMapping(ctx context.Context, callerID string) (*CallerMapping, error)
	ListCallerMappings(ctx context.Context) ([]*CallerMapping, error)
	ListCallerMappingsByHome(ctx context.Context, homeID string) ([]*CallerMapping, error)
	DeleteCallerMapping(ctx context.Context, callerID string) error
}

// AdminStore defines admin account operations.
type AdminStore interface {
	CreateAdminUser(ctx context.Context, a *AdminUser) error
	GetAdminUser(ctx context.Context, id string) (*AdminUser, error)
	GetAdminUserByUsername(ctx context.Context, username string) (*AdminUser, error)
	CountAdminUsers(ctx context.Context) (int, error)
	ListAdminUsers(ctx context.Context) ([]*AdminUser, error)
}

// Store is the full persistence interface implemented by SQLiteStore.
type Store interface {
	UserStore
	HomeStore
	MappingStore
	AdminStore

	// Close releases any resources held by the store
	Close() error
}
