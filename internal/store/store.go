// Package store defines the persistent records of the clone host —
// tenants, file records, and user rosters — and the storage contracts
// implemented by the sqlite backend.
package store

import (
	"context"
	"errors"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrNotFound is returned by point lookups that miss.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint (tenant token or secret already present).
	ErrDuplicate = errors.New("store: duplicate")
)

// Tenant is one hosted clone bot.
type Tenant struct {
	ID int64

	// Token is the Bot API credential. Unique across tenants.
	Token string

	// Secret is the webhook-routing key. Unique, unguessable, and never
	// shown to end users.
	Secret string

	// Username is the bot's display handle, derived from the token at
	// registration time.
	Username string

	// OwnerID is the Telegram user id that registered the tenant.
	OwnerID int64

	// JoinChannel is the channel users must join before receiving files.
	// Empty means no gate.
	JoinChannel string
}

// File types accepted by the upload flow. Anything else is delivered
// as a document.
const (
	FileTypeDocument = "document"
	FileTypePhoto    = "photo"
	FileTypeVideo    = "video"
)

// FileRecord identifies one stored media item. The system never stores
// file bytes — FileID is a reference into Telegram's own storage.
// Records are immutable once created and never expire.
type FileRecord struct {
	ID          int64
	BotUsername string
	BotToken    string
	FileID      string
	FileType    string
	Caption     string
}

// UserRecord is one (tenant, user) pair, kept purely as a broadcast and
// stats roster. At most one record exists per pair.
type UserRecord struct {
	ID          int64
	BotUsername string
	BotToken    string
	UserID      int64
}

// TenantStore persists hosted clone bots.
type TenantStore interface {
	// CreateTenant inserts a tenant. Returns ErrDuplicate when the token
	// or secret is already registered.
	CreateTenant(ctx context.Context, t Tenant) (int64, error)

	// TenantBySecret resolves the webhook-routing key to a tenant.
	// Returns ErrNotFound for unknown secrets.
	TenantBySecret(ctx context.Context, secret string) (*Tenant, error)

	// TenantsByOwner lists all tenants registered by the given user.
	TenantsByOwner(ctx context.Context, ownerID int64) ([]Tenant, error)

	// SetJoinChannel sets or clears (empty string) the join gate of a
	// tenant identified by username. Idempotent.
	SetJoinChannel(ctx context.Context, username, channel string) error

	// DeleteTenantByToken removes a tenant. Used to roll back a
	// registration whose webhook install failed.
	DeleteTenantByToken(ctx context.Context, token string) error

	// CountTenants returns the number of hosted tenants.
	CountTenants(ctx context.Context) (int64, error)
}

// FileStore persists file records.
type FileStore interface {
	// CreateFile inserts a record and returns its row id.
	CreateFile(ctx context.Context, f FileRecord) (int64, error)

	// FileByID fetches a record by id, scoped to the owning bot so one
	// tenant's links cannot address another tenant's files.
	// Returns ErrNotFound on miss.
	FileByID(ctx context.Context, id int64, botUsername string) (*FileRecord, error)

	// CountFiles returns the number of records, all tenants.
	CountFiles(ctx context.Context) (int64, error)

	// CountFilesByBot returns the number of records for one tenant.
	CountFilesByBot(ctx context.Context, botUsername string) (int64, error)
}

// UserStore persists the broadcast roster.
type UserStore interface {
	// EnsureUser records a (tenant, user) pair, inserting only if absent.
	EnsureUser(ctx context.Context, u UserRecord) error

	// Roster returns every known (token, user) pair across all tenants,
	// deduplicated by (tenant, user).
	Roster(ctx context.Context) ([]UserRecord, error)

	// RosterByBot returns the roster of one tenant.
	RosterByBot(ctx context.Context, botUsername string) ([]UserRecord, error)

	// CountUsers returns the roster size, all tenants.
	CountUsers(ctx context.Context) (int64, error)

	// CountUsersByBot returns the roster size of one tenant.
	CountUsersByBot(ctx context.Context, botUsername string) (int64, error)
}

// Store is the combined persistence contract.
type Store interface {
	TenantStore
	FileStore
	UserStore
}
