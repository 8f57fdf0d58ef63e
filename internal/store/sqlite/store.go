package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clonehost/clonehost/internal/store"
)

// CreateTenant inserts a tenant. A UNIQUE violation on token or secret
// surfaces as store.ErrDuplicate.
func (s *Store) CreateTenant(ctx context.Context, t store.Tenant) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tenants (token, secret, username, owner_id, join_channel)
		VALUES (?, ?, ?, ?, ?)`,
		t.Token, t.Secret, t.Username, t.OwnerID, t.JoinChannel,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, store.ErrDuplicate
		}
		return 0, fmt.Errorf("sqlite: create tenant: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: tenant insert id: %w", err)
	}
	return id, nil
}

// TenantBySecret resolves the webhook-routing key to a tenant.
func (s *Store) TenantBySecret(ctx context.Context, secret string) (*store.Tenant, error) {
	var t store.Tenant
	err := s.db.QueryRowContext(ctx, `
		SELECT id, token, secret, username, owner_id, join_channel
		FROM tenants WHERE secret = ?`,
		secret,
	).Scan(&t.ID, &t.Token, &t.Secret, &t.Username, &t.OwnerID, &t.JoinChannel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: tenant by secret: %w", err)
	}
	return &t, nil
}

// TenantsByOwner lists all tenants registered by the given user.
func (s *Store) TenantsByOwner(ctx context.Context, ownerID int64) ([]store.Tenant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, token, secret, username, owner_id, join_channel
		FROM tenants WHERE owner_id = ?`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: tenants by owner: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tenants []store.Tenant
	for rows.Next() {
		var t store.Tenant
		if err := rows.Scan(&t.ID, &t.Token, &t.Secret, &t.Username, &t.OwnerID, &t.JoinChannel); err != nil {
			return nil, fmt.Errorf("sqlite: scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: scan tenant rows: %w", err)
	}
	return tenants, nil
}

// SetJoinChannel sets or clears the join gate of a tenant. Idempotent;
// unknown usernames are a no-op.
func (s *Store) SetJoinChannel(ctx context.Context, username, channel string) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE tenants SET join_channel = ? WHERE username = ?",
		channel, username,
	); err != nil {
		return fmt.Errorf("sqlite: set join channel: %w", err)
	}
	return nil
}

// DeleteTenantByToken removes a tenant row.
func (s *Store) DeleteTenantByToken(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tenants WHERE token = ?", token); err != nil {
		return fmt.Errorf("sqlite: delete tenant: %w", err)
	}
	return nil
}

// CountTenants returns the number of hosted tenants.
func (s *Store) CountTenants(ctx context.Context) (int64, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM tenants")
}

// CreateFile inserts a file record and returns its row id.
func (s *Store) CreateFile(ctx context.Context, f store.FileRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO files (bot_username, bot_token, file_id, file_type, caption)
		VALUES (?, ?, ?, ?, ?)`,
		f.BotUsername, f.BotToken, f.FileID, f.FileType, f.Caption,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: create file: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: file insert id: %w", err)
	}
	return id, nil
}

// FileByID fetches a record by id scoped to the owning bot.
func (s *Store) FileByID(ctx context.Context, id int64, botUsername string) (*store.FileRecord, error) {
	var f store.FileRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, bot_username, bot_token, file_id, file_type, caption
		FROM files WHERE id = ? AND bot_username = ?`,
		id, botUsername,
	).Scan(&f.ID, &f.BotUsername, &f.BotToken, &f.FileID, &f.FileType, &f.Caption)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: file by id: %w", err)
	}
	return &f, nil
}

// CountFiles returns the number of file records, all tenants.
func (s *Store) CountFiles(ctx context.Context) (int64, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM files")
}

// CountFilesByBot returns the number of file records for one tenant.
func (s *Store) CountFilesByBot(ctx context.Context, botUsername string) (int64, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM files WHERE bot_username = ?", botUsername)
}

// EnsureUser records a (tenant, user) pair, inserting only if absent.
// The UNIQUE(bot_username, user_id) index makes this idempotent.
func (s *Store) EnsureUser(ctx context.Context, u store.UserRecord) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO users (bot_username, bot_token, user_id)
		VALUES (?, ?, ?)`,
		u.BotUsername, u.BotToken, u.UserID,
	); err != nil {
		return fmt.Errorf("sqlite: ensure user: %w", err)
	}
	return nil
}

// Roster returns every known (token, user) pair across all tenants.
func (s *Store) Roster(ctx context.Context) ([]store.UserRecord, error) {
	return s.roster(ctx, `
		SELECT DISTINCT bot_username, bot_token, user_id FROM users`)
}

// RosterByBot returns the roster of one tenant.
func (s *Store) RosterByBot(ctx context.Context, botUsername string) ([]store.UserRecord, error) {
	return s.roster(ctx, `
		SELECT DISTINCT bot_username, bot_token, user_id
		FROM users WHERE bot_username = ?`,
		botUsername)
}

// CountUsers returns the roster size, all tenants.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM users")
}

// CountUsersByBot returns the roster size of one tenant.
func (s *Store) CountUsersByBot(ctx context.Context, botUsername string) (int64, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM users WHERE bot_username = ?", botUsername)
}

func (s *Store) roster(ctx context.Context, query string, args ...any) ([]store.UserRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: roster: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []store.UserRecord
	for rows.Next() {
		var u store.UserRecord
		if err := rows.Scan(&u.BotUsername, &u.BotToken, &u.UserID); err != nil {
			return nil, fmt.Errorf("sqlite: scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: scan user rows: %w", err)
	}
	return users, nil
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: count: %w", err)
	}
	return n, nil
}
