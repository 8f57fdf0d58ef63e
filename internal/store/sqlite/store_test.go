package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/clonehost/clonehost/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), Options{})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testTenant(token, secret string) store.Tenant {
	return store.Tenant{
		Token:    token,
		Secret:   secret,
		Username: "foo_bot",
		OwnerID:  100,
	}
}

func TestOpen_MigrationIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.db")
	s1, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("first Open() error: %v", err)
	}
	if _, err := s1.CreateTenant(context.Background(), testTenant("1:a", "sec1")); err != nil {
		t.Fatalf("CreateTenant() error: %v", err)
	}
	_ = s1.Close()

	s2, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("second Open() error: %v", err)
	}
	defer func() { _ = s2.Close() }()

	n, err := s2.CountTenants(context.Background())
	if err != nil {
		t.Fatalf("CountTenants() error: %v", err)
	}
	if n != 1 {
		t.Errorf("CountTenants() = %d, want 1 after reopen", n)
	}
}

func TestCreateTenant_DuplicateToken(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTenant(ctx, testTenant("1:a", "sec1")); err != nil {
		t.Fatalf("first CreateTenant() error: %v", err)
	}

	_, err := s.CreateTenant(ctx, testTenant("1:a", "sec2"))
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate token error = %v, want ErrDuplicate", err)
	}

	n, _ := s.CountTenants(ctx)
	if n != 1 {
		t.Errorf("CountTenants() = %d, want exactly 1 row", n)
	}
}

func TestCreateTenant_DuplicateSecret(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTenant(ctx, testTenant("1:a", "sec1")); err != nil {
		t.Fatalf("first CreateTenant() error: %v", err)
	}

	_, err := s.CreateTenant(ctx, testTenant("2:b", "sec1"))
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("duplicate secret error = %v, want ErrDuplicate", err)
	}
}

func TestTenantBySecret(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.CreateTenant(ctx, testTenant("1:a", "sec1"))
	if err != nil {
		t.Fatalf("CreateTenant() error: %v", err)
	}

	tenant, err := s.TenantBySecret(ctx, "sec1")
	if err != nil {
		t.Fatalf("TenantBySecret() error: %v", err)
	}
	if tenant.ID != id {
		t.Errorf("ID = %d, want %d", tenant.ID, id)
	}
	if tenant.Username != "foo_bot" {
		t.Errorf("Username = %q, want foo_bot", tenant.Username)
	}

	if _, err := s.TenantBySecret(ctx, "unknown"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown secret error = %v, want ErrNotFound", err)
	}
}

func TestSetJoinChannel_SetAndClear(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTenant(ctx, testTenant("1:a", "sec1")); err != nil {
		t.Fatalf("CreateTenant() error: %v", err)
	}

	if err := s.SetJoinChannel(ctx, "foo_bot", "mychannel"); err != nil {
		t.Fatalf("SetJoinChannel() error: %v", err)
	}
	tenant, _ := s.TenantBySecret(ctx, "sec1")
	if tenant.JoinChannel != "mychannel" {
		t.Errorf("JoinChannel = %q, want mychannel", tenant.JoinChannel)
	}

	if err := s.SetJoinChannel(ctx, "foo_bot", ""); err != nil {
		t.Fatalf("clear SetJoinChannel() error: %v", err)
	}
	tenant, _ = s.TenantBySecret(ctx, "sec1")
	if tenant.JoinChannel != "" {
		t.Errorf("JoinChannel = %q, want empty after clear", tenant.JoinChannel)
	}
}

func TestTenantsByOwner(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	a := testTenant("1:a", "sec1")
	b := testTenant("2:b", "sec2")
	b.Username = "bar_bot"
	other := testTenant("3:c", "sec3")
	other.OwnerID = 999

	for _, tn := range []store.Tenant{a, b, other} {
		if _, err := s.CreateTenant(ctx, tn); err != nil {
			t.Fatalf("CreateTenant() error: %v", err)
		}
	}

	tenants, err := s.TenantsByOwner(ctx, 100)
	if err != nil {
		t.Fatalf("TenantsByOwner() error: %v", err)
	}
	if len(tenants) != 2 {
		t.Errorf("len = %d, want 2", len(tenants))
	}
}

func TestDeleteTenantByToken(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTenant(ctx, testTenant("1:a", "sec1")); err != nil {
		t.Fatalf("CreateTenant() error: %v", err)
	}
	if err := s.DeleteTenantByToken(ctx, "1:a"); err != nil {
		t.Fatalf("DeleteTenantByToken() error: %v", err)
	}
	if _, err := s.TenantBySecret(ctx, "sec1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("after delete, TenantBySecret error = %v, want ErrNotFound", err)
	}
}

func TestFileRoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.CreateFile(ctx, store.FileRecord{
		BotUsername: "foo_bot",
		BotToken:    "1:a",
		FileID:      "REMOTE_REF",
		FileType:    store.FileTypePhoto,
		Caption:     "hello",
	})
	if err != nil {
		t.Fatalf("CreateFile() error: %v", err)
	}
	if id <= 0 {
		t.Fatalf("CreateFile() id = %d, want positive", id)
	}

	f, err := s.FileByID(ctx, id, "foo_bot")
	if err != nil {
		t.Fatalf("FileByID() error: %v", err)
	}
	if f.FileID != "REMOTE_REF" || f.FileType != store.FileTypePhoto || f.Caption != "hello" {
		t.Errorf("FileByID() = %+v, fields mismatch", f)
	}

	// A different tenant must not see the record.
	if _, err := s.FileByID(ctx, id, "bar_bot"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cross-tenant FileByID error = %v, want ErrNotFound", err)
	}
}

func TestEnsureUser_Idempotent(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	u := store.UserRecord{BotUsername: "foo_bot", BotToken: "1:a", UserID: 42}
	for range 3 {
		if err := s.EnsureUser(ctx, u); err != nil {
			t.Fatalf("EnsureUser() error: %v", err)
		}
	}

	n, err := s.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers() error: %v", err)
	}
	if n != 1 {
		t.Errorf("CountUsers() = %d, want 1 (idempotent upsert)", n)
	}
}

func TestRosterScoping(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	records := []store.UserRecord{
		{BotUsername: "foo_bot", BotToken: "1:a", UserID: 1},
		{BotUsername: "foo_bot", BotToken: "1:a", UserID: 2},
		{BotUsername: "bar_bot", BotToken: "2:b", UserID: 2},
	}
	for _, u := range records {
		if err := s.EnsureUser(ctx, u); err != nil {
			t.Fatalf("EnsureUser() error: %v", err)
		}
	}

	all, err := s.Roster(ctx)
	if err != nil {
		t.Fatalf("Roster() error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Roster() len = %d, want 3", len(all))
	}

	foo, err := s.RosterByBot(ctx, "foo_bot")
	if err != nil {
		t.Fatalf("RosterByBot() error: %v", err)
	}
	if len(foo) != 2 {
		t.Errorf("RosterByBot(foo_bot) len = %d, want 2", len(foo))
	}

	nFoo, _ := s.CountUsersByBot(ctx, "foo_bot")
	if nFoo != 2 {
		t.Errorf("CountUsersByBot(foo_bot) = %d, want 2", nFoo)
	}
}

func TestCounts(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTenant(ctx, testTenant("1:a", "sec1")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateFile(ctx, store.FileRecord{BotUsername: "foo_bot", BotToken: "1:a", FileID: "x", FileType: store.FileTypeDocument}); err != nil {
		t.Fatal(err)
	}
	if err := s.EnsureUser(ctx, store.UserRecord{BotUsername: "foo_bot", BotToken: "1:a", UserID: 1}); err != nil {
		t.Fatal(err)
	}

	for name, fn := range map[string]func(context.Context) (int64, error){
		"tenants": s.CountTenants,
		"files":   s.CountFiles,
		"users":   s.CountUsers,
	} {
		n, err := fn(ctx)
		if err != nil {
			t.Fatalf("count %s error: %v", name, err)
		}
		if n != 1 {
			t.Errorf("count %s = %d, want 1", name, n)
		}
	}

	nf, _ := s.CountFilesByBot(ctx, "foo_bot")
	if nf != 1 {
		t.Errorf("CountFilesByBot = %d, want 1", nf)
	}
}
