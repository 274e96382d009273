package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vovakirdan/roomchat/internal/store"
	"github.com/vovakirdan/roomchat/internal/store/sqlite"
)

func newTestAuthService(t *testing.T) (*Service, *sqlite.SQLiteStore) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtConfig := &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      time.Hour,
	}

	return NewService(st, jwtConfig), st
}

// failingStore simulates an unavailable database.
type failingStore struct{}

var errStoreDown = errors.New("database is locked")

func (failingStore) CreateUser(context.Context, string, string) (*store.User, error) {
	return nil, errStoreDown
}

func (failingStore) GetUserByID(context.Context, int64) (*store.User, error) {
	return nil, errStoreDown
}

func (failingStore) GetUserByUsername(context.Context, string) (*store.User, error) {
	return nil, errStoreDown
}

func TestRegister_RejectsInvalidUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, "ab", "password123"); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}

	// Should be validated after trimming whitespace.
	if err := svc.Register(ctx, " ab ", "password123"); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
}

func TestRegister_RejectsInvalidPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	for _, password := range []string{"12345", strings.Repeat("p", 73)} {
		if err := svc.Register(context.Background(), "abc", password); !errors.Is(err, ErrInvalidPassword) {
			t.Fatalf("len %d: expected ErrInvalidPassword, got %v", len(password), err)
		}
	}

	// The upper bound is inclusive.
	if err := svc.Register(context.Background(), "abc", strings.Repeat("p", 72)); err != nil {
		t.Fatalf("72-byte password rejected: %v", err)
	}
}

func TestRegister_DuplicateLeavesRecordUnchanged(t *testing.T) {
	svc, st := newTestAuthService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, " alice ", "password123"); err != nil {
		t.Fatalf("expected registration success, got %v", err)
	}
	before, err := st.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("stored username should be trimmed: %v", err)
	}

	if err := svc.Register(ctx, "alice", "another-password"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	after, err := st.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if *after != *before {
		t.Fatalf("record changed: before %+v after %+v", before, after)
	}
}

func TestLogin_Succeeds(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, "alice", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, name, err := svc.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if name != "alice" {
		t.Fatalf("expected username alice, got %q", name)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	if claims.Username != "alice" || claims.UserID == 0 {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLogin_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, "alice", "password123"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, wrongPwd := svc.Login(ctx, "alice", "nope-nope")
	_, _, unknown := svc.Login(ctx, "bob", "password123")

	if !errors.Is(wrongPwd, ErrInvalidCredentials) || !errors.Is(unknown, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", wrongPwd, unknown)
	}
	if wrongPwd.Error() != unknown.Error() {
		t.Fatalf("failure messages differ: %q vs %q", wrongPwd, unknown)
	}
}

func TestStoreFailureIsNotReportedAsCredentials(t *testing.T) {
	svc := NewService(failingStore{}, &JWTConfig{Secret: []byte("x"), TTL: time.Hour})
	ctx := context.Background()

	if err := svc.Register(ctx, "alice", "password123"); err == nil || errors.Is(err, ErrUserExists) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice", "password123"); err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
