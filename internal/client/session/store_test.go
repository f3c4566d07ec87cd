package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/morlov/merchant-admin/internal/domain/enums"
)

var testIdentity = Identity{
	ID:       42,
	PublicID: "pub-42",
	Name:     "Admin",
	Email:    "admin@example.com",
	Role:     enums.RoleAdmin,
}

func TestInitializeWithoutPersistedTokenIsUnauthenticated(t *testing.T) {
	store := NewStore(NewMemoryStorage())

	if err := store.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatalf("expected unauthenticated session")
	}
	if !store.Initialized() {
		t.Fatalf("store must report initialized")
	}
}

func TestCommitPublishesAuthenticatedSession(t *testing.T) {
	store := NewStore(NewMemoryStorage())

	if err := store.Commit(testIdentity, "access-1", "refresh-1"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !store.IsAuthenticated() {
		t.Fatalf("expected authenticated session after commit")
	}
	identity, ok := store.Identity()
	if !ok || identity.Role != enums.RoleAdmin {
		t.Fatalf("unexpected identity: %+v ok=%v", identity, ok)
	}
	if store.AccessToken() != "access-1" || store.RefreshToken() != "refresh-1" {
		t.Fatalf("tokens not published")
	}
}

func TestCommitWithEmptyRefreshTokenKeepsPrevious(t *testing.T) {
	store := NewStore(NewMemoryStorage())

	if err := store.Commit(testIdentity, "access-1", "refresh-1"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := store.Commit(testIdentity, "access-2", ""); err != nil {
		t.Fatalf("second commit: %v", err)
	}

	if store.AccessToken() != "access-2" {
		t.Fatalf("access token not rotated: %q", store.AccessToken())
	}
	if store.RefreshToken() != "refresh-1" {
		t.Fatalf("empty refresh token must keep the previous one, got %q", store.RefreshToken())
	}
}

func TestClearIsIdempotent(t *testing.T) {
	store := NewStore(NewMemoryStorage())

	if err := store.Commit(testIdentity, "access-1", "refresh-1"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatalf("expected unauthenticated session after clear")
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear must not fail: %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatalf("expected unauthenticated session after second clear")
	}
}

func TestObserversSeeEveryCommitAndClear(t *testing.T) {
	store := NewStore(NewMemoryStorage())

	var events []*Identity
	store.Subscribe(func(identity *Identity) {
		events = append(events, identity)
	})

	if err := store.Commit(testIdentity, "access-1", "refresh-1"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0] == nil || events[0].ID != testIdentity.ID {
		t.Fatalf("first event must carry the committed identity")
	}
	if events[1] != nil {
		t.Fatalf("clear must publish an absent session")
	}
}

func TestSessionSurvivesRestartThroughFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	first := NewStore(NewFileStorage(path))
	if err := first.Commit(testIdentity, "access-1", "refresh-1"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	second := NewStore(NewFileStorage(path))
	if err := second.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if !second.IsAuthenticated() {
		t.Fatalf("persisted session must restore without re-login")
	}
	identity, _ := second.Identity()
	if identity.Email != testIdentity.Email {
		t.Fatalf("unexpected restored identity: %+v", identity)
	}
	if second.AccessToken() != "access-1" || second.RefreshToken() != "refresh-1" {
		t.Fatalf("tokens not restored")
	}
}

func TestFailedCommitKeepsPersistedAndMemoryInSync(t *testing.T) {
	storage := &faultyStorage{MemoryStorage: NewMemoryStorage()}
	store := NewStore(storage)

	if err := store.Commit(testIdentity, "access-1", "refresh-1"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	storage.failWrites = true
	next := testIdentity
	next.ID = 43
	if err := store.Commit(next, "access-2", "refresh-2"); err == nil {
		t.Fatalf("expected commit to fail")
	}

	if store.AccessToken() != "access-1" || store.RefreshToken() != "refresh-1" {
		t.Fatalf("in-memory tokens changed after a failed commit: %q %q",
			store.AccessToken(), store.RefreshToken())
	}
	identity, ok := store.Identity()
	if !ok || identity.ID != testIdentity.ID {
		t.Fatalf("in-memory identity changed after a failed commit: %+v ok=%v", identity, ok)
	}

	for slot, want := range map[string]string{
		"access_token":  "access-1",
		"refresh_token": "refresh-1",
	} {
		got, _, err := storage.Get(slot)
		if err != nil {
			t.Fatalf("read %s: %v", slot, err)
		}
		if got != want {
			t.Fatalf("persisted %s ran ahead of memory: got %q want %q", slot, got, want)
		}
	}
}

func TestInitializeWithTokenButNoIdentityIsUnauthenticated(t *testing.T) {
	storage := NewMemoryStorage()
	if err := storage.Set("access_token", "orphan-token"); err != nil {
		t.Fatalf("seed storage: %v", err)
	}

	store := NewStore(storage)
	if err := store.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatalf("a token without an identity must read as unauthenticated")
	}
}

// faultyStorage rejects batched writes on demand while reads keep working.
type faultyStorage struct {
	*MemoryStorage
	failWrites bool
}

func (f *faultyStorage) SetAll(values map[string]string) error {
	if f.failWrites {
		return errors.New("state file write failed")
	}
	return f.MemoryStorage.SetAll(values)
}
