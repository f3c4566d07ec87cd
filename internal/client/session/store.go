package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/morlov/merchant-admin/internal/domain/enums"
)

// Identity is the authenticated user as the client sees it.
type Identity struct {
	ID       int64      `json:"id"`
	PublicID string     `json:"public_id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Role     enums.Role `json:"role"`
}

// Observer receives the published identity after every commit and clear.
// A nil identity means the session is absent.
type Observer func(identity *Identity)

// Store owns the client session: identity plus access and refresh tokens,
// mirrored to persistent storage on every mutation. It is the single writer
// of the storage slots; authentication state is derived from the published
// identity, never from token presence alone.
type Store struct {
	mu          sync.Mutex
	storage     Storage
	identity    *Identity
	access      string
	refresh     string
	initialized bool
	observers   []Observer
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Initialize restores the persisted session. It never talks to the network;
// a stale token is discovered lazily by the first authenticated call. The
// session is active only when both an identity and an access token survive.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	access, _, err := s.storage.Get(slotAccessToken)
	if err != nil {
		return fmt.Errorf("load access token: %w", err)
	}
	refresh, _, err := s.storage.Get(slotRefreshToken)
	if err != nil {
		return fmt.Errorf("load refresh token: %w", err)
	}
	rawIdentity, hasIdentity, err := s.storage.Get(slotIdentity)
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}

	s.initialized = true
	if !hasIdentity || access == "" {
		s.identity = nil
		s.access = ""
		s.refresh = ""
		return nil
	}

	var identity Identity
	if err := json.Unmarshal([]byte(rawIdentity), &identity); err != nil {
		// A corrupt identity slot reads as an absent session.
		s.identity = nil
		s.access = ""
		s.refresh = ""
		return nil
	}

	s.identity = &identity
	s.access = access
	s.refresh = refresh
	return nil
}

// Commit persists the identity and tokens, then publishes the identity to
// observers. An empty refreshToken leaves the previous refresh token in
// place (the refresh endpoint may not rotate it). All slots are written in
// one storage operation: a failed commit changes neither the persisted nor
// the in-memory session, so the two never diverge.
func (s *Store) Commit(identity Identity, accessToken, refreshToken string) error {
	s.mu.Lock()

	rawIdentity, err := json.Marshal(identity)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("marshal identity: %w", err)
	}

	slots := map[string]string{
		slotAccessToken: accessToken,
		slotIdentity:    string(rawIdentity),
	}
	if refreshToken != "" {
		slots[slotRefreshToken] = refreshToken
	}
	if err := s.storage.SetAll(slots); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist session: %w", err)
	}

	s.identity = &identity
	s.access = accessToken
	if refreshToken != "" {
		s.refresh = refreshToken
	}
	s.initialized = true

	observers, published := s.snapshotForNotify()
	s.mu.Unlock()

	notify(observers, published)
	return nil
}

// Clear erases all persisted slots and publishes the absent session. Safe to
// call repeatedly.
func (s *Store) Clear() error {
	s.mu.Lock()

	if err := s.storage.Delete(slotAccessToken, slotRefreshToken, slotIdentity); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clear storage: %w", err)
	}
	s.identity = nil
	s.access = ""
	s.refresh = ""
	s.initialized = true

	observers, published := s.snapshotForNotify()
	s.mu.Unlock()

	notify(observers, published)
	return nil
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil
}

func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *Store) Identity() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

// Subscribe registers an observer for future commits and clears.
func (s *Store) Subscribe(observer Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

func (s *Store) snapshotForNotify() ([]Observer, *Identity) {
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)

	var published *Identity
	if s.identity != nil {
		clone := *s.identity
		published = &clone
	}
	return observers, published
}

func notify(observers []Observer, identity *Identity) {
	for _, observer := range observers {
		observer(identity)
	}
}
