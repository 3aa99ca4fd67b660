package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"foodie/src/types"
)

var (
	_ types.FavoriteStore = (*MemoryStore)(nil)
	_ types.AccountStore  = (*MemoryStore)(nil)
	_ types.SessionStore  = (*MemorySessionStore)(nil)
)

// MemoryStore keeps favorites and accounts in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	favorites map[string]types.Favorite
	accounts  map[string]types.Account
	// insertion order, so accounts sharing an email come back oldest first
	accountIDs []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		favorites: make(map[string]types.Favorite),
		accounts:  make(map[string]types.Account),
	}
}

func (s *MemoryStore) ListFavorites(_ context.Context) ([]types.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Favorite, 0, len(s.favorites))
	for _, f := range s.favorites {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating < out[j].Rating
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) SaveFavorite(_ context.Context, f types.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.favorites[f.ID]; ok {
		return types.ErrAlreadyExists
	}
	s.favorites[f.ID] = f
	return nil
}

func (s *MemoryStore) GetFavorite(_ context.Context, id string) (*types.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.favorites[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &f, nil
}

func (s *MemoryStore) DeleteFavorite(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.favorites[id]; !ok {
		return types.ErrNotFound
	}
	delete(s.favorites, id)
	return nil
}

func (s *MemoryStore) CreateAccount(_ context.Context, email, passwordHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	s.accounts[id] = types.Account{ID: id, Email: email, PasswordHash: passwordHash}
	s.accountIDs = append(s.accountIDs, id)
	return id, nil
}

func (s *MemoryStore) FindAccountsByEmail(_ context.Context, email string) ([]types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.Account
	for _, id := range s.accountIDs {
		if a := s.accounts[id]; a.Email == email {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetAccount(_ context.Context, id string) (*types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &a, nil
}

// DeleteAccount is only used to invalidate sessions in tests and local runs.
func (s *MemoryStore) DeleteAccount(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	for i, v := range s.accountIDs {
		if v == id {
			s.accountIDs = append(s.accountIDs[:i], s.accountIDs[i+1:]...)
			break
		}
	}
}

// MemorySessionStore maps opaque session tokens to account ids. Sessions
// expire after ttl (never when ttl is zero) and are pruned whenever a new
// one is created.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]types.Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]types.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemorySessionStore) CreateSession(_ context.Context, accountID string) (*types.Session, error) {
	session := types.Session{Token: uuid.NewString(), AccountID: accountID}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if s.ttl > 0 {
		session.ExpiresAt = now.Add(s.ttl)
	}
	for token, existing := range s.sessions {
		if expired(existing, now) {
			delete(s.sessions, token)
		}
	}
	s.sessions[session.Token] = session
	return &session, nil
}

// GetSession reports an expired session as not found.
func (s *MemorySessionStore) GetSession(_ context.Context, token string) (*types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok || expired(session, s.now()) {
		return nil, types.ErrNotFound
	}
	return &session, nil
}

// DeleteSession is a no-op for unknown tokens.
func (s *MemorySessionStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Len counts stored sessions, expired ones not yet pruned included.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func expired(session types.Session, now time.Time) bool {
	return !session.ExpiresAt.IsZero() && !now.Before(session.ExpiresAt)
}
