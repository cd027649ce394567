package session

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/boxlens/pkg/errors"
)

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID and marks it used.
	// Returns a SESSION_NOT_FOUND error for unknown or expired IDs.
	Get(ctx context.Context, id string) (*Controller, error)

	// Put stores a session.
	Put(ctx context.Context, c *Controller) error

	// Delete resets and removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and returns how many were removed.
	Cleanup(ctx context.Context) (int, error)

	// Len returns the number of stored sessions.
	Len() int
}

// MemoryStore keeps sessions in process memory. Sessions idle for longer
// than the TTL expire.
type MemoryStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]*Controller
	now   func() time.Time
}

// NewMemoryStore creates an empty store. A non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:   ttl,
		items: make(map[string]*Controller),
		now:   time.Now,
	}
}

func (s *MemoryStore) expired(c *Controller) bool {
	return s.now().Sub(c.LastUsed()) > s.ttl
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Controller, error) {
	s.mu.RLock()
	c, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	if s.expired(c) {
		_ = s.Delete(ctx, id)
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q expired", id)
	}
	c.mu.Lock()
	c.lastUsed = s.now()
	c.mu.Unlock()
	return c, nil
}

func (s *MemoryStore) Put(ctx context.Context, c *Controller) error {
	if c == nil || c.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "session must have an ID")
	}
	c.mu.Lock()
	c.lastUsed = s.now()
	c.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[c.ID] = c
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	c, ok := s.items[id]
	delete(s.items, id)
	s.mu.Unlock()
	if ok {
		c.Reset()
	}
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	s.mu.RLock()
	var stale []string
	for id, c := range s.items {
		if s.expired(c) {
			stale = append(stale, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range stale {
		if err := s.Delete(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *MemoryStore) RunCleanup(ctx context.Context, interval time.Duration, onRemoved func(int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, _ := s.Cleanup(ctx)
			if n > 0 && onRemoved != nil {
				onRemoved(n)
			}
		}
	}
}

var _ Store = (*MemoryStore)(nil)
