package session

import (
	"context"
	"hash/maphash"
	"sync"
	"time"

	"github.com/esportlife/site/internal/domain"
)

const shardCount = 16

// MemoryStore is an in-process session store. Sessions are spread over
// independently locked shards; expired entries are dropped lazily on
// Lookup and in bulk by a background sweeper.
type MemoryStore struct {
	shards [shardCount]*shard
	seed   maphash.Seed
	ttl    time.Duration
	now    func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

type shard struct {
	mu    sync.RWMutex
	items map[string]domain.Session
}

// NewMemoryStore creates a store whose sessions live for ttl. When
// sweepInterval is positive a goroutine removes expired sessions on that
// period until Close is called.
func NewMemoryStore(ttl, sweepInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		seed: maphash.MakeSeed(),
		ttl:  ttl,
		now:  time.Now,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	for i := range s.shards {
		s.shards[i] = &shard{items: make(map[string]domain.Session)}
	}

	if sweepInterval > 0 {
		go s.sweepLoop(sweepInterval)
	} else {
		close(s.done)
	}
	return s
}

// SetClock replaces the time source. Intended for tests.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *MemoryStore) shardFor(token string) *shard {
	return s.shards[maphash.String(s.seed, token)%shardCount]
}

func (s *MemoryStore) Create(ctx context.Context, userID int64, displayName string) (*domain.Session, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := domain.Session{
		Token:       token,
		UserID:      userID,
		DisplayName: displayName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	sh := s.shardFor(token)
	sh.mu.Lock()
	sh.items[token] = sess
	sh.mu.Unlock()

	return &sess, nil
}

func (s *MemoryStore) Lookup(ctx context.Context, token string) (*domain.Session, error) {
	sh := s.shardFor(token)
	sh.mu.RLock()
	sess, ok := sh.items[token]
	sh.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}

	if sess.Expired(s.now()) {
		sh.mu.Lock()
		delete(sh.items, token)
		sh.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	return &sess, nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	sh := s.shardFor(token)
	sh.mu.Lock()
	delete(sh.items, token)
	sh.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, including expired ones not yet swept.
func (s *MemoryStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.items)
		sh.mu.RUnlock()
	}
	return n
}

// Sweep removes every expired session and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for token, sess := range sh.items {
			if sess.Expired(now) {
				delete(sh.items, token)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Close stops the background sweeper.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	return nil
}

func (s *MemoryStore) sweepLoop(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
