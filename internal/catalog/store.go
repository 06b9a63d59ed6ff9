package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/mfairbank/restocalc/internal/log"
)

// Store caches a catalog snapshot in memory and refreshes it from the
// underlying repository on a slow interval. Administrative updates are
// infrequent, so assessments read the cached snapshot without hitting the
// database. Snapshot reads are safe for unsynchronized concurrent callers.
type Store struct {
	repo     Repository
	interval time.Duration

	mu      sync.RWMutex
	entries []Entry
	loaded  time.Time
}

// NewStore creates a store and performs the initial catalog load.
func NewStore(ctx context.Context, repo Repository, refreshInterval time.Duration) (*Store, error) {
	s := &Store{
		repo:     repo,
		interval: refreshInterval,
	}
	if err := s.refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns the cached catalog entries. The returned slice must be
// treated as read-only.
func (s *Store) Snapshot() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries
}

// LoadedAt returns when the current snapshot was taken.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Run refreshes the snapshot on the configured interval until the context
// is cancelled. A failed refresh keeps the previous snapshot.
func (s *Store) Run(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.refresh(ctx); err != nil {
					log.Warnf("catalog refresh failed, keeping previous snapshot: %v", err)
				}
			}
		}
	}()
}

func (s *Store) refresh(ctx context.Context) error {
	entries, err := s.repo.All(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = entries
	s.loaded = time.Now()
	s.mu.Unlock()
	log.Debugf("catalog snapshot refreshed: %d entries", len(entries))
	return nil
}
