package state

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	defaultIdleTimeout   = 30 * time.Minute
	defaultSweepInterval = 60 * time.Second
)

// MemoryConfig tunes the in-process session store.
type MemoryConfig struct {
	IdleTimeout   time.Duration `envconfig:"IDLE_TIMEOUT" split_words:"true" default:"30m"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" split_words:"true" default:"60s"`
}

// MemoryStore keeps sessions in a process-local map. A background sweep
// evicts sessions idle beyond the configured timeout. Load and Save copy the
// session so concurrent requests never share one mutable instance.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]*entry
	idleTimeout time.Duration
	done        chan struct{}
	closeOnce   sync.Once
	now         func() time.Time
}

type entry struct {
	sess         *Session
	lastActivity time.Time
}

func NewMemoryStore(cfg MemoryConfig) *MemoryStore {
	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = defaultIdleTimeout
	}
	sweep := cfg.SweepInterval
	if sweep <= 0 {
		sweep = defaultSweepInterval
	}

	s := &MemoryStore{
		sessions:    make(map[string]*entry, 16),
		idleTimeout: idle,
		done:        make(chan struct{}),
		now:         time.Now,
	}
	go s.sweepLoop(sweep)
	return s
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil, ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastActivity = s.now()
	return cloneSession(e.sess), nil
}

func (s *MemoryStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil {
		return ErrNilSession
	}
	id := strings.TrimSpace(sess.ID)
	if id == "" {
		return ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = &entry{
		sess:         cloneSession(sess),
		lastActivity: s.now(),
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the eviction sweep.
func (s *MemoryStore) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *MemoryStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

func (s *MemoryStore) evictIdle() {
	cutoff := s.now().Add(-s.idleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.sessions {
		if e.lastActivity.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

func cloneSession(src *Session) *Session {
	if src == nil {
		return nil
	}
	dst := *src

	if src.History != nil {
		dst.History = append([]HistoryEntry(nil), src.History...)
	}
	if src.Candidates != nil {
		dst.Candidates = append(dst.Candidates[:0:0], src.Candidates...)
	}
	if src.Context != nil {
		dst.Context = make(map[string]any, len(src.Context))
		for k, v := range src.Context {
			dst.Context[k] = v
		}
	}
	if src.Requirements != nil {
		dst.Requirements = make(map[string]any, len(src.Requirements))
		for k, v := range src.Requirements {
			dst.Requirements[k] = v
		}
	}
	if src.OriginalIntent != nil {
		intent := *src.OriginalIntent
		dst.OriginalIntent = &intent
	}
	return &dst
}
