package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultTimeout       = 30 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// Config configures a Store.
type Config struct {
	// Timeout is the idle duration after which a session expires.
	Timeout time.Duration
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// NewState creates the game state for a new session. Required.
	NewState StateFactory
	Logger   *zap.Logger
}

// Store is the single source of truth for active sessions.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	timeout  time.Duration
	now      func() time.Time
	newState StateFactory
	logger   *zap.Logger
}

// NewStore creates an empty store.
func NewStore(cfg Config) *Store {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Store{
		sessions: make(map[string]*Session),
		timeout:  cfg.Timeout,
		now:      cfg.Now,
		newState: cfg.NewState,
		logger:   cfg.Logger,
	}
}

// Timeout returns the configured idle timeout.
func (s *Store) Timeout() time.Duration {
	return s.timeout
}

// Create starts a new session for userID, ending any existing one first.
func (s *Store) Create(userID string, kind Kind) (Info, error) {
	if !kind.Valid() {
		return Info{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	if s.newState == nil {
		return Info{}, fmt.Errorf("session store has no state factory")
	}
	state, err := s.newState(kind)
	if err != nil {
		return Info{}, fmt.Errorf("failed to create %s state: %w", kind, err)
	}

	now := s.now()
	sess := &Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		Kind:         kind,
		State:        state,
		CreatedAt:    now,
		lastActivity: now,
	}

	s.mu.Lock()
	if old, ok := s.sessions[userID]; ok {
		s.removeLocked(old)
		s.logger.Debug("replaced session",
			zap.String("user_id", userID),
			zap.Stringer("previous_kind", old.Kind))
	}
	s.sessions[userID] = sess
	info := sess.infoLocked()
	s.mu.Unlock()

	s.logger.Debug("created session",
		zap.String("user_id", userID),
		zap.String("session_id", sess.ID),
		zap.Stringer("kind", kind))
	return info, nil
}

// Get returns the user's active session and refreshes its activity time.
// An expired session is removed and reported as ErrNoActiveSession.
func (s *Store) Get(userID string) (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return Info{}, ErrNoActiveSession
	}
	now := s.now()
	if s.expireLocked(sess, now) {
		return Info{}, ErrNoActiveSession
	}
	sess.lastActivity = now
	return sess.infoLocked(), nil
}

// End removes the user's session. It reports whether one was removed.
func (s *Store) End(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return false
	}
	s.removeLocked(sess)
	s.logger.Debug("ended session",
		zap.String("user_id", userID),
		zap.Stringer("kind", sess.Kind))
	return true
}

// Do runs fn with exclusive access to the user's session. If fn returns
// true the game reached a terminal state and the session is removed before
// the lock is released.
//
// Do returns ErrNoActiveSession when the user has no live session and
// ErrSessionRaceLost when the session was removed between lookup and
// locking; fn is not called in either case.
func (s *Store) Do(userID string, fn func(*Session) bool) error {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return ErrNoActiveSession
	}
	now := s.now()
	if s.expireLocked(sess, now) {
		s.mu.Unlock()
		return ErrNoActiveSession
	}
	sess.lastActivity = now
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.mu.Lock()
	closed := sess.closed
	s.mu.Unlock()
	if closed {
		return ErrSessionRaceLost
	}

	if fn(sess) {
		s.mu.Lock()
		s.removeLocked(sess)
		s.mu.Unlock()
		s.logger.Debug("session finished",
			zap.String("user_id", userID),
			zap.Stringer("kind", sess.Kind))
	}
	return nil
}

// SweepExpired removes every session idle for longer than the timeout as of
// now. It returns the number of sessions removed.
func (s *Store) SweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, sess := range s.sessions {
		if s.expireLocked(sess, now) {
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("cleaned up expired sessions", zap.Int("count", removed))
	}
	return removed
}

// RunSweeper calls SweepExpired every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.SweepExpired(s.now())
		}
	}
}

// ActiveCount returns the number of live sessions.
func (s *Store) ActiveCount() int {
	return s.Stats().Total
}

// StatsByKind returns the number of live sessions per game kind.
func (s *Store) StatsByKind() map[Kind]int {
	return s.Stats().ByKind
}

// Stats summarizes the live sessions, expiring stale ones first.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stats := Stats{ByKind: make(map[Kind]int, len(Kinds))}
	var total time.Duration
	for _, sess := range s.sessions {
		if s.expireLocked(sess, now) {
			continue
		}
		stats.Total++
		stats.ByKind[sess.Kind]++
		total += now.Sub(sess.CreatedAt)
	}
	if stats.Total > 0 {
		stats.AverageDuration = total / time.Duration(stats.Total)
	}
	return stats
}

// List returns the live sessions ordered by user ID.
func (s *Store) List() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	result := make([]Info, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if s.expireLocked(sess, now) {
			continue
		}
		result = append(result, sess.infoLocked())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UserID < result[j].UserID
	})
	return result
}

// Clear removes every session and returns how many were removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.sessions)
	for _, sess := range s.sessions {
		s.removeLocked(sess)
	}
	s.logger.Info("cleared all sessions", zap.Int("count", count))
	return count
}

// expireLocked removes sess if it is idle past the timeout and not in use.
// A session whose lock is held by Do counts as active. Caller holds s.mu.
func (s *Store) expireLocked(sess *Session, now time.Time) bool {
	if now.Sub(sess.lastActivity) <= s.timeout {
		return false
	}
	if !sess.mu.TryLock() {
		return false
	}
	s.removeLocked(sess)
	sess.mu.Unlock()
	s.logger.Debug("expired session",
		zap.String("user_id", sess.UserID),
		zap.Stringer("kind", sess.Kind))
	return true
}

// removeLocked detaches sess from the table. Caller holds s.mu.
func (s *Store) removeLocked(sess *Session) {
	if cur, ok := s.sessions[sess.UserID]; ok && cur == sess {
		delete(s.sessions, sess.UserID)
	}
	sess.closed = true
}

func (sess *Session) infoLocked() Info {
	return Info{
		ID:             sess.ID,
		UserID:         sess.UserID,
		Kind:           sess.Kind,
		CreatedAt:      sess.CreatedAt,
		LastActivityAt: sess.lastActivity,
	}
}
