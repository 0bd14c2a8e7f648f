// Package cache holds the optional report cache: a generic LRU with TTL, a
// key scheme scoped per user, and a manager that sweeps expired entries.
package cache

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Cache is the behaviour the report service needs from a cache.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// DeletePrefix drops all keys sharing prefix, e.g. every report of a user.
	DeletePrefix(prefix string) int
	Size() int
}

// UserPrefix is the key prefix shared by every cached report of userID.
func UserPrefix(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10) + "|"
}

// Key builds the cache key of one report for one user and period.
func Key(userID int64, report string, period ...string) string {
	var b strings.Builder
	b.WriteString(UserPrefix(userID))
	b.WriteString(report)
	for _, p := range period {
		b.WriteByte('|')
		b.WriteString(p)
	}
	return b.String()
}

// Cleaner is implemented by caches that can sweep expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically sweeps the caches registered with it.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	logger      *slog.Logger
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
		logger:      logger,
	}
}

func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup sweeps all registered caches every interval until Stop.
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := 0
			for _, c := range m.caches {
				cleaned += c.CleanExpired()
			}
			if cleaned > 0 {
				m.logger.Debug("Cache cleanup", "removed", cleaned)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop ends the cleanup loop and waits for it. It must only be called after
// StartCleanup.
func (m *Manager) Stop() {
	close(m.stopCleanup)
	<-m.cleanupDone
}
