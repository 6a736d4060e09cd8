// Package cache keeps logged-in portal sessions alive between requests.
// A full login costs four round trips against the idp, so the server reuses
// one session per account and only re-runs the flow when a session goes bad.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/kreta-tools/go-kreta-bridge/internal/data/kreta"
	"github.com/kreta-tools/go-kreta-bridge/internal/util"
)

// Client is the slice of the portal client the cache needs
type Client interface {
	RefreshIfNeeded(ctx context.Context) error
}

// LoginFunc opens a fresh session for the credentials
type LoginFunc[C Client] func(ctx context.Context, creds *kreta.Credentials) (C, error)

type entry[C Client] struct {
	mu       sync.Mutex
	client   C
	ready    bool
	lastUsed int64
}

// SessionCache maps accounts to live sessions. Each entry carries its own
// lock, so two requests for the same account serialize while different
// accounts proceed in parallel.
type SessionCache[C Client] struct {
	login LoginFunc[C]

	mu      sync.Mutex
	entries map[string]*entry[C]
}

// NewSessionCache builds a cache around the given login function
func NewSessionCache[C Client](login LoginFunc[C]) *SessionCache[C] {
	return &SessionCache[C]{
		login:   login,
		entries: make(map[string]*entry[C]),
	}
}

func sessionKey(creds *kreta.Credentials) string {
	return creds.Username + "@" + creds.Institute
}

func (sc *SessionCache[C]) entryFor(key string) *entry[C] {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	e, ok := sc.entries[key]
	if !ok {
		e = &entry[C]{}
		sc.entries[key] = e
	}
	return e
}

// WithClient runs fn with a live session for the credentials, logging in or
// refreshing as needed. When fn fails the session is dropped, the next
// request starts from a clean login rather than hammering a dead token.
func (sc *SessionCache[C]) WithClient(ctx context.Context, creds *kreta.Credentials, fn func(C) error) error {
	key := sessionKey(creds)
	e := sc.entryFor(key)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ready {
		if err := e.client.RefreshIfNeeded(ctx); err != nil {
			util.LogWarnf("refresh for %s failed, falling back to full login: %v", key, err)
			e.ready = false
		}
	}
	if !e.ready {
		client, err := sc.login(ctx, creds)
		if err != nil {
			return err
		}
		e.client = client
		e.ready = true
		util.LogDebugf("opened new session for %s", key)
	}
	e.lastUsed = time.Now().Unix()

	if err := fn(e.client); err != nil {
		var zero C
		e.client = zero
		e.ready = false
		return err
	}
	return nil
}

// Len reports how many accounts have an entry
func (sc *SessionCache[C]) Len() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.entries)
}

// Prune drops sessions idle for longer than maxIdle and returns how many
// were removed. Entries busy serving a request are skipped.
func (sc *SessionCache[C]) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle).Unix()

	sc.mu.Lock()
	defer sc.mu.Unlock()

	pruned := 0
	for key, e := range sc.entries {
		if !e.mu.TryLock() {
			continue
		}
		idle := e.lastUsed < cutoff
		e.mu.Unlock()

		if idle {
			delete(sc.entries, key)
			pruned++
		}
	}
	if pruned > 0 {
		util.LogDebugf("pruned %d idle sessions, %d remain", pruned, len(sc.entries))
	}
	return pruned
}
