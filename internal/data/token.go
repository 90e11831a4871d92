package data

import (
	"sync"
	"time"
)

// tokenCache holds a bearer token together with its expiry. Each Client owns
// its own cache; there is deliberately no process-wide token state.
type tokenCache struct {
	mu     sync.Mutex
	token  string
	expiry time.Time
}

// refreshMargin is subtracted from the reported lifetime so a token is
// refreshed before it actually expires mid-request.
const refreshMargin = 60 * time.Second

func (tc *tokenCache) get(now time.Time) (string, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.token == "" || !now.Before(tc.expiry) {
		return "", false
	}
	return tc.token, true
}

func (tc *tokenCache) set(token string, lifetime time.Duration, now time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.token = token
	tc.expiry = now.Add(lifetime - refreshMargin)
}
