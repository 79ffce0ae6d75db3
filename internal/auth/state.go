package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const oauthStateTTL = 5 * time.Minute

// oauthStates tracks issued OAuth state values. Each value redeems once and
// only before it expires; expired entries are pruned on issue.
type oauthStates struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

func newOAuthStates(now func() time.Time) *oauthStates {
	if now == nil {
		now = time.Now
	}
	return &oauthStates{expires: make(map[string]time.Time), now: now}
}

func (s *oauthStates) issue() string {
	state := uuid.NewString()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, exp := range s.expires {
		if now.After(exp) {
			delete(s.expires, k)
		}
	}
	s.expires[state] = now.Add(oauthStateTTL)
	return state
}

func (s *oauthStates) redeem(state string) bool {
	s.mu.Lock()
	exp, ok := s.expires[state]
	delete(s.expires, state)
	s.mu.Unlock()

	return ok && !s.now().After(exp)
}

func (s *oauthStates) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expires)
}
