// Package privileged commits replacement store documents to the protected
// system location under an elevated-privilege grant.
package privileged

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/sys/unix"

	"github.com/nfries/dispmode/internal/application/port"
	"github.com/nfries/dispmode/internal/logging"
)

// AuthSession owns the cached administrator grant for one process. The
// first acquisition prompts interactively; later ones reuse the grant
// until Invalidate. Concurrent acquirers share a single prompt and block
// until it resolves.
type AuthSession struct {
	prompter port.AdminPrompter
	reason   string

	mu      sync.Mutex
	granted bool
	group   singleflight.Group
}

// NewAuthSession creates a session around the given prompter. reason is
// shown on the interactive prompt. A process already running as root
// starts with the grant in hand.
func NewAuthSession(prompter port.AdminPrompter, reason string) *AuthSession {
	return &AuthSession{
		prompter: prompter,
		reason:   reason,
		granted:  unix.Geteuid() == 0,
	}
}

// Acquire ensures the session holds a grant, prompting at most once no
// matter how many goroutines arrive while the prompt is up. Returns
// ErrAuthCancelled or ErrAuthDenied unchanged from the prompter.
func (s *AuthSession) Acquire(ctx context.Context) error {
	s.mu.Lock()
	granted := s.granted
	s.mu.Unlock()
	if granted {
		return nil
	}

	_, err, _ := s.group.Do("grant", func() (any, error) {
		// Re-check under the flight: a racing caller may have finished
		// a previous prompt between our unlock and Do.
		s.mu.Lock()
		granted := s.granted
		s.mu.Unlock()
		if granted {
			return nil, nil
		}

		logging.FromContext(ctx).Info().Msg("requesting administrator authorization")
		if err := s.prompter.RequestGrant(ctx, s.reason); err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.granted = true
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

// Invalidate drops the cached grant; the next Acquire prompts again.
func (s *AuthSession) Invalidate() {
	s.mu.Lock()
	s.granted = false
	s.mu.Unlock()
}

// Granted reports whether the session currently holds a grant.
func (s *AuthSession) Granted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.granted
}
