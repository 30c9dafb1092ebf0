package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccessGate guards the kitchen behind a shared passphrase. Three
// consecutive failures lock further attempts for the lockout window.
// A successful verification issues a session-scoped grant valid for the
// access window, re-checked (not renewed) on every gated action.
//
// This is a shared kitchen PIN, not real authentication; the secret is
// compared in plaintext by original intent.
type AccessGate struct {
	mu          sync.Mutex
	secret      string
	maxAttempts int
	lockout     time.Duration
	window      time.Duration

	attempts int
	lockedAt time.Time
	grants   map[string]time.Time
	logger   *zap.Logger
	now      func() time.Time
}

// ErrSecretTooShort is returned when a replacement secret is under three
// characters
var ErrSecretTooShort = errors.New("secret must be at least 3 characters")

// NewAccessGate creates a gate for the given secret
func NewAccessGate(secret string, maxAttempts int, lockout, window time.Duration) *AccessGate {
	return &AccessGate{
		secret:      secret,
		maxAttempts: maxAttempts,
		lockout:     lockout,
		window:      window,
		grants:      make(map[string]time.Time),
		logger:      util.GetLogger(),
		now:         time.Now,
	}
}

// VerifyResult reports the outcome of a passphrase attempt
type VerifyResult struct {
	Granted           bool   `json:"granted"`
	Token             string `json:"token,omitempty"`
	Locked            bool   `json:"locked"`
	RemainingSeconds  int    `json:"remaining_seconds,omitempty"`
	RemainingAttempts int    `json:"remaining_attempts,omitempty"`
	Message           string `json:"message"`
}

// Verify checks the passphrase. During an active lockout every attempt is
// rejected, correct or not, with the remaining lockout time surfaced.
func (g *AccessGate) Verify(passphrase string) VerifyResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()

	if !g.lockedAt.IsZero() {
		elapsed := now.Sub(g.lockedAt)
		if elapsed < g.lockout {
			remaining := int((g.lockout - elapsed).Seconds()) + 1
			util.AccessAttemptsTotal.WithLabelValues("locked").Inc()
			return VerifyResult{
				Locked:           true,
				RemainingSeconds: remaining,
				Message:          fmt.Sprintf("locked, retry in %d seconds", remaining),
			}
		}
		// Lockout elapsed; reset and fall through to the check
		g.lockedAt = time.Time{}
		g.attempts = 0
	}

	if passphrase == g.secret {
		g.attempts = 0
		g.lockedAt = time.Time{}

		token := uuid.New().String()
		g.grants[token] = now

		util.AccessAttemptsTotal.WithLabelValues("granted").Inc()
		g.logger.Info("Kitchen access granted")
		return VerifyResult{
			Granted: true,
			Token:   token,
			Message: "access granted",
		}
	}

	g.attempts++
	util.AccessAttemptsTotal.WithLabelValues("denied").Inc()

	if g.attempts >= g.maxAttempts {
		g.lockedAt = now
		util.AccessLockoutsTotal.Inc()
		g.logger.Warn("Kitchen access locked", zap.Int("attempts", g.attempts))
		return VerifyResult{
			Locked:  true,
			Message: fmt.Sprintf("too many attempts, locked for %s", g.lockout),
		}
	}

	remaining := g.maxAttempts - g.attempts
	return VerifyResult{
		RemainingAttempts: remaining,
		Message:           fmt.Sprintf("wrong passphrase, %d attempts left", remaining),
	}
}

// HasAccess re-checks a grant against the access window. A grant older
// than the window is treated as absent and evicted.
func (g *AccessGate) HasAccess(token string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	grantedAt, ok := g.grants[token]
	if !ok {
		return false
	}
	if g.now().Sub(grantedAt) > g.window {
		delete(g.grants, token)
		return false
	}
	return true
}

// Logout clears a grant immediately, independent of the window
func (g *AccessGate) Logout(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.grants, token)
}

// ChangeSecret replaces the shared secret after verifying the old one
func (g *AccessGate) ChangeSecret(oldSecret, newSecret string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if oldSecret != g.secret {
		return errors.New("old secret does not match")
	}
	if len(newSecret) < 3 {
		return ErrSecretTooShort
	}

	g.secret = newSecret
	g.logger.Info("Kitchen secret changed")
	return nil
}
