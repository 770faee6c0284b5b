// Package auth provides credential verification and session lifecycle for
// the operator-facing surface. Passwords are stored as bcrypt hashes and
// login attempts are throttled per username; the plaintext equality check of
// earlier deployments is available only behind an explicit dev-mode flag.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

var (
	// ErrInvalidCredentials is returned for an unknown user or wrong password.
	// The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrThrottled is returned when a username exceeds its attempt budget.
	ErrThrottled = errors.New("auth: too many attempts, retry later")
)

// Verifier checks a submitted credential pair.
type Verifier interface {
	Verify(ctx context.Context, username, password string) error
}

// StaticVerifier verifies against a configured username -> secret map.
type StaticVerifier struct {
	secrets   map[string]string
	plaintext bool

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// StaticOption mutates verifier construction.
type StaticOption func(*StaticVerifier)

// WithAttemptRate overrides the per-username attempt budget.
func WithAttemptRate(limit rate.Limit, burst int) StaticOption {
	return func(v *StaticVerifier) {
		v.limit = limit
		v.burst = burst
	}
}

// WithPlaintextSecrets treats the configured secrets as plaintext passwords
// compared in constant time. Local development only.
func WithPlaintextSecrets() StaticOption {
	return func(v *StaticVerifier) { v.plaintext = true }
}

// NewStaticVerifier constructs a verifier over the supplied secret map. By
// default secrets are bcrypt hashes and each username gets 5 attempts with a
// refill of one attempt per 10 seconds.
func NewStaticVerifier(secrets map[string]string, opts ...StaticOption) *StaticVerifier {
	v := &StaticVerifier{
		secrets:  make(map[string]string, len(secrets)),
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(0.1),
		burst:    5,
	}
	for user, secret := range secrets {
		v.secrets[user] = secret
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *StaticVerifier) limiter(username string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()
	lim, ok := v.limiters[username]
	if !ok {
		lim = rate.NewLimiter(v.limit, v.burst)
		v.limiters[username] = lim
	}
	return lim
}

// Verify checks the credential pair, consuming one attempt from the
// username's budget whether or not the pair matches.
func (v *StaticVerifier) Verify(_ context.Context, username, password string) error {
	if !v.limiter(username).Allow() {
		return ErrThrottled
	}
	secret, ok := v.secrets[username]
	if !ok {
		// Burn comparable work so unknown users cost the same as bad passwords.
		if v.plaintext {
			constantTimeEqual("missing", password)
		} else {
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoO"), []byte(password))
		}
		return ErrInvalidCredentials
	}
	if v.plaintext {
		if !constantTimeEqual(secret, password) {
			return ErrInvalidCredentials
		}
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(secret), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func constantTimeEqual(a, b string) bool {
	ah := sha256.Sum256([]byte(a))
	bh := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ah[:], bh[:]) == 1
}

// HashPassword produces a bcrypt hash suitable for the verifier's secret map.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
