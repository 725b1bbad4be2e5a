// Package credential guards submission behind a locally validated secret.
package credential

import (
	"strings"
	"sync"

	"github.com/doeshing/unlp/internal/domain"
)

// Gate holds the session credential in memory and reports whether submission is permitted.
type Gate struct {
	mu   sync.RWMutex
	cred domain.Credential
}

// NewGate returns a closed gate.
func NewGate() *Gate {
	return &Gate{}
}

// Validate checks the local format contract without touching any gate.
func Validate(raw string) (domain.Credential, error) {
	key := strings.TrimSpace(raw)
	if key == "" {
		return domain.Credential{}, &domain.FormatError{Reason: "API key is required"}
	}
	if !strings.HasPrefix(key, domain.CredentialPrefix) {
		return domain.Credential{}, &domain.FormatError{
			Reason: "Invalid API key format (should start with " + domain.CredentialPrefix + ")",
		}
	}
	return domain.NewCredential(key), nil
}

// Submit validates raw and, when well-formed, stores it and opens the gate.
// A rejected submission leaves the gate untouched.
func (g *Gate) Submit(raw string) (domain.Credential, error) {
	cred, err := Validate(raw)
	if err != nil {
		return domain.Credential{}, err
	}
	g.mu.Lock()
	g.cred = cred
	g.mu.Unlock()
	return cred, nil
}

// Close discards the stored credential and re-locks the gate.
func (g *Gate) Close() {
	g.mu.Lock()
	g.cred = domain.Credential{}
	g.mu.Unlock()
}

// IsOpen reports whether a credential is held.
func (g *Gate) IsOpen() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return !g.cred.IsZero()
}

// Credential returns the held credential and whether the gate is open.
func (g *Gate) Credential() (domain.Credential, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cred, !g.cred.IsZero()
}
