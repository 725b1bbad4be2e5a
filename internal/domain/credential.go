package domain

import "strings"

// CredentialPrefix is the literal tag every well-formed credential starts with.
const CredentialPrefix = "gsk_"

// Credential is the session's access secret. It is held in process memory only
// and formats itself redacted so it cannot leak through logs or %v.
type Credential struct {
	secret string
}

// NewCredential wraps an already validated secret.
func NewCredential(secret string) Credential {
	return Credential{secret: secret}
}

// Secret returns the raw value for the outbound request.
func (c Credential) Secret() string {
	return c.secret
}

// IsZero reports whether no secret is held.
func (c Credential) IsZero() bool {
	return c.secret == ""
}

// String implements fmt.Stringer with a redacted form.
func (c Credential) String() string {
	if c.secret == "" {
		return ""
	}
	tail := ""
	if len(c.secret) > len(CredentialPrefix)+4 {
		tail = c.secret[len(c.secret)-4:]
	}
	return CredentialPrefix + strings.Repeat("*", 4) + tail
}

// GoString keeps %#v redacted too.
func (c Credential) GoString() string {
	return "domain.Credential{" + c.String() + "}"
}
