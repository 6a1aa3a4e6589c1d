package transsmart

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultTokenLifetime is the lifetime assumed for a token when the provider does not
// report one. Tokens are valid for 24 hours; five minutes are kept in reserve.
const DefaultTokenLifetime = 23*time.Hour + 55*time.Minute

// Token is an issued bearer token and the instant it stops being usable.
// The zero value is an absent token.
type Token struct {
	value     string
	expiresAt time.Time
}

// NewToken creates a token that expires DefaultTokenLifetime from now.
func NewToken(value string) Token {
	return NewTokenExpiring(value, time.Now().Add(DefaultTokenLifetime))
}

// NewTokenExpiring creates a token with an explicit expiry.
func NewTokenExpiring(value string, expiresAt time.Time) Token {
	return Token{value: value, expiresAt: expiresAt}
}

// Value returns the bearer credential.
func (t Token) Value() string {
	return t.value
}

// ExpiresAt returns the expiry instant.
func (t Token) ExpiresAt() time.Time {
	return t.expiresAt
}

// IsZero reports whether the token is absent.
func (t Token) IsZero() bool {
	return t.value == ""
}

// IsExpired reports whether now is at or past the expiry instant.
func (t Token) IsExpired(now time.Time) bool {
	return !now.Before(t.expiresAt)
}

// Remaining returns the time left until expiry. It is negative once expired.
func (t Token) Remaining(now time.Time) time.Duration {
	return t.expiresAt.Sub(now)
}

// usable reports whether the token may be attached to a request at now.
func (t Token) usable(now time.Time) bool {
	return !t.IsZero() && !t.IsExpired(now)
}

type tokenJSON struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MarshalJSON encodes the token for a TokenStore.
func (t Token) MarshalJSON() ([]byte, error) {
	return json.Marshal(tokenJSON{Token: t.value, ExpiresAt: t.expiresAt})
}

// UnmarshalJSON decodes a token written by MarshalJSON.
func (t *Token) UnmarshalJSON(data []byte) error {
	var raw tokenJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode token: %w", err)
	}
	if raw.Token == "" {
		return fmt.Errorf("failed to decode token: empty value")
	}
	*t = Token{value: raw.Token, expiresAt: raw.ExpiresAt}
	return nil
}
