package models

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated caller as supplied by the identity provider.
// Metadata mirrors the provider's user_metadata (company_name, timezone, ...).
type Identity struct {
	ID       string                 `json:"id"`
	Email    string                 `json:"email,omitempty"`
	Metadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// MetadataString returns a trimmed string metadata value, or "" when the key
// is absent or not a string.
func (i *Identity) MetadataString(key string) string {
	if i == nil || i.Metadata == nil {
		return ""
	}
	v, ok := i.Metadata[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// AuthenticatedAudience is the audience the identity provider stamps on user access tokens
const AuthenticatedAudience = "authenticated"

// TokenClaims represents the JWT access token claims
type TokenClaims struct {
	Subject      string                 `json:"sub"`
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	Audience     string                 `json:"aud"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	Exp          int64                  `json:"exp"`
	Iat          int64                  `json:"iat"`
}

// Identity converts the claims to a caller identity
func (c *TokenClaims) Identity() *Identity {
	return &Identity{ID: c.Subject, Email: c.Email, Metadata: c.UserMetadata}
}

// GetExpirationTime implements jwt.Claims interface
func (c *TokenClaims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Exp, 0)), nil
}

// GetIssuedAt implements jwt.Claims interface
func (c *TokenClaims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Iat, 0)), nil
}

// GetNotBefore implements jwt.Claims interface
func (c *TokenClaims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

// GetIssuer implements jwt.Claims interface
func (c *TokenClaims) GetIssuer() (string, error) {
	return "", nil
}

// GetSubject implements jwt.Claims interface
func (c *TokenClaims) GetSubject() (string, error) {
	return c.Subject, nil
}

// GetAudience implements jwt.Claims interface
func (c *TokenClaims) GetAudience() (jwt.ClaimStrings, error) {
	if c.Audience == "" {
		return nil, nil
	}
	return jwt.ClaimStrings{c.Audience}, nil
}
