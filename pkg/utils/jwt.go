package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"company-workspace-backend/pkg/models"
)

// DefaultAccessTokenTTL matches the identity provider's default session length
const DefaultAccessTokenTTL = time.Hour

// JWTService signs and verifies HS256 access tokens shared with the identity
// provider.
type JWTService struct {
	secretKey []byte
}

func NewJWTService(secretKey string) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
	}
}

// GenerateAccessToken issues a provider-style access token for identity.
// Used by local tooling; production tokens come from the provider.
func (j *JWTService) GenerateAccessToken(identity *models.Identity, ttl time.Duration) (string, int64, error) {
	if identity == nil || identity.ID == "" {
		return "", 0, fmt.Errorf("identity with an id is required")
	}
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	now := time.Now()
	expiry := now.Add(ttl)

	claims := &models.TokenClaims{
		Subject:      identity.ID,
		Email:        identity.Email,
		Role:         models.AuthenticatedAudience,
		Audience:     models.AuthenticatedAudience,
		UserMetadata: identity.Metadata,
		Exp:          expiry.Unix(),
		Iat:          now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", 0, fmt.Errorf("failed to generate access token: %w", err)
	}

	return tokenString, expiry.Unix(), nil
}

// ValidateToken verifies the signature, expiry and audience of an access token
func (j *JWTService) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithAudience(models.AuthenticatedAudience), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return claims, nil
}

// ExtractIdentity validates tokenString and returns the caller it names
func (j *JWTService) ExtractIdentity(tokenString string) (*models.Identity, error) {
	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims.Identity(), nil
}
