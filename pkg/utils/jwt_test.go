package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"company-workspace-backend/pkg/models"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")
	identity := &models.Identity{
		ID:       "user-1",
		Email:    "a@acme.com",
		Metadata: map[string]interface{}{"company_name": "Acme", "timezone": "Europe/Paris"},
	}

	token, exp, err := svc.GenerateAccessToken(identity, time.Minute)
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	got, err := svc.ExtractIdentity(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)
	assert.Equal(t, "a@acme.com", got.Email)
	assert.Equal(t, "Acme", got.MetadataString("company_name"))
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("test-secret")

	sign := func(claims *models.TokenClaims, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	now := time.Now()
	valid := func() *models.TokenClaims {
		return &models.TokenClaims{
			Subject:  "user-1",
			Audience: models.AuthenticatedAudience,
			Exp:      now.Add(time.Minute).Unix(),
			Iat:      now.Unix(),
		}
	}

	t.Run("wrong secret", func(t *testing.T) {
		_, err := svc.ValidateToken(sign(valid(), "other"))
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		c := valid()
		c.Exp = now.Add(-time.Minute).Unix()
		_, err := svc.ValidateToken(sign(c, "test-secret"))
		assert.Error(t, err)
	})

	t.Run("wrong audience", func(t *testing.T) {
		c := valid()
		c.Audience = "service_role"
		_, err := svc.ValidateToken(sign(c, "test-secret"))
		assert.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		c := valid()
		c.Subject = ""
		_, err := svc.ValidateToken(sign(c, "test-secret"))
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.Error(t, err)
	})

	t.Run("no identity", func(t *testing.T) {
		_, _, err := svc.GenerateAccessToken(nil, time.Minute)
		assert.Error(t, err)
	})
}

func TestValidateStruct(t *testing.T) {
	type req struct {
		Email string `json:"email" validate:"required,email"`
		Role  string `json:"role" validate:"omitempty,oneof=admin user"`
	}

	assert.NoError(t, ValidateStruct(req{Email: "a@acme.com"}))

	err := ValidateStruct(req{Email: "nope", Role: "owner"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email: failed email")
	assert.Contains(t, err.Error(), "role: failed oneof=admin user")
}
