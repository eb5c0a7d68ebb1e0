package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-portal/internal/config"
	"github.com/jonathan/job-portal/internal/server/middleware"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestJWTService(_ *testing.T, expirationHours int) *JWTService {
	return NewJWTService(&config.JWTConfig{
		Secret:          testSecret,
		ExpirationHours: expirationHours,
	})
}

func TestJWTService_GenerateToken(t *testing.T) {
	service := setupTestJWTService(t, 24)
	userID := uuid.New()

	token, err := service.GenerateToken(userID, middleware.RoleRecruiter)
	require.NoError(t, err)

	// Test token format is valid JWT (three parts separated by dots)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, middleware.RoleRecruiter, claims.Role)
	assert.Equal(t, middleware.RoleRecruiter, claims.GetRole())
	assert.Equal(t, userID, claims.GetUserID())
}

func TestJWTService_Expiration(t *testing.T) {
	tests := []struct {
		name            string
		expirationHours int
	}{
		{"1 hour expiration", 1},
		{"24 hours expiration", 24},
		{"48 hours expiration", 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := setupTestJWTService(t, tt.expirationHours)
			issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
			service.now = func() time.Time { return issued }

			token, err := service.GenerateToken(uuid.New(), "")
			require.NoError(t, err)

			claims, err := service.ValidateToken(token)
			require.NoError(t, err)
			assert.True(t, issued.Add(time.Duration(tt.expirationHours)*time.Hour).Equal(claims.ExpiresAt.Time))

			// Token should be invalid after expiration
			service.now = func() time.Time { return issued.Add(time.Duration(tt.expirationHours)*time.Hour + time.Minute) }
			_, err = service.ValidateToken(token)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "expired")
		})
	}
}

func TestJWTService_ValidateToken_InvalidSignature(t *testing.T) {
	service1 := setupTestJWTService(t, 24)
	service2 := NewJWTService(&config.JWTConfig{
		Secret:          "different-secret-key-for-jwt-signing-minimum-32-bytes",
		ExpirationHours: 24,
	})

	token, err := service1.GenerateToken(uuid.New(), middleware.RoleRecruiter)
	require.NoError(t, err)

	claims, err := service2.ValidateToken(token)
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.Contains(t, err.Error(), "signature")
}

func TestJWTService_ValidateToken_Malformed(t *testing.T) {
	service := setupTestJWTService(t, 24)

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"one part", "invalid"},
		{"two parts", "invalid.token"},
		{"four parts", "invalid.token.format.extra"},
		{"invalid base64", "invalid.base64.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_RejectsOtherAlgorithms(t *testing.T) {
	service := setupTestJWTService(t, 24)

	claims := &Claims{
		UserID: uuid.New(),
		Role:   middleware.RoleRecruiter,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = service.ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestJWTService_RequiresUserID(t *testing.T) {
	service := setupTestJWTService(t, 24)

	token, err := service.GenerateToken(uuid.Nil, middleware.RoleRecruiter)
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.ErrorContains(t, err, "user_id")
}

func TestJWTService_AsTokenValidator(t *testing.T) {
	service := setupTestJWTService(t, 24)
	userID := uuid.New()

	token, err := service.GenerateToken(userID, middleware.RoleRecruiter)
	require.NoError(t, err)

	principal, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, principal.GetUserID())
	assert.Equal(t, middleware.RoleRecruiter, principal.GetRole())

	_, err = service.AsTokenValidator().ValidateToken("bad")
	assert.Error(t, err)
}
