package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/cinemax-auth/internal/domain"
)

func staffAccount() *domain.Account {
	role := domain.StaffRoleManager
	return &domain.Account{
		ID:       7,
		UserType: domain.UserTypeStaff,
		Username: "mariagerente",
		Name:     "María González",
		Email:    "maria.gonzalez@cinemax.com",
		Role:     &role,
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 24*time.Hour)

	token, exp, err := tm.GenerateToken(ClaimsFor(staffAccount()))
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.ID)
	assert.Equal(t, "mariagerente", claims.Username)
	assert.Equal(t, domain.UserTypeStaff, claims.UserType)
	require.NotNil(t, claims.Role)
	assert.Equal(t, domain.StaffRoleManager, *claims.Role)
}

func TestClaimsForCustomerOmitsRole(t *testing.T) {
	role := domain.StaffRoleAdmin
	customer := &domain.Account{ID: 3, UserType: domain.UserTypeCustomer, Username: "anagp", Role: &role}

	claims := ClaimsFor(customer)
	assert.Nil(t, claims.Role)
}

func TestParseTokenRejectsUniformly(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	valid, _, err := tm.GenerateToken(ClaimsFor(staffAccount()))
	require.NoError(t, err)

	forged, _, err := NewTokenManager("other-secret", time.Hour).GenerateToken(ClaimsFor(staffAccount()))
	require.NoError(t, err)

	expiredMgr := NewTokenManager("test-secret", time.Hour)
	expiredMgr.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredMgr.GenerateToken(ClaimsFor(staffAccount()))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{ID: 7, UserType: domain.UserTypeStaff}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	for name, token := range map[string]string{
		"altered secret": forged,
		"expired":        expired,
		"alg none":       none,
		"malformed":      "not-a-jwt",
		"tampered":       tampered,
		"empty":          "",
	} {
		t.Run(name, func(t *testing.T) {
			claims, err := tm.ParseToken(token)
			assert.Nil(t, claims)
			assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
		})
	}
}

func TestParseTokenRequiresKnownSubject(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	token, _, err := tm.GenerateToken(Claims{ID: 1, Username: "ghost", UserType: "visitante"})
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
