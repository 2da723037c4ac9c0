package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/cinemax-auth/internal/domain"
)

// ErrInvalidToken is returned for every malformed, forged or expired token.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Claims describes JWT payload.
type Claims struct {
	ID       int64             `json:"id"`
	Username string            `json:"username"`
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	UserType domain.UserType   `json:"userType"`
	Role     *domain.StaffRole `json:"rol,omitempty"`
	jwt.RegisteredClaims
}

// ClaimsFor projects an account into token claims. Role is only carried for staff.
func ClaimsFor(account *domain.Account) Claims {
	claims := Claims{
		ID:       account.ID,
		Username: account.Username,
		Name:     account.Name,
		Email:    account.Email,
		UserType: account.UserType,
	}
	if account.IsStaff() && account.Role != nil {
		role := *account.Role
		claims.Role = &role
	}
	return claims
}

// GenerateToken signs the claims with a fixed validity window from now.
func (tm *TokenManager) GenerateToken(claims Claims) (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates signature and expiry and returns the claims.
// The returned error wraps ErrInvalidToken whatever the underlying cause.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.UserType.Valid() || claims.ID <= 0 {
		return nil, fmt.Errorf("%w: unknown subject", ErrInvalidToken)
	}
	return claims, nil
}
