package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/bloghub/apiserver/types"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued token stays valid. There is no refresh
// mechanism; after expiry a new login is required.
const TokenTTL = 72 * time.Hour

var (
	// ErrTokenMissing is returned when no token was supplied.
	ErrTokenMissing = errors.New("token missing")

	// ErrTokenExpired is returned when the token is past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned when the signature does not verify or
	// the payload is malformed.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the identity snapshot embedded in a token. The username and
// email reflect the user at issuance time and are not refreshed until
// the token expires.
type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed identity tokens.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService constructs a TokenService signing with the given secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue signs a token carrying the user's identity, valid for TokenTTL.
func (s *TokenService) Issue(user types.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify decodes and validates a token. It distinguishes a missing
// token, an expired token, and an otherwise invalid one so callers can
// report a precise status without leaking signing material.
func (s *TokenService) Verify(tokenString string) (Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrTokenMissing
	}

	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if !token.Valid || claims.UserID < 1 {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}
