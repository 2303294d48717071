package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const TokenTypeBearer = "bearer"

// Claims is the signed token body. Only sub, iat and exp are load-bearing;
// username and email are informational.
type Claims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type TokenService struct {
	Secret     []byte
	Method     *jwt.SigningMethodHMAC
	AccessTTL  time.Duration
	BcryptCost int
	// Now is overridable in tests.
	Now func() time.Time
}

func NewTokenService(secret, algorithm string, ttl time.Duration) (TokenService, error) {
	method, ok := jwt.GetSigningMethod(strings.ToUpper(algorithm)).(*jwt.SigningMethodHMAC)
	if !ok {
		return TokenService{}, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	return TokenService{
		Secret:     []byte(secret),
		Method:     method,
		AccessTTL:  ttl,
		BcryptCost: bcrypt.DefaultCost,
	}, nil
}

func (t TokenService) now() time.Time {
	if t.Now != nil {
		return t.Now().UTC()
	}
	return time.Now().UTC()
}

func (t TokenService) HashPassword(raw string) (string, error) {
	cost := t.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword compares in constant time with respect to the digest.
func (t TokenService) VerifyPassword(raw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(raw)) == nil
}

// CreateAccessToken mints a token for userID. A zero ttl uses AccessTTL.
func (t TokenService) CreateAccessToken(userID, username, email string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = t.AccessTTL
	}
	now := t.now().Truncate(time.Second)
	exp := now.Add(ttl)
	claims := Claims{
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(t.Method, claims).SignedString(t.Secret)
	return signed, exp, err
}

// ParseToken validates signature, algorithm and expiry. Every failure is
// reported as Unauthenticated.
func (t TokenService) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.Secret, nil
	},
		jwt.WithValidMethods([]string{t.Method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrUnauthenticated("token expired")
		}
		return nil, ErrUnauthenticated("could not validate credentials")
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrUnauthenticated("could not validate credentials")
	}
	return claims, nil
}
