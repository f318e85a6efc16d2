package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrEmptySecret  = errors.New("empty signing secret")
)

// Prefixes of password records written before bcrypt was introduced.
var legacyPasswordPrefixes = []string{"hash:", "hashed:"}

const legacyTokenPrefix = "tk_"

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func GenerateToken(secret, userID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ParseToken(secret, raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseLegacyToken accepts the unsigned tk_<userId> form.
func ParseLegacyToken(raw string) (string, bool) {
	if !strings.HasPrefix(raw, legacyTokenPrefix) {
		return "", false
	}
	userID := strings.TrimPrefix(raw, legacyTokenPrefix)
	if userID == "" {
		return "", false
	}
	return userID, true
}

func LegacyToken(userID string) string {
	return legacyTokenPrefix + userID
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches stored, and whether stored
// is a legacy record that should be rehashed.
func CheckPassword(stored, password string) (ok bool, legacy bool) {
	for _, prefix := range legacyPasswordPrefixes {
		if strings.HasPrefix(stored, prefix) {
			plain := strings.TrimPrefix(stored, prefix)
			return subtle.ConstantTimeCompare([]byte(plain), []byte(password)) == 1, true
		}
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil, false
}
