// Task 1.4: Bearer identity tokens.
// Leaf package with no domain dependencies. Zeeky does not issue sessions —
// that lives in the identity service — but the API must resolve an opaque
// bearer credential into (caller id, trust level). GenerateToken exists for
// tests and local tooling.
package auth

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenExpiry is the default token lifetime in hours if not set via env.
const DefaultTokenExpiry = 24

const (
	envJWTSecret = "ZEEKY_JWT_SECRET"
	envJWTExpiry = "ZEEKY_JWT_EXPIRY"
)

// getJWTSecret reads ZEEKY_JWT_SECRET from environment. Panics if not set —
// identity resolution cannot run without a shared secret.
func getJWTSecret() []byte {
	secret := os.Getenv(envJWTSecret)
	if secret == "" {
		panic(envJWTSecret + " environment variable not set — cannot initialize auth")
	}
	return []byte(secret)
}

// parseExpiry parses an expiry string (hours) into a Duration.
// Extracted for testability — getExpiry is the env-reading wrapper.
// Returns DefaultTokenExpiry for empty or invalid input (graceful degradation).
func parseExpiry(expiryStr string) time.Duration {
	if expiryStr == "" {
		return time.Duration(DefaultTokenExpiry) * time.Hour
	}

	hours, err := strconv.Atoi(expiryStr)
	if err != nil {
		return time.Duration(DefaultTokenExpiry) * time.Hour
	}

	return time.Duration(hours) * time.Hour
}

func getExpiry() time.Duration {
	return parseExpiry(os.Getenv(envJWTExpiry))
}

// Claims carries the resolved caller identity.
// CallerID keys caller-scoped rate-limit buckets; TrustLevel gates the
// admin surface. Both are immutable for a request's lifetime.
type Claims struct {
	CallerID   string `json:"caller_id"`
	TrustLevel string `json:"trust_level"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed token with caller identity claims.
// Uses ZEEKY_JWT_SECRET from env and ZEEKY_JWT_EXPIRY (default 24 hours).
func GenerateToken(callerID, trustLevel string) (string, error) {
	now := time.Now()
	claims := &Claims{
		CallerID:   callerID,
		TrustLevel: trustLevel,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(getExpiry())),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(getJWTSecret())
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// ParseToken validates a bearer token and extracts the identity claims.
// Returns an error if the token is invalid, expired, or malformed.
func ParseToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method is HMAC-SHA256 (prevent algorithm substitution attacks)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return getJWTSecret(), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims or signature")
	}

	return claims, nil
}
