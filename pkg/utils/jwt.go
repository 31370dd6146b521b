package utils

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tokens are issued by the auth service; this process only verifies them.
// GenerateJWT exists for local tooling and tests.

const accessTokenCookie = "accessToken"

var (
	ErrNoToken        = errors.New("no access token")
	errSecretNotSet   = errors.New("jwt secret not set")
	errMissingSubject = errors.New("token has no subject")
)

var secretKey []byte

func SetSecret(key string) {
	secretKey = []byte(key)
}

// Claims carried by access tokens. Subject is the user id.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string { return c.Subject }

func GenerateJWT(userID, email, role string, expiry time.Duration) (string, error) {
	if len(secretKey) == 0 {
		return "", errSecretNotSet
	}
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
}

// ValidateJWT checks the HS256 signature and expiry and requires a subject.
func ValidateJWT(tokenString string) (*Claims, error) {
	if len(secretKey) == 0 {
		return nil, errSecretNotSet
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errMissingSubject
	}
	return claims, nil
}

// TokenFromRequest reads a bearer token from the Authorization header, then
// the access token cookie.
func TokenFromRequest(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return token
	}
	if cookie, err := r.Cookie(accessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func ExtractClaims(r *http.Request) (*Claims, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, ErrNoToken
	}
	return ValidateJWT(token)
}
