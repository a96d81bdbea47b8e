package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	// AdminCookie carries the admin token for browser sessions
	AdminCookie = "landing_admin"

	adminSubject = "admin"
	adminIssuer  = "dream-digital-landing"
	localsKey    = "admin_claims"
)

var (
	// ErrInvalidToken covers malformed, expired and mis-signed tokens
	ErrInvalidToken = errors.New("invalid admin token")
	// ErrInvalidPassword is returned when the operator password does not match
	ErrInvalidPassword = errors.New("invalid password")
)

// AdminClaims are the JWT claims of an operator token
type AdminClaims struct {
	jwt.RegisteredClaims
}

// tokenClock is the time source for token validation (can be replaced in tests)
var tokenClock = time.Now

// IssueAdminToken signs a HS256 operator token valid for ttl
func IssueAdminToken(secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := tokenClock()
	expires := now.Add(ttl)
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminSubject,
			Issuer:    adminIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseAdminToken validates raw and returns its claims
func ParseAdminToken(secret []byte, raw string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(adminIssuer),
		jwt.WithSubject(adminSubject),
		jwt.WithTimeFunc(tokenClock),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// CheckPassword compares password against the configured bcrypt hash
func CheckPassword(hash, password string) error {
	if hash == "" {
		return ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// HashPassword returns the bcrypt hash stored in admin.password_hash
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// AdminAuth guards the admin API. An empty secret disables the API entirely.
func AdminAuth(secret []byte) fiber.Handler {
	return func(c fiber.Ctx) error {
		if len(secret) == 0 {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Admin access is not configured",
			})
		}

		raw := extractAdminToken(c)
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing admin token",
			})
		}

		claims, err := ParseAdminToken(secret, raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired admin token",
			})
		}

		c.Locals(localsKey, claims)
		return c.Next()
	}
}

// GetAdminClaims returns the claims stored by AdminAuth
func GetAdminClaims(c fiber.Ctx) *AdminClaims {
	if claims, ok := c.Locals(localsKey).(*AdminClaims); ok {
		return claims
	}
	return nil
}

// extractAdminToken reads Authorization: Bearer <token>, then the admin cookie.
// Browsers cannot set headers on websocket upgrades, so the cookie is needed there.
func extractAdminToken(c fiber.Ctx) string {
	if authHeader := c.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return c.Cookies(AdminCookie)
}
