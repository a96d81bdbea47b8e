package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

var testSecret = []byte("test-secret-with-enough-entropy")

func stubTokenClock(t *testing.T, now time.Time) {
	t.Helper()
	original := tokenClock
	tokenClock = func() time.Time { return now }
	t.Cleanup(func() {
		tokenClock = original
	})
}

func newAdminTestApp(secret []byte) *fiber.App {
	app := fiber.New()
	app.Use(AdminAuth(secret))
	app.Get("/", func(c fiber.Ctx) error {
		if GetAdminClaims(c) == nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestAdminAuthMissingToken(t *testing.T) {
	app := newAdminTestApp(testSecret)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Missing admin token")
}

func TestAdminAuthNotConfigured(t *testing.T) {
	app := newAdminTestApp(nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestAdminAuthBearerToken(t *testing.T) {
	token, _, err := IssueAdminToken(testSecret, time.Hour)
	require.NoError(t, err)

	app := newAdminTestApp(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminAuthCookieToken(t *testing.T) {
	token, _, err := IssueAdminToken(testSecret, time.Hour)
	require.NoError(t, err)

	app := newAdminTestApp(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AdminCookie, Value: token})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAdminAuthWrongSecret(t *testing.T) {
	token, _, err := IssueAdminToken([]byte("another-secret"), time.Hour)
	require.NoError(t, err)

	app := newAdminTestApp(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Invalid or expired admin token")
}

func TestParseAdminTokenExpired(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	stubTokenClock(t, issued)
	token, expires, err := IssueAdminToken(testSecret, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), expires)

	stubTokenClock(t, issued.Add(30*time.Minute))
	_, err = ParseAdminToken(testSecret, token)
	require.NoError(t, err)

	stubTokenClock(t, issued.Add(2*time.Hour))
	_, err = ParseAdminToken(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAdminTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		Issuer:    adminIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseAdminToken(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAdminTokenWrongSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "visitor",
		Issuer:    adminIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = ParseAdminToken(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.NoError(t, CheckPassword(hash, "s3cret"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrInvalidPassword)
	assert.ErrorIs(t, CheckPassword("", "s3cret"), ErrInvalidPassword)
}

func TestGetAdminClaimsWithoutAuth(t *testing.T) {
	app := fiber.New()
	ctx := app.AcquireCtx(&fasthttp.RequestCtx{})
	defer app.ReleaseCtx(ctx)

	assert.Nil(t, GetAdminClaims(ctx))
}
