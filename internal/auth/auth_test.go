package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-length"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims JwtCustomClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(subject string) JwtCustomClaims {
	return JwtCustomClaims{
		Email: "alex@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{expectedAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func runMiddleware(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	jwtSecret = []byte(testSecret)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	called := false
	err := JwtAuthMiddleware(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	return rec, c, called
}

func TestJwtAuthMiddleware_AcceptsValidToken(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("user-1"))

	rec, c, called := runMiddleware(t, "Bearer "+token)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", c.Get("user_id"))
	assert.Equal(t, "alex@example.com", c.Get("user_email"))
}

func TestJwtAuthMiddleware_Rejects(t *testing.T) {
	expired := validClaims("user-1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongAudience := validClaims("user-1")
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"garbage":        "Bearer not-a-token",
		"wrong secret":   "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other-secret"), validClaims("user-1")),
		"expired":        "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired),
		"wrong audience": "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), wrongAudience),
		"no subject":     "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("")),
		"alg none":       "Bearer " + signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims("user-1")),
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec, _, called := runMiddleware(t, header)
			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestInitAuth_RequiresSecret(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "")
	assert.Error(t, InitAuth())

	t.Setenv("SUPABASE_JWT_SECRET", testSecret)
	require.NoError(t, InitAuth())
	assert.Equal(t, []byte(testSecret), jwtSecret)
}

func TestJwtAuthMiddleware_WithoutSecretRejects(t *testing.T) {
	t.Setenv("SUPABASE_JWT_SECRET", "")
	jwtSecret = nil
	require.Error(t, InitAuth())

	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("user-1"))
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	called := false
	err := JwtAuthMiddleware(func(c echo.Context) error {
		called = true
		return nil
	})(echo.New().NewContext(req, rec))
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
