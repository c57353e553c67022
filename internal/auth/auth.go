/*
Package auth verifies access tokens minted by the external identity provider.
Sign-up, login and token refresh all happen at the provider; this service only
checks the signature and lifts the user id into the request context.
*/
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// expectedAudience is the audience the provider stamps on signed-in users.
const expectedAudience = "authenticated"

var jwtSecret []byte

// JwtCustomClaims are the claims the identity provider puts in its access tokens.
type JwtCustomClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// InitAuth loads the provider's signing secret from SUPABASE_JWT_SECRET.
func InitAuth() error {
	secret := os.Getenv("SUPABASE_JWT_SECRET")
	if secret == "" {
		return errors.New("SUPABASE_JWT_SECRET must be set")
	}
	jwtSecret = []byte(secret)
	log.Info().Msg("Auth initialized with identity provider secret")
	return nil
}

// JwtAuthMiddleware rejects requests without a valid bearer token and stores
// the token subject under "user_id" for the handlers.
func JwtAuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing bearer token"})
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := parseAccessToken(tokenString)
		if err != nil {
			log.Warn().Err(err).Msg("Token validation error")
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or expired token"})
		}

		c.Set("user_id", claims.Subject)
		c.Set("user_email", claims.Email)
		return next(c)
	}
}

func parseAccessToken(tokenString string) (*JwtCustomClaims, error) {
	if len(jwtSecret) == 0 {
		return nil, errors.New("auth is not initialized")
	}

	token, err := jwt.ParseWithClaims(tokenString, &JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	}, jwt.WithAudience(expectedAudience), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
