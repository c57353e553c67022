package utility

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConfigureLogger sets the global zerolog level from LOG_LEVEL and switches to
// human-readable console output when APP_ENV is "development".
func ConfigureLogger() {
	level, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL")))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// LoggerFromContext returns the request-scoped logger set by LoggerMiddleware,
// or the global logger outside of a request.
func LoggerFromContext(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get("logger").(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return &log.Logger
}

// GetUserIDFromContext safely retrieves user ID from Echo context
func GetUserIDFromContext(c echo.Context) (string, error) {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

func StringToPgtypeUUID(s string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("failed to parse UUID: %w", err)
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func PgtypeUUIDToString(pgtypeUUID pgtype.UUID) (string, error) {
	if !pgtypeUUID.Valid {
		return "", fmt.Errorf("invalid UUID")
	}

	UUID, err := uuid.FromBytes(pgtypeUUID.Bytes[:])
	if err != nil {
		return "", fmt.Errorf("failed to parse UUID: %w", err)
	}

	return UUID.String(), nil
}

// NewPgtypeUUID returns a fresh random UUID ready for insertion.
func NewPgtypeUUID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

// TextOrEmpty unwraps a nullable text column.
func TextOrEmpty(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

// NullableText maps "" to NULL.
func NullableText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

// TextPtr maps nil to NULL and keeps empty strings.
func TextPtr(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func Int4Ptr(v *int) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*v), Valid: true}
}

func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
