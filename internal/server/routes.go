package server

import (
	"math"
	"net/http"
	"time"

	user "futureself/internal/User"
	"futureself/internal/auth"
	"futureself/internal/utility"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.IPExtractor = s.ipExtractor()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"authorization", "x-client-info", "apikey", "content-type"},
		MaxAge:       300,
	}))

	e.Use(LoggerMiddleware)

	e.GET("/health", s.healthHandler)

	// Chat relay: open to anonymous callers, throttled per client IP.
	chatLimiter := s.chatRateLimiter()
	e.POST("/chat-with-future-self", user.ChatWithFutureSelfHandler, chatLimiter)
	e.GET("/chat/ws", user.ChatSocketHandler, chatLimiter)

	// Protected routes
	protected := e.Group("")
	protected.Use(auth.JwtAuthMiddleware)

	// Onboarding & Profile Routes
	protected.POST("/profile", user.CreateProfileHandler)
	protected.GET("/profile", user.GetProfileHandler)
	protected.PUT("/profile", user.UpdateProfileHandler)
	protected.DELETE("/profile", user.DeleteProfileHandler)

	// Reflection Journal Routes
	protected.GET("/journal/prompts", user.GetReflectionPromptsHandler)
	protected.POST("/journal", user.CreateJournalEntryHandler)
	protected.GET("/journal", user.GetJournalEntriesHandler)
	protected.GET("/journal/:entry_id", user.GetJournalEntryHandler)
	protected.PUT("/journal/:entry_id", user.UpdateJournalEntryHandler)
	protected.DELETE("/journal/:entry_id", user.DeleteJournalEntryHandler)

	// Life Path & Dashboard Routes
	protected.GET("/life-paths", user.GetLifePathsHandler)
	protected.GET("/life-paths/:scenario", user.GetLifePathScenarioHandler)
	protected.GET("/dashboard", user.GetDashboardHandler)
	protected.GET("/chat/greeting", user.ChatGreetingHandler)

	// Resource Library Routes
	protected.GET("/resources", user.GetResourcesHandler)
	protected.GET("/resources/:category", user.GetResourceCategoryHandler)

	return e
}

// chatRateLimiter throttles the HTTP relay and the socket upgrade by client IP.
func (s *Server) chatRateLimiter() echo.MiddlewareFunc {
	limit := s.chatRateLimit
	if limit <= 0 {
		limit = defaultChatRateLimit
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(limit),
			Burst:     int(math.Ceil(limit)),
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Unable to identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			utility.LoggerFromContext(c).Warn().Str("client_ip", identifier).Msg("Chat rate limit exceeded")
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests, please slow down"})
		},
	})
}

// LoggerMiddleware tags every request with an X-Request-ID and stores a
// request-scoped logger under "logger".
func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)

		logger := log.With().Str("request_id", requestID).Logger()
		c.Set("logger", &logger)

		return next(c)
	}
}
