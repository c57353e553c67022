/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and manages
core service dependencies like the database, the Gemini client and the router.
*/
package server

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	user "futureself/internal/User"
	"futureself/internal/database"
	"futureself/internal/geminiservice"
	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const (
	defaultChatRateLimit = 5

	// writeTimeout must outlast the Gemini call so a timed-out relay can
	// still answer with its JSON error.
	writeTimeout = geminiservice.RequestTimeout + 10*time.Second
)

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	// db provides access to the database service and connection pool.
	db database.Service

	// chatRateLimit is the per-IP requests/second allowed on chat endpoints.
	chatRateLimit float64

	// trustedProxies are the only peers whose X-Forwarded-For is believed.
	trustedProxies []*net.IPNet

	// Echo is the underlying web framework instance.
	*echo.Echo
}

// NewServer initializes a new Server instance and returns a configured *http.Server.
// It reads configuration from environment variables and sets production-ready
// network timeouts.
func NewServer() *http.Server {
	// Attempt to parse port from environment; fallback to 8080 if not set or invalid.
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port == 0 {
		port = 8080
	}

	newApp := &Server{
		port:          port,
		db:            database.NewService(),
		chatRateLimit: chatRateLimitFromEnv(),
	}

	newApp.trustedProxies, err = trustedProxiesFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid TRUSTED_PROXIES")
	}

	user.InitUserPackage(newApp.db.Queries(), geminiservice.NewClient())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", newApp.port),
		Handler:      newApp.RegisterRoutes(), // Injected from routes.go
		IdleTimeout:  time.Minute,             // Time to wait for the next request on keep-alive connections.
		ReadTimeout:  10 * time.Second,        // Maximum duration for reading the entire request.
		WriteTimeout: writeTimeout,            // Covers the Gemini round trip on chat requests.
	}

	return server
}

// chatRateLimitFromEnv reads CHAT_RATE_LIMIT, falling back to the default
// when it is unset or not a positive number.
func chatRateLimitFromEnv() float64 {
	limit, err := strconv.ParseFloat(os.Getenv("CHAT_RATE_LIMIT"), 64)
	if err != nil || limit <= 0 {
		return defaultChatRateLimit
	}
	return limit
}

// trustedProxiesFromEnv parses TRUSTED_PROXIES, a comma separated list of
// CIDRs or bare IPs.
func trustedProxiesFromEnv() ([]*net.IPNet, error) {
	var ranges []*net.IPNet
	for _, entry := range strings.Split(os.Getenv("TRUSTED_PROXIES"), ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			if ip := net.ParseIP(entry); ip != nil && ip.To4() != nil {
				entry += "/32"
			} else {
				entry += "/128"
			}
		}
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("parse trusted proxy %q: %w", entry, err)
		}
		ranges = append(ranges, ipNet)
	}
	return ranges, nil
}

// ipExtractor uses the socket peer unless proxies are configured, in which
// case X-Forwarded-For is walked back only through those proxies.
func (s *Server) ipExtractor() echo.IPExtractor {
	if len(s.trustedProxies) == 0 {
		return echo.ExtractIPDirect()
	}

	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, ipNet := range s.trustedProxies {
		options = append(options, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(options...)
}
