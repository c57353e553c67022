package database

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	Close()

	// Queries returns the typed query set bound to the pool.
	Queries() Querier
}

type service struct {
	pool *pgxpool.Pool
	q    *Queries
}

// Queries implements Service.
func (s *service) Queries() Querier {
	return s.q
}

const healthTimeout = time.Second

var (
	databaseURL = os.Getenv("DATABASE_URL")
	database    = os.Getenv("BLUEPRINT_DB_DATABASE")
	password    = os.Getenv("BLUEPRINT_DB_PASSWORD")
	username    = os.Getenv("BLUEPRINT_DB_USERNAME")
	port        = os.Getenv("BLUEPRINT_DB_PORT")
	host        = os.Getenv("BLUEPRINT_DB_HOST")
	schema      = os.Getenv("BLUEPRINT_DB_SCHEMA")
	dbInstance  *service
)

// connString prefers a full DATABASE_URL (what the hosted Postgres hands out)
// and falls back to the individual BLUEPRINT_DB_* pieces.
func connString() string {
	if databaseURL != "" {
		return databaseURL
	}
	if schema == "" {
		schema = "public"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s", username, password, host, port, database, schema)
}

func NewService() Service {
	// Reuse Connection
	if dbInstance != nil {
		return dbInstance
	}

	pool, err := pgxpool.New(context.Background(), connString())
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to create connection pool")
	}

	dbInstance = &service{
		pool: pool,
		q:    New(pool),
	}
	return dbInstance
}

// Health pings the pool and reports its counters. Values are strings so the
// map can be dropped straight into a JSON response.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	if err := s.pool.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("Database ping failed")
		return map[string]string{
			"status": "down",
			"error":  fmt.Sprintf("db down: %v", err),
		}
	}

	st := s.pool.Stat()
	stats := map[string]string{
		"status":              "up",
		"total_conns":         strconv.Itoa(int(st.TotalConns())),
		"idle_conns":          strconv.Itoa(int(st.IdleConns())),
		"acquired_conns":      strconv.Itoa(int(st.AcquiredConns())),
		"max_conns":           strconv.Itoa(int(st.MaxConns())),
		"acquire_count":       strconv.FormatInt(st.AcquireCount(), 10),
		"acquire_duration_ms": strconv.FormatInt(st.AcquireDuration().Milliseconds(), 10),
		"empty_acquire_count": strconv.FormatInt(st.EmptyAcquireCount(), 10),
	}

	switch {
	case st.EmptyAcquireCount() > 0:
		stats["message"] = "Requests have waited on an empty pool; consider raising max connections."
	case st.AcquiredConns() > st.MaxConns()*8/10:
		stats["message"] = "The connection pool is above 80% utilisation."
	}

	return stats
}

// Close closes the connection pool.
func (s *service) Close() {
	log.Info().Str("database", database).Msg("Disconnected from database")
	s.pool.Close()
}
