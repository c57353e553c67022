package user

import (
	"errors"
	"net/http"

	"futureself/internal/database"
	"futureself/internal/utility"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardGoalCount    = 3
	dashboardJournalCount = 5
)

type GoalSummary struct {
	Goals     []string `json:"goals"`
	Remaining int      `json:"remaining"`
}

type DashboardResponse struct {
	Profile       ProfileResponse        `json:"profile"`
	GoalSummary   GoalSummary            `json:"goalSummary"`
	RecentJournal []JournalEntryResponse `json:"recentJournal"`
	LifeBalance   []BalanceSlice         `json:"lifeBalance"`
}

// GetDashboardHandler handles GET /dashboard. Profile and recent journal
// entries are fetched concurrently.
func GetDashboardHandler(c echo.Context) error {
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var (
		profile database.Profile
		entries []database.JournalEntry
	)

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		p, err := getProfile(ctx, userID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		e, err := queries.ListJournalEntries(ctx, database.ListJournalEntriesParams{
			UserID:     userID,
			LimitCount: dashboardJournalCount,
		})
		if err != nil {
			return err
		}
		entries = e
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Profile not found"})
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to build dashboard")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load dashboard"})
	}

	return c.JSON(http.StatusOK, DashboardResponse{
		Profile:       mapToProfileResponse(profile),
		GoalSummary:   SummarizeGoals(profile.Goals),
		RecentJournal: mapToJournalEntryResponses(entries),
		LifeBalance:   LifeBalance,
	})
}

// SummarizeGoals keeps the first three goals and counts the rest.
func SummarizeGoals(goals []string) GoalSummary {
	shown := goals[:utility.Min(len(goals), dashboardGoalCount)]
	return GoalSummary{
		Goals:     append([]string{}, shown...),
		Remaining: len(goals) - len(shown),
	}
}
