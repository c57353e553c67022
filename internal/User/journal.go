package user

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"futureself/internal/database"
	"futureself/internal/geminiservice"
	"futureself/internal/utility"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 200
)

// ReflectionPrompts are the fixed journal prompts offered to every user.
var ReflectionPrompts = []string{
	"What decision are you facing that your future self would want you to consider carefully?",
	"If you met yourself 10 years from now, what would you want to ask them?",
	"What habits are you building today that will compound over time?",
	"What relationships deserve more of your attention and energy?",
	"What fears are holding you back from pursuing your dreams?",
	"How do you want to be remembered by the people who matter most?",
	"What would you regret not trying if you looked back 20 years from now?",
	"What brings you the most joy and fulfillment in your daily life?",
	"What advice would you give to someone facing the same challenges you are?",
	"How have you grown in the past year, and where do you want to grow next?",
}

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

type CreateJournalEntryRequest struct {
	Prompt  string `json:"prompt"`
	Content string `json:"content"`
	Mood    string `json:"mood"`
}

type UpdateJournalEntryRequest struct {
	Prompt  *string `json:"prompt"`
	Content *string `json:"content"`
	Mood    *string `json:"mood"`
}

type JournalEntryResponse struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ReflectionPromptsResponse struct {
	Prompts             []string `json:"prompts"`
	InsightfulQuestions []string `json:"insightfulQuestions"`
}

/* =================================================================================
								JOURNAL HANDLERS
=================================================================================*/

// CreateJournalEntryHandler handles POST /journal.
func CreateJournalEntryHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req CreateJournalEntryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Prompt is required"})
	}

	mood := database.JournalMoodReflective
	if req.Mood != "" {
		mood = database.JournalMood(req.Mood)
		if !mood.Valid() {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid mood"})
		}
	}

	entry, err := queries.CreateJournalEntry(ctx, database.CreateJournalEntryParams{
		EntryID: utility.NewPgtypeUUID(),
		UserID:  userID,
		Prompt:  prompt,
		Content: req.Content,
		Mood:    mood,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create journal entry")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create journal entry"})
	}

	return c.JSON(http.StatusCreated, mapToJournalEntryResponse(entry))
}

// GetJournalEntriesHandler handles GET /journal, newest first.
func GetJournalEntriesHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	limit := defaultJournalLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
		}
		limit = utility.Min(parsed, maxJournalLimit)
	}

	entries, err := queries.ListJournalEntries(ctx, database.ListJournalEntriesParams{
		UserID:     userID,
		LimitCount: int32(limit),
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list journal entries")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve journal entries"})
	}

	return c.JSON(http.StatusOK, mapToJournalEntryResponses(entries))
}

// GetJournalEntryHandler handles GET /journal/:entry_id.
func GetJournalEntryHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	entryID, err := utility.StringToPgtypeUUID(c.Param("entry_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid entry ID"})
	}

	entry, err := queries.GetJournalEntry(ctx, database.GetJournalEntryParams{EntryID: entryID, UserID: userID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Journal entry not found"})
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get journal entry")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve journal entry"})
	}

	return c.JSON(http.StatusOK, mapToJournalEntryResponse(entry))
}

// UpdateJournalEntryHandler handles PUT /journal/:entry_id.
func UpdateJournalEntryHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	entryID, err := utility.StringToPgtypeUUID(c.Param("entry_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid entry ID"})
	}

	var req UpdateJournalEntryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	params := database.UpdateJournalEntryParams{
		EntryID: entryID,
		UserID:  userID,
		Content: utility.TextPtr(req.Content),
	}
	if req.Prompt != nil {
		prompt := strings.TrimSpace(*req.Prompt)
		if prompt == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Prompt cannot be empty"})
		}
		params.Prompt = utility.TextPtr(&prompt)
	}
	if req.Mood != nil {
		if !database.JournalMood(*req.Mood).Valid() {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid mood"})
		}
		params.Mood = utility.TextPtr(req.Mood)
	}

	entry, err := queries.UpdateJournalEntry(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Journal entry not found"})
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update journal entry")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update journal entry"})
	}

	return c.JSON(http.StatusOK, mapToJournalEntryResponse(entry))
}

// DeleteJournalEntryHandler handles DELETE /journal/:entry_id.
func DeleteJournalEntryHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	entryID, err := utility.StringToPgtypeUUID(c.Param("entry_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid entry ID"})
	}

	deleted, err := queries.DeleteJournalEntry(ctx, database.DeleteJournalEntryParams{EntryID: entryID, UserID: userID})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to delete journal entry")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete journal entry"})
	}
	if deleted == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Journal entry not found"})
	}

	return c.NoContent(http.StatusNoContent)
}

// GetReflectionPromptsHandler handles GET /journal/prompts. Users who have not
// finished onboarding still get the questions, built from default phrases.
func GetReflectionPromptsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var profile geminiservice.UserProfile
	record, err := getProfile(ctx, userID)
	switch {
	case err == nil:
		profile = profileFromRecord(record)
	case errors.Is(err, pgx.ErrNoRows):
	default:
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load profile for prompts")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load profile"})
	}

	return c.JSON(http.StatusOK, ReflectionPromptsResponse{
		Prompts:             ReflectionPrompts,
		InsightfulQuestions: InsightfulQuestions(profile),
	})
}

/*=================================================================================
								HELPER FUNCTIONS
=================================================================================*/

// InsightfulQuestions returns the four profile-specific reflection questions.
func InsightfulQuestions(p geminiservice.UserProfile) []string {
	goal := "personal growth"
	if len(p.Goals) > 0 && strings.TrimSpace(p.Goals[0]) != "" {
		goal = p.Goals[0]
	}
	value := "growth"
	if len(p.Values) > 0 && strings.TrimSpace(p.Values[0]) != "" {
		value = p.Values[0]
	}

	return []string{
		fmt.Sprintf("Given your goal of %q, what small action could you take today?", goal),
		fmt.Sprintf("Your future self values %s. How can you honor this value this week?", value),
		"What would someone who has achieved your dream life advise you to focus on right now?",
		"If you had unlimited confidence, what would you do differently in your current situation?",
	}
}

func mapToJournalEntryResponse(e database.JournalEntry) JournalEntryResponse {
	id, _ := utility.PgtypeUUIDToString(e.EntryID)
	return JournalEntryResponse{
		ID:        id,
		Prompt:    e.Prompt,
		Content:   e.Content,
		Mood:      string(e.Mood),
		CreatedAt: e.CreatedAt.Time,
		UpdatedAt: e.UpdatedAt.Time,
	}
}

func mapToJournalEntryResponses(entries []database.JournalEntry) []JournalEntryResponse {
	out := make([]JournalEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, mapToJournalEntryResponse(e))
	}
	return out
}
