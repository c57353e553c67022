/*
Package user implements the signed-in surfaces of the future-self app:
onboarding and profile editing, the reflection journal, life-path scenarios,
the dashboard aggregate and the chat relay to the future-self persona.
*/
package user

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"futureself/internal/database"
	"futureself/internal/geminiservice"
	"futureself/internal/utility"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const profileCacheSize = 1024

var (
	queries      database.Querier
	replyClient  *geminiservice.Client
	profileCache *lru.Cache[string, database.Profile]

	// profileGen moves on every profile write. A read that started under an
	// older generation does not populate the cache.
	profileGen   uint64
	profileGenMu sync.Mutex
)

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

// UpdateProfileRequest carries a partial profile edit. Nil fields are left as
// stored. ClearFutureAge puts futureAge back to its age+10 default.
type UpdateProfileRequest struct {
	Name               *string  `json:"name"`
	Age                *int     `json:"age"`
	FutureAge          *int     `json:"futureAge"`
	CurrentCareer      *string  `json:"currentCareer"`
	Location           *string  `json:"location"`
	RelationshipStatus *string  `json:"relationshipStatus"`
	FinancialSituation *string  `json:"financialSituation"`
	Goals              []string `json:"goals"`
	Values             []string `json:"values"`
	HealthPriorities   []string `json:"healthPriorities"`
	DreamScenario      *string  `json:"dreamScenario"`
	ClearFutureAge     bool     `json:"clearFutureAge"`
}

// ProfileResponse is the stored profile in the shape the chat client sends back.
type ProfileResponse struct {
	geminiservice.UserProfile
	YearsAhead int       `json:"yearsAhead"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

/* =================================================================================
								INITIALIZATION
=================================================================================*/

// InitUserPackage wires the query set and the Gemini client used by the handlers.
func InitUserPackage(q database.Querier, client *geminiservice.Client) {
	queries = q
	replyClient = client

	cache, err := lru.New[string, database.Profile](profileCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create profile cache")
	}
	profileCache = cache

	log.Info().Msg("User package initialized.")
}

/* =================================================================================
								PROFILE HANDLERS
=================================================================================*/

// CreateProfileHandler handles POST /profile, the end of onboarding. It stores
// the full profile, replacing any earlier one.
func CreateProfileHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req geminiservice.UserProfile
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if msg := validateProfile(req.Name, req.Age, req.FutureAge); msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}

	profile, err := queries.UpsertProfile(ctx, database.UpsertProfileParams{
		ID:                 userID,
		Name:               strings.TrimSpace(req.Name),
		Age:                int32(req.Age),
		FutureAge:          utility.Int4Ptr(req.FutureAge),
		CurrentCareer:      utility.NullableText(req.CurrentCareer),
		Location:           utility.NullableText(req.Location),
		RelationshipStatus: utility.NullableText(req.RelationshipStatus),
		FinancialSituation: utility.NullableText(req.FinancialSituation),
		Goals:              cleanList(req.Goals),
		CoreValues:         cleanList(req.Values),
		HealthPriorities:   cleanList(req.HealthPriorities),
		DreamScenario:      utility.NullableText(req.DreamScenario),
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to save profile")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save profile"})
	}

	invalidateProfile(userID)
	return c.JSON(http.StatusOK, mapToProfileResponse(profile))
}

// GetProfileHandler handles GET /profile.
func GetProfileHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	profile, err := getProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Profile not found"})
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load profile")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load profile"})
	}

	return c.JSON(http.StatusOK, mapToProfileResponse(profile))
}

// UpdateProfileHandler handles PUT /profile.
func UpdateProfileHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name cannot be empty"})
	}
	if req.Age != nil && !validAge(*req.Age) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Age must be between 1 and 120"})
	}
	if req.FutureAge != nil && !validFutureAge(*req.FutureAge) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Future age must be between 1 and 150"})
	}
	if req.FutureAge != nil && req.ClearFutureAge {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Cannot set and clear future age together"})
	}

	params := database.UpdateProfileParams{
		ID:                 userID,
		Age:                utility.Int4Ptr(req.Age),
		FutureAge:          utility.Int4Ptr(req.FutureAge),
		CurrentCareer:      utility.TextPtr(req.CurrentCareer),
		Location:           utility.TextPtr(req.Location),
		RelationshipStatus: utility.TextPtr(req.RelationshipStatus),
		FinancialSituation: utility.TextPtr(req.FinancialSituation),
		DreamScenario:      utility.TextPtr(req.DreamScenario),
		ClearFutureAge:     req.ClearFutureAge,
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		params.Name = utility.TextPtr(&trimmed)
	}
	// A nil slice leaves the column alone; an empty one clears it.
	if req.Goals != nil {
		params.Goals = cleanList(req.Goals)
	}
	if req.Values != nil {
		params.CoreValues = cleanList(req.Values)
	}
	if req.HealthPriorities != nil {
		params.HealthPriorities = cleanList(req.HealthPriorities)
	}

	profile, err := queries.UpdateProfile(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Profile not found"})
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update profile"})
	}

	invalidateProfile(userID)
	return c.JSON(http.StatusOK, mapToProfileResponse(profile))
}

// DeleteProfileHandler handles DELETE /profile. Journal entries go with it.
func DeleteProfileHandler(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	deleted, err := queries.DeleteProfile(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to delete profile")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete profile"})
	}
	invalidateProfile(userID)

	if deleted == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Profile not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

/*=================================================================================
								HELPER FUNCTIONS
=================================================================================*/

// getProfile reads through the LRU cache.
func getProfile(ctx context.Context, userID string) (database.Profile, error) {
	if profile, ok := profileCache.Get(userID); ok {
		return profile, nil
	}

	profileGenMu.Lock()
	gen := profileGen
	profileGenMu.Unlock()

	profile, err := queries.GetProfile(ctx, userID)
	if err != nil {
		return database.Profile{}, err
	}

	profileGenMu.Lock()
	if gen == profileGen {
		profileCache.Add(userID, profile)
	}
	profileGenMu.Unlock()
	return profile, nil
}

// invalidateProfile drops the cached row after a write.
func invalidateProfile(userID string) {
	profileGenMu.Lock()
	defer profileGenMu.Unlock()
	profileGen++
	profileCache.Remove(userID)
}

// profileFromRecord converts a stored row into the persona input.
func profileFromRecord(p database.Profile) geminiservice.UserProfile {
	profile := geminiservice.UserProfile{
		Name:               p.Name,
		Age:                int(p.Age),
		CurrentCareer:      utility.TextOrEmpty(p.CurrentCareer),
		Location:           utility.TextOrEmpty(p.Location),
		RelationshipStatus: utility.TextOrEmpty(p.RelationshipStatus),
		FinancialSituation: utility.TextOrEmpty(p.FinancialSituation),
		Goals:              nonNil(p.Goals),
		Values:             nonNil(p.CoreValues),
		HealthPriorities:   nonNil(p.HealthPriorities),
		DreamScenario:      utility.TextOrEmpty(p.DreamScenario),
	}
	if p.FutureAge.Valid {
		futureAge := int(p.FutureAge.Int32)
		profile.FutureAge = &futureAge
	}
	return profile
}

func mapToProfileResponse(p database.Profile) ProfileResponse {
	profile := profileFromRecord(p)
	return ProfileResponse{
		UserProfile: profile,
		YearsAhead:  geminiservice.YearsAhead(profile),
		CreatedAt:   p.CreatedAt.Time,
		UpdatedAt:   p.UpdatedAt.Time,
	}
}

func validateProfile(name string, age int, futureAge *int) string {
	if strings.TrimSpace(name) == "" {
		return "Name is required"
	}
	if !validAge(age) {
		return "Age must be between 1 and 120"
	}
	if futureAge != nil && !validFutureAge(*futureAge) {
		return "Future age must be between 1 and 150"
	}
	return ""
}

func validAge(age int) bool { return age >= 1 && age <= 120 }

func validFutureAge(age int) bool { return age >= 1 && age <= 150 }

// cleanList trims entries and drops blanks, keeping order.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
