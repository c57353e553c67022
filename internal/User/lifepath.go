package user

import (
	"errors"
	"net/http"

	"futureself/internal/utility"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

/* =================================================================================
							DTOs (Data Transfer Objects)
=================================================================================*/

type Milestone struct {
	Age      int    `json:"age"`
	Event    string `json:"event"`
	Category string `json:"category"`
}

type LifePathScenario struct {
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Milestones  []Milestone `json:"milestones"`
}

type LifeArea struct {
	Name    string `json:"name"`
	Current int    `json:"current"`
	Future  int    `json:"future"`
}

type BalanceSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

type LifePathsResponse struct {
	CurrentAge     int                `json:"currentAge"`
	Scenarios      []LifePathScenario `json:"scenarios"`
	LifeAreas      []LifeArea         `json:"lifeAreas"`
	SuccessFactors []string           `json:"successFactors"`
	Challenges     []string           `json:"challenges"`
}

/* =================================================================================
								STATIC CONTENT
=================================================================================*/

type milestoneTemplate struct {
	offset   int
	event    string
	category string
}

type scenarioTemplate struct {
	key         string
	name        string
	description string
	milestones  []milestoneTemplate
}

var scenarioTemplates = []scenarioTemplate{
	{
		key:         "conservative",
		name:        "Steady & Secure",
		description: "Focus on stability and gradual growth",
		milestones: []milestoneTemplate{
			{2, "Establish emergency fund", "financial"},
			{4, "Steady career progression", "career"},
			{6, "Strong relationships built", "personal"},
			{8, "Financial security achieved", "financial"},
			{10, "Balanced lifestyle mastered", "personal"},
		},
	},
	{
		key:         "balanced",
		name:        "Growth & Balance",
		description: "Pursue opportunities while maintaining stability",
		milestones: []milestoneTemplate{
			{2, "Skill development & networking", "career"},
			{3, "First major career move", "career"},
			{5, "Significant relationship milestone", "personal"},
			{7, "Investment portfolio growing", "financial"},
			{10, "Leadership role achieved", "career"},
		},
	},
	{
		key:         "ambitious",
		name:        "Bold & Transformative",
		description: "Take calculated risks for maximum growth",
		milestones: []milestoneTemplate{
			{1, "Major skill upgrade/education", "career"},
			{3, "Bold career pivot or startup", "career"},
			{5, "Significant income increase", "financial"},
			{7, "Industry recognition/expertise", "career"},
			{10, "Dream lifestyle achieved", "personal"},
		},
	},
}

var lifeAreas = []LifeArea{
	{Name: "Career", Current: 60, Future: 85},
	{Name: "Relationships", Current: 70, Future: 90},
	{Name: "Health", Current: 65, Future: 80},
	{Name: "Finances", Current: 45, Future: 85},
	{Name: "Personal Growth", Current: 55, Future: 95},
}

var successFactors = []string{
	"Consistent daily habits",
	"Strong relationship network",
	"Continuous learning mindset",
	"Financial discipline",
}

var potentialChallenges = []string{
	"Work-life balance maintenance",
	"Economic market changes",
	"Health maintenance priority",
	"Staying motivated long-term",
}

// LifeBalance is the target split of attention shown on the dashboard.
var LifeBalance = []BalanceSlice{
	{Name: "Career", Value: 30, Color: "#8B5CF6"},
	{Name: "Health", Value: 25, Color: "#10B981"},
	{Name: "Relationships", Value: 20, Color: "#F59E0B"},
	{Name: "Personal Growth", Value: 15, Color: "#EF4444"},
	{Name: "Recreation", Value: 10, Color: "#3B82F6"},
}

/* =================================================================================
								LIFE PATH HANDLERS
=================================================================================*/

// GetLifePathsHandler handles GET /life-paths.
func GetLifePathsHandler(c echo.Context) error {
	age, ok, err := currentAge(c)
	if !ok {
		return err
	}

	return c.JSON(http.StatusOK, LifePathsResponse{
		CurrentAge:     age,
		Scenarios:      BuildLifePaths(age),
		LifeAreas:      lifeAreas,
		SuccessFactors: successFactors,
		Challenges:     potentialChallenges,
	})
}

// GetLifePathScenarioHandler handles GET /life-paths/:scenario.
func GetLifePathScenarioHandler(c echo.Context) error {
	scenario, found := findScenario(c.Param("scenario"))
	if !found {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Unknown scenario"})
	}

	age, ok, err := currentAge(c)
	if !ok {
		return err
	}

	return c.JSON(http.StatusOK, scenario.build(age))
}

/*=================================================================================
								HELPER FUNCTIONS
=================================================================================*/

// BuildLifePaths places every scenario's milestones relative to age.
func BuildLifePaths(age int) []LifePathScenario {
	out := make([]LifePathScenario, 0, len(scenarioTemplates))
	for _, t := range scenarioTemplates {
		out = append(out, t.build(age))
	}
	return out
}

func (t scenarioTemplate) build(age int) LifePathScenario {
	milestones := make([]Milestone, 0, len(t.milestones))
	for _, m := range t.milestones {
		milestones = append(milestones, Milestone{Age: age + m.offset, Event: m.event, Category: m.category})
	}
	return LifePathScenario{
		Key:         t.key,
		Name:        t.name,
		Description: t.description,
		Milestones:  milestones,
	}
}

func findScenario(key string) (scenarioTemplate, bool) {
	for _, t := range scenarioTemplates {
		if t.key == key {
			return t, true
		}
	}
	return scenarioTemplate{}, false
}

// currentAge loads the caller's age. When ok is false the response has
// already been written and err is the value to return from the handler.
func currentAge(c echo.Context) (int, bool, error) {
	userID, err := utility.GetUserIDFromContext(c)
	if err != nil {
		return 0, false, c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	profile, err := getProfile(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, c.JSON(http.StatusNotFound, map[string]string{"error": "Profile not found"})
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load profile for life paths")
		return 0, false, c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load profile"})
	}

	return int(profile.Age), true, nil
}
