package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// JournalMood mirrors the journal_mood enum.
type JournalMood string

const (
	JournalMoodPositive    JournalMood = "positive"
	JournalMoodNeutral     JournalMood = "neutral"
	JournalMoodReflective  JournalMood = "reflective"
	JournalMoodChallenging JournalMood = "challenging"
)

// Valid reports whether m is one of the enum values.
func (m JournalMood) Valid() bool {
	switch m {
	case JournalMoodPositive, JournalMoodNeutral, JournalMoodReflective, JournalMoodChallenging:
		return true
	}
	return false
}

type Profile struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Age                int32              `json:"age"`
	FutureAge          pgtype.Int4        `json:"future_age"`
	CurrentCareer      pgtype.Text        `json:"current_career"`
	Location           pgtype.Text        `json:"location"`
	RelationshipStatus pgtype.Text        `json:"relationship_status"`
	FinancialSituation pgtype.Text        `json:"financial_situation"`
	Goals              []string           `json:"goals"`
	CoreValues         []string           `json:"core_values"`
	HealthPriorities   []string           `json:"health_priorities"`
	DreamScenario      pgtype.Text        `json:"dream_scenario"`
	CreatedAt          pgtype.Timestamptz `json:"created_at"`
	UpdatedAt          pgtype.Timestamptz `json:"updated_at"`
}

type JournalEntry struct {
	EntryID   pgtype.UUID        `json:"entry_id"`
	UserID    string             `json:"user_id"`
	Prompt    string             `json:"prompt"`
	Content   string             `json:"content"`
	Mood      JournalMood        `json:"mood"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}
