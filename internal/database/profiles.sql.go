package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const profileColumns = `id, name, age, future_age, current_career, location, relationship_status,
    financial_situation, goals, core_values, health_priorities, dream_scenario, created_at, updated_at`

func scanProfile(row interface{ Scan(dest ...any) error }) (Profile, error) {
	var i Profile
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Age,
		&i.FutureAge,
		&i.CurrentCareer,
		&i.Location,
		&i.RelationshipStatus,
		&i.FinancialSituation,
		&i.Goals,
		&i.CoreValues,
		&i.HealthPriorities,
		&i.DreamScenario,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getProfile = `-- name: GetProfile :one
SELECT ` + profileColumns + `
FROM profiles
WHERE id = $1
`

func (q *Queries) GetProfile(ctx context.Context, id string) (Profile, error) {
	row := q.db.QueryRow(ctx, getProfile, id)
	return scanProfile(row)
}

const upsertProfile = `-- name: UpsertProfile :one
INSERT INTO profiles (
    id, name, age, future_age, current_career, location, relationship_status,
    financial_situation, goals, core_values, health_priorities, dream_scenario
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9::text[], '{}'), COALESCE($10::text[], '{}'),
    COALESCE($11::text[], '{}'), $12
)
ON CONFLICT (id) DO UPDATE SET
    name                = EXCLUDED.name,
    age                 = EXCLUDED.age,
    future_age          = EXCLUDED.future_age,
    current_career      = EXCLUDED.current_career,
    location            = EXCLUDED.location,
    relationship_status = EXCLUDED.relationship_status,
    financial_situation = EXCLUDED.financial_situation,
    goals               = EXCLUDED.goals,
    core_values         = EXCLUDED.core_values,
    health_priorities   = EXCLUDED.health_priorities,
    dream_scenario      = EXCLUDED.dream_scenario,
    updated_at          = now()
RETURNING ` + profileColumns + `
`

type UpsertProfileParams struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Age                int32       `json:"age"`
	FutureAge          pgtype.Int4 `json:"future_age"`
	CurrentCareer      pgtype.Text `json:"current_career"`
	Location           pgtype.Text `json:"location"`
	RelationshipStatus pgtype.Text `json:"relationship_status"`
	FinancialSituation pgtype.Text `json:"financial_situation"`
	Goals              []string    `json:"goals"`
	CoreValues         []string    `json:"core_values"`
	HealthPriorities   []string    `json:"health_priorities"`
	DreamScenario      pgtype.Text `json:"dream_scenario"`
}

func (q *Queries) UpsertProfile(ctx context.Context, arg UpsertProfileParams) (Profile, error) {
	row := q.db.QueryRow(ctx, upsertProfile,
		arg.ID,
		arg.Name,
		arg.Age,
		arg.FutureAge,
		arg.CurrentCareer,
		arg.Location,
		arg.RelationshipStatus,
		arg.FinancialSituation,
		arg.Goals,
		arg.CoreValues,
		arg.HealthPriorities,
		arg.DreamScenario,
	)
	return scanProfile(row)
}

// Unset params keep the stored value. $13 resets future_age to NULL.
const updateProfile = `-- name: UpdateProfile :one
UPDATE profiles SET
    name                = COALESCE($2, name),
    age                 = COALESCE($3, age),
    future_age          = CASE WHEN $13::boolean THEN NULL ELSE COALESCE($4, future_age) END,
    current_career      = COALESCE($5, current_career),
    location            = COALESCE($6, location),
    relationship_status = COALESCE($7, relationship_status),
    financial_situation = COALESCE($8, financial_situation),
    goals               = COALESCE($9::text[], goals),
    core_values         = COALESCE($10::text[], core_values),
    health_priorities   = COALESCE($11::text[], health_priorities),
    dream_scenario      = COALESCE($12, dream_scenario),
    updated_at          = now()
WHERE id = $1
RETURNING ` + profileColumns + `
`

type UpdateProfileParams struct {
	ID                 string      `json:"id"`
	Name               pgtype.Text `json:"name"`
	Age                pgtype.Int4 `json:"age"`
	FutureAge          pgtype.Int4 `json:"future_age"`
	CurrentCareer      pgtype.Text `json:"current_career"`
	Location           pgtype.Text `json:"location"`
	RelationshipStatus pgtype.Text `json:"relationship_status"`
	FinancialSituation pgtype.Text `json:"financial_situation"`
	Goals              []string    `json:"goals"`
	CoreValues         []string    `json:"core_values"`
	HealthPriorities   []string    `json:"health_priorities"`
	DreamScenario      pgtype.Text `json:"dream_scenario"`
	ClearFutureAge     bool        `json:"clear_future_age"`
}

func (q *Queries) UpdateProfile(ctx context.Context, arg UpdateProfileParams) (Profile, error) {
	row := q.db.QueryRow(ctx, updateProfile,
		arg.ID,
		arg.Name,
		arg.Age,
		arg.FutureAge,
		arg.CurrentCareer,
		arg.Location,
		arg.RelationshipStatus,
		arg.FinancialSituation,
		arg.Goals,
		arg.CoreValues,
		arg.HealthPriorities,
		arg.DreamScenario,
		arg.ClearFutureAge,
	)
	return scanProfile(row)
}

// Journal entries go with the profile through the ON DELETE CASCADE.
const deleteProfile = `-- name: DeleteProfile :execrows
DELETE FROM profiles
WHERE id = $1
`

func (q *Queries) DeleteProfile(ctx context.Context, id string) (int64, error) {
	result, err := q.db.Exec(ctx, deleteProfile, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
