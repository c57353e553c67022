package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const journalColumns = `entry_id, user_id, prompt, content, mood, created_at, updated_at`

func scanJournalEntry(row interface{ Scan(dest ...any) error }) (JournalEntry, error) {
	var i JournalEntry
	err := row.Scan(
		&i.EntryID,
		&i.UserID,
		&i.Prompt,
		&i.Content,
		&i.Mood,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createJournalEntry = `-- name: CreateJournalEntry :one
INSERT INTO journal_entries (entry_id, user_id, prompt, content, mood)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + journalColumns + `
`

type CreateJournalEntryParams struct {
	EntryID pgtype.UUID `json:"entry_id"`
	UserID  string      `json:"user_id"`
	Prompt  string      `json:"prompt"`
	Content string      `json:"content"`
	Mood    JournalMood `json:"mood"`
}

func (q *Queries) CreateJournalEntry(ctx context.Context, arg CreateJournalEntryParams) (JournalEntry, error) {
	row := q.db.QueryRow(ctx, createJournalEntry,
		arg.EntryID,
		arg.UserID,
		arg.Prompt,
		arg.Content,
		string(arg.Mood),
	)
	return scanJournalEntry(row)
}

const listJournalEntries = `-- name: ListJournalEntries :many
SELECT ` + journalColumns + `
FROM journal_entries
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`

type ListJournalEntriesParams struct {
	UserID     string `json:"user_id"`
	LimitCount int32  `json:"limit_count"`
}

func (q *Queries) ListJournalEntries(ctx context.Context, arg ListJournalEntriesParams) ([]JournalEntry, error) {
	rows, err := q.db.Query(ctx, listJournalEntries, arg.UserID, arg.LimitCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []JournalEntry{}
	for rows.Next() {
		i, err := scanJournalEntry(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getJournalEntry = `-- name: GetJournalEntry :one
SELECT ` + journalColumns + `
FROM journal_entries
WHERE entry_id = $1 AND user_id = $2
`

type GetJournalEntryParams struct {
	EntryID pgtype.UUID `json:"entry_id"`
	UserID  string      `json:"user_id"`
}

func (q *Queries) GetJournalEntry(ctx context.Context, arg GetJournalEntryParams) (JournalEntry, error) {
	row := q.db.QueryRow(ctx, getJournalEntry, arg.EntryID, arg.UserID)
	return scanJournalEntry(row)
}

const updateJournalEntry = `-- name: UpdateJournalEntry :one
UPDATE journal_entries SET
    prompt     = COALESCE($3, prompt),
    content    = COALESCE($4, content),
    mood       = COALESCE($5, mood),
    updated_at = now()
WHERE entry_id = $1 AND user_id = $2
RETURNING ` + journalColumns + `
`

type UpdateJournalEntryParams struct {
	EntryID pgtype.UUID `json:"entry_id"`
	UserID  string      `json:"user_id"`
	Prompt  pgtype.Text `json:"prompt"`
	Content pgtype.Text `json:"content"`
	Mood    pgtype.Text `json:"mood"`
}

func (q *Queries) UpdateJournalEntry(ctx context.Context, arg UpdateJournalEntryParams) (JournalEntry, error) {
	row := q.db.QueryRow(ctx, updateJournalEntry,
		arg.EntryID,
		arg.UserID,
		arg.Prompt,
		arg.Content,
		arg.Mood,
	)
	return scanJournalEntry(row)
}

const deleteJournalEntry = `-- name: DeleteJournalEntry :execrows
DELETE FROM journal_entries
WHERE entry_id = $1 AND user_id = $2
`

type DeleteJournalEntryParams struct {
	EntryID pgtype.UUID `json:"entry_id"`
	UserID  string      `json:"user_id"`
}

func (q *Queries) DeleteJournalEntry(ctx context.Context, arg DeleteJournalEntryParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteJournalEntry, arg.EntryID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
