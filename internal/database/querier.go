package database

import (
	"context"
)

type Querier interface {
	CreateJournalEntry(ctx context.Context, arg CreateJournalEntryParams) (JournalEntry, error)
	DeleteJournalEntry(ctx context.Context, arg DeleteJournalEntryParams) (int64, error)
	DeleteProfile(ctx context.Context, id string) (int64, error)
	GetJournalEntry(ctx context.Context, arg GetJournalEntryParams) (JournalEntry, error)
	GetProfile(ctx context.Context, id string) (Profile, error)
	ListJournalEntries(ctx context.Context, arg ListJournalEntriesParams) ([]JournalEntry, error)
	UpdateJournalEntry(ctx context.Context, arg UpdateJournalEntryParams) (JournalEntry, error)
	UpdateProfile(ctx context.Context, arg UpdateProfileParams) (Profile, error)
	UpsertProfile(ctx context.Context, arg UpsertProfileParams) (Profile, error)
}

var _ Querier = (*Queries)(nil)
