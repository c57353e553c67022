package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"futureself/internal/database"
	"futureself/internal/geminiservice"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// fakeQuerier is an in-memory database.Querier with the same COALESCE
// semantics as the SQL queries.
type fakeQuerier struct {
	mu              sync.Mutex
	profiles        map[string]database.Profile
	entries         []database.JournalEntry
	getProfileCalls int
	lastListLimit   int32
	err             error

	// onGetProfile runs after GetProfile has read its row, outside the lock.
	onGetProfile func()
}

var _ database.Querier = (*fakeQuerier)(nil)

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{profiles: map[string]database.Profile{}}
}

func now() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
}

func (f *fakeQuerier) UpsertProfile(_ context.Context, arg database.UpsertProfileParams) (database.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return database.Profile{}, f.err
	}
	created := now()
	if existing, ok := f.profiles[arg.ID]; ok {
		created = existing.CreatedAt
	}
	p := database.Profile{
		ID:                 arg.ID,
		Name:               arg.Name,
		Age:                arg.Age,
		FutureAge:          arg.FutureAge,
		CurrentCareer:      arg.CurrentCareer,
		Location:           arg.Location,
		RelationshipStatus: arg.RelationshipStatus,
		FinancialSituation: arg.FinancialSituation,
		Goals:              arg.Goals,
		CoreValues:         arg.CoreValues,
		HealthPriorities:   arg.HealthPriorities,
		DreamScenario:      arg.DreamScenario,
		CreatedAt:          created,
		UpdatedAt:          now(),
	}
	f.profiles[arg.ID] = p
	return p, nil
}

func (f *fakeQuerier) GetProfile(_ context.Context, id string) (database.Profile, error) {
	f.mu.Lock()
	f.getProfileCalls++
	p, ok := f.profiles[id]
	err := f.err
	hook := f.onGetProfile
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return database.Profile{}, err
	}
	if !ok {
		return database.Profile{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeQuerier) UpdateProfile(_ context.Context, arg database.UpdateProfileParams) (database.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return database.Profile{}, f.err
	}
	p, ok := f.profiles[arg.ID]
	if !ok {
		return database.Profile{}, pgx.ErrNoRows
	}
	if arg.Name.Valid {
		p.Name = arg.Name.String
	}
	if arg.Age.Valid {
		p.Age = arg.Age.Int32
	}
	if arg.ClearFutureAge {
		p.FutureAge = pgtype.Int4{}
	} else if arg.FutureAge.Valid {
		p.FutureAge = arg.FutureAge
	}
	for dst, src := range map[*pgtype.Text]pgtype.Text{
		&p.CurrentCareer:      arg.CurrentCareer,
		&p.Location:           arg.Location,
		&p.RelationshipStatus: arg.RelationshipStatus,
		&p.FinancialSituation: arg.FinancialSituation,
		&p.DreamScenario:      arg.DreamScenario,
	} {
		if src.Valid {
			*dst = src
		}
	}
	if arg.Goals != nil {
		p.Goals = arg.Goals
	}
	if arg.CoreValues != nil {
		p.CoreValues = arg.CoreValues
	}
	if arg.HealthPriorities != nil {
		p.HealthPriorities = arg.HealthPriorities
	}
	p.UpdatedAt = now()
	f.profiles[arg.ID] = p
	return p, nil
}

func (f *fakeQuerier) DeleteProfile(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.profiles[id]; !ok {
		return 0, nil
	}
	delete(f.profiles, id)
	kept := f.entries[:0]
	for _, e := range f.entries {
		if e.UserID != id {
			kept = append(kept, e)
		}
	}
	f.entries = kept
	return 1, nil
}

func (f *fakeQuerier) CreateJournalEntry(_ context.Context, arg database.CreateJournalEntryParams) (database.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return database.JournalEntry{}, f.err
	}
	e := database.JournalEntry{
		EntryID:   arg.EntryID,
		UserID:    arg.UserID,
		Prompt:    arg.Prompt,
		Content:   arg.Content,
		Mood:      arg.Mood,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	f.entries = append(f.entries, e)
	return e, nil
}

func (f *fakeQuerier) ListJournalEntries(_ context.Context, arg database.ListJournalEntriesParams) ([]database.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastListLimit = arg.LimitCount
	if f.err != nil {
		return nil, f.err
	}
	var out []database.JournalEntry
	for i := len(f.entries) - 1; i >= 0 && int32(len(out)) < arg.LimitCount; i-- {
		if f.entries[i].UserID == arg.UserID {
			out = append(out, f.entries[i])
		}
	}
	return out, nil
}

func (f *fakeQuerier) findEntry(id pgtype.UUID, userID string) int {
	for i, e := range f.entries {
		if e.EntryID == id && e.UserID == userID {
			return i
		}
	}
	return -1
}

func (f *fakeQuerier) GetJournalEntry(_ context.Context, arg database.GetJournalEntryParams) (database.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findEntry(arg.EntryID, arg.UserID)
	if i < 0 {
		return database.JournalEntry{}, pgx.ErrNoRows
	}
	return f.entries[i], nil
}

func (f *fakeQuerier) UpdateJournalEntry(_ context.Context, arg database.UpdateJournalEntryParams) (database.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findEntry(arg.EntryID, arg.UserID)
	if i < 0 {
		return database.JournalEntry{}, pgx.ErrNoRows
	}
	e := f.entries[i]
	if arg.Prompt.Valid {
		e.Prompt = arg.Prompt.String
	}
	if arg.Content.Valid {
		e.Content = arg.Content.String
	}
	if arg.Mood.Valid {
		e.Mood = database.JournalMood(arg.Mood.String)
	}
	e.UpdatedAt = now()
	f.entries[i] = e
	return e, nil
}

func (f *fakeQuerier) DeleteJournalEntry(_ context.Context, arg database.DeleteJournalEntryParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.findEntry(arg.EntryID, arg.UserID)
	if i < 0 {
		return 0, nil
	}
	f.entries = append(f.entries[:i], f.entries[i+1:]...)
	return 1, nil
}

/* ===== test helpers ===== */

const testUserID = "0b7a9c4e-5d1f-4c1a-9d8e-2f3a4b5c6d7e"

// setup wires the package to a fresh fake store and, when geminiURL is not
// empty, a Gemini client pointed at it.
func setup(t *testing.T, geminiURL string) *fakeQuerier {
	t.Helper()
	fq := newFakeQuerier()
	var client *geminiservice.Client
	if geminiURL != "" {
		client = &geminiservice.Client{
			BaseURL:    geminiURL,
			Model:      "test-model",
			HTTPClient: http.DefaultClient,
			APIKey:     func() string { return "test-key" },
		}
	}
	InitUserPackage(fq, client)
	return fq
}

// newContext builds an authenticated echo context. An empty userID skips auth.
func newContext(method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
	}
	return c, rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func seedProfile(t *testing.T, fq *fakeQuerier, name string, age int32, goals ...string) database.Profile {
	t.Helper()
	p, err := fq.UpsertProfile(context.Background(), database.UpsertProfileParams{
		ID:            testUserID,
		Name:          name,
		Age:           age,
		Goals:         goals,
		CoreValues:    []string{"honesty"},
		DreamScenario: pgtype.Text{String: "A cabin by the lake", Valid: true},
	})
	require.NoError(t, err)
	return p
}
