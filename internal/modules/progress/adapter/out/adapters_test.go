package out_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	progressout "courseplay/internal/modules/progress/adapter/out"
	"courseplay/internal/modules/progress/domain"
	"courseplay/internal/platform/apiclient"
	"courseplay/internal/platform/sqlitedb"
)

type capturedRequest struct {
	method string
	path   string
	body   map[string]any
}

func TestRESTProgressStoreWireFormat(t *testing.T) {
	t.Parallel()
	var mu sync.Mutex
	var got []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := capturedRequest{method: r.Method, path: r.URL.Path}
		if r.ContentLength > 0 {
			req.body = map[string]any{}
			_ = json.NewDecoder(r.Body).Decode(&req.body)
		}
		mu.Lock()
		got = append(got, req)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	store := progressout.NewRESTProgressStore(apiclient.New(apiclient.Options{BaseURL: srv.URL}))
	ctx := context.Background()
	require.NoError(t, store.UpdateProgress(ctx, domain.Sample("v1", 61, 25)))
	require.NoError(t, store.UpdateProgress(ctx, domain.Completion("v1")))
	require.NoError(t, store.MarkSectionSeen(ctx, "s2"))

	require.Len(t, got, 3)
	assert.Equal(t, http.MethodPut, got[0].method)
	assert.Equal(t, "/progress/v1", got[0].path)
	assert.Equal(t, map[string]any{"lastPosition": 61.0, "percentage": 25.0}, got[0].body)
	assert.Equal(t, map[string]any{"completed": true, "lastPosition": 0.0, "percentage": 100.0}, got[1].body)
	assert.Equal(t, http.MethodPost, got[2].method)
	assert.Equal(t, "/sections/s2/seen", got[2].path)
}

func TestSQLiteJournalRecentNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := sqlitedb.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer db.Close()

	journal, err := progressout.NewSQLiteJournal(ctx, db)
	require.NoError(t, err)

	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, journal.Append(ctx, domain.JournalEntry{
		ID: "e1", Kind: domain.KindProgress, TargetID: "v1",
		Update: domain.Sample("v1", 10, 5), Outcome: domain.OutcomeSent, CreatedAt: base,
	}))
	require.NoError(t, journal.Append(ctx, domain.JournalEntry{
		ID: "e2", Kind: domain.KindSectionSeen, TargetID: "s1",
		Outcome: domain.OutcomeFailed, Error: "boom", CreatedAt: base.Add(time.Second),
	}))
	require.NoError(t, journal.Append(ctx, domain.JournalEntry{
		ID: "e3", Kind: domain.KindProgress, TargetID: "v1",
		Update: domain.Completion("v1"), Outcome: domain.OutcomeSent, CreatedAt: base.Add(2 * time.Second),
	}))

	recent, err := journal.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "e3", recent[0].ID)
	assert.True(t, recent[0].Update.Completed)
	assert.Equal(t, "v1", recent[0].Update.VideoID)
	assert.Equal(t, "e2", recent[1].ID)
	assert.Equal(t, "boom", recent[1].Error)
	assert.Empty(t, recent[1].Update.VideoID)
}
