package out_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	courseout "courseplay/internal/modules/course/adapter/out"
	"courseplay/internal/modules/course/domain"
	"courseplay/internal/platform/apiclient"
	apperrors "courseplay/internal/platform/errors"
	"courseplay/internal/platform/sqlitedb"
)

func TestRESTCourseFetcherDecodesTree(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/courses/c-1", r.URL.Path)
		assert.Equal(t, "viewer-9", r.Header.Get(apiclient.HeaderViewer))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(apiclient.HeaderRequestID))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(apiclient.CourseDoc{
			ID:    "c-1",
			Title: "Go",
			Sections: []apiclient.SectionDoc{{
				ID: "s1", IsNew: true,
				Videos: []apiclient.VideoDoc{
					{ID: "v1", MediaRef: "media/v1", Duration: 120, Progress: &apiclient.ProgressDoc{Completed: true, Percentage: 100}},
					{ID: "v2", MediaRef: "media/v2"},
				},
			}},
		})
	}))
	defer srv.Close()

	client := apiclient.New(apiclient.Options{BaseURL: srv.URL + "/api", Token: "secret", Timeout: time.Second})
	course, err := courseout.NewRESTCourseFetcher(client).FetchCourse(context.Background(), "c-1", "viewer-9")
	require.NoError(t, err)
	require.Len(t, course.Sections, 1)
	assert.True(t, course.Sections[0].IsNew)
	require.Len(t, course.Sections[0].Videos, 2)
	assert.Equal(t, "s1", course.Sections[0].Videos[1].SectionID)
	require.NotNil(t, course.Sections[0].Videos[0].Progress)
	assert.True(t, course.Sections[0].Videos[0].Progress.Completed)
	assert.Nil(t, course.Sections[0].Videos[1].Progress)
}

func TestRESTCourseFetcherMapsStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"course not found"}`))
	}))
	defer srv.Close()

	client := apiclient.New(apiclient.Options{BaseURL: srv.URL})
	_, err := courseout.NewRESTCourseFetcher(client).FetchCourse(context.Background(), "nope", "")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "course not found")
}

func TestSQLiteSnapshotStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := sqlitedb.Open(filepath.Join(t.TempDir(), "cache", "courseplay.db"))
	require.NoError(t, err)
	defer db.Close()

	store, err := courseout.NewSQLiteSnapshotStore(ctx, db)
	require.NoError(t, err)

	_, _, err = store.Load(ctx, "c-1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	fetchedAt := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	course := domain.Course{ID: "c-1", Title: "Go", Sections: []domain.Section{{
		ID: "s1", CourseID: "c-1",
		Videos: []domain.Video{{ID: "v1", SectionID: "s1", Progress: &domain.Progress{LastPosition: 42, Percentage: 35}}},
	}}}
	require.NoError(t, store.Save(ctx, course, fetchedAt))
	course.Title = "Go, second edition"
	require.NoError(t, store.Save(ctx, course, fetchedAt.Add(time.Hour)))

	loaded, at, err := store.Load(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, course, loaded)
	assert.True(t, at.Equal(fetchedAt.Add(time.Hour)))
}
