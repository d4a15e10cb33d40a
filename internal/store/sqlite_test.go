package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	seekerrors "github.com/hyperseek/hyperseek/internal/errors"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testDoc(id string, fetched time.Time) *Document {
	return &Document{
		ID:        id,
		Source:    SourceEncyclopedia,
		Title:     "Title " + id,
		Body:      "Body for " + id,
		URL:       "https://example.org/" + id,
		FetchedAt: fetched,
		Metadata:  map[string]string{"lang": "en"},
	}
}

func TestSQLite_PutGetRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fetched := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx, testDoc("d1", fetched)))

	got, err := s.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "d1", got.ID)
	assert.Equal(t, SourceEncyclopedia, got.Source)
	assert.Equal(t, "Title d1", got.Title)
	assert.Equal(t, map[string]string{"lang": "en"}, got.Metadata)
	assert.True(t, got.FetchedAt.Equal(fetched))
}

func TestSQLite_PutDuplicateConflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, testDoc("d1", time.Now())))
	err := s.Put(ctx, testDoc("d1", time.Now()))

	require.Error(t, err)
	assert.True(t, seekerrors.IsConflict(err))
}

func TestSQLite_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, seekerrors.IsNotFound(err))
}

func TestSQLite_DeleteThenReinsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, testDoc("d1", time.Now())))
	require.NoError(t, s.Delete(ctx, "d1"))

	assert.True(t, seekerrors.IsNotFound(s.Delete(ctx, "d1")))
	require.NoError(t, s.Put(ctx, testDoc("d1", time.Now())))
}

func TestSQLite_ListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		doc := testDoc(fmt.Sprintf("d%d", i), base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, s.Put(ctx, doc))
	}

	docs, err := s.List(ctx, 3, 0)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "d4", docs[0].ID)
	assert.Equal(t, "d3", docs[1].ID)

	page2, err := s.List(ctx, 3, 3)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, "d1", page2[0].ID)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestSQLite_JobLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job := &CrawlJob{
		ID:        "job-1",
		Source:    SourceCustomURL,
		Config:    JobConfig{StartURLs: []string{"https://example.org"}, MaxPages: 3, MaxDepth: 1},
		Status:    JobPending,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateJob(ctx, job))

	started := time.Now().UTC()
	job.Status = JobRunning
	job.StartedAt = &started
	require.NoError(t, s.UpdateJob(ctx, job))

	completed := time.Now().UTC()
	job.Status = JobCompleted
	job.DocumentsFound = 4
	job.DocumentsIngested = 3
	job.CompletedAt = &completed
	require.NoError(t, s.UpdateJob(ctx, job))

	got, err := s.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, JobCompleted, got.Status)
	assert.Equal(t, 3, got.DocumentsIngested)
	assert.Equal(t, []string{"https://example.org"}, got.Config.StartURLs)
	require.NotNil(t, got.StartedAt)
	require.NotNil(t, got.CompletedAt)
}

func TestSQLite_UpdateUnknownJob(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateJob(context.Background(), &CrawlJob{ID: "ghost", Status: JobRunning})
	require.Error(t, err)
	assert.True(t, seekerrors.IsNotFound(err))
}

func TestSQLite_ListJobs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		job := &CrawlJob{
			ID:        fmt.Sprintf("job-%d", i),
			Source:    SourceForum,
			Config:    JobConfig{Query: "golang"},
			Status:    JobPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.CreateJob(ctx, job))
	}

	jobs, err := s.ListJobs(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "job-2", jobs[0].ID)
}
