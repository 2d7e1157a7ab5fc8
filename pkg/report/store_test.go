package report

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/logdoctor/pkg/diagnostic"
)

func testStore(t *testing.T, retention time.Duration) *Store {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	return NewStore(log, t.TempDir(), retention)
}

func sampleReport(source string) *AnalysisReport {
	r := New(source)
	r.Duration = 42 * time.Millisecond
	r.LogBytes = 1024
	r.PatternCount = 12
	r.Results = []diagnostic.Result{
		{
			ID:         "oom-killed-123",
			PatternID:  "oom-killed",
			Severity:   diagnostic.SeverityCritical,
			Summary:    "Process killed by OOM killer",
			Confidence: 95,
		},
	}

	return r
}

func TestStoreSaveAndLoad(t *testing.T) {
	store := testStore(t, 0)
	original := sampleReport("build.log")

	require.NoError(t, store.Save(original))

	loaded, err := store.Load(original.ID)
	require.NoError(t, err)

	assert.Equal(t, original.ID, loaded.ID)
	assert.Equal(t, "build.log", loaded.Source)
	assert.Equal(t, 1024, loaded.LogBytes)
	require.Len(t, loaded.Results, 1)
	assert.Equal(t, "oom-killed", loaded.Results[0].PatternID)
	assert.Equal(t, diagnostic.SeverityCritical, loaded.Results[0].Severity)
}

func TestStoreLoadMissing(t *testing.T) {
	store := testStore(t, 0)

	_, err := store.Load("deadbeef")
	assert.Error(t, err)
}

func TestStoreListNewestFirst(t *testing.T) {
	store := testStore(t, 0)

	old := sampleReport("old.log")
	old.CreatedAt = time.Now().Add(-2 * time.Hour)

	recent := sampleReport("recent.log")

	require.NoError(t, store.Save(old))
	require.NoError(t, store.Save(recent))

	reports, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, "recent.log", reports[0].Source)
	assert.Equal(t, "old.log", reports[1].Source)
}

func TestStoreListLimit(t *testing.T) {
	store := testStore(t, 0)

	for i := 0; i < 5; i++ {
		r := sampleReport("build.log")
		r.CreatedAt = time.Now().Add(-time.Duration(i) * time.Minute)
		require.NoError(t, store.Save(r))
	}

	reports, err := store.List(2)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestStoreListEmptyDir(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	store := NewStore(log, filepath.Join(t.TempDir(), "never-created"), 0)

	reports, err := store.List(0)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestStoreLatest(t *testing.T) {
	store := testStore(t, 0)

	_, err := store.Latest()
	assert.Error(t, err)

	r := sampleReport("latest.log")
	require.NoError(t, store.Save(r))

	latest, err := store.Latest()
	require.NoError(t, err)
	assert.Equal(t, r.ID, latest.ID)
}

func TestStoreCleanup(t *testing.T) {
	store := testStore(t, 0)

	old := sampleReport("ancient.log")
	old.CreatedAt = time.Now().Add(-30 * 24 * time.Hour)

	recent := sampleReport("recent.log")

	require.NoError(t, store.Save(old))
	require.NoError(t, store.Save(recent))

	require.NoError(t, store.Cleanup(7*24*time.Hour))

	reports, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "recent.log", reports[0].Source)
}

func TestStoreCleanupIgnoresForeignFiles(t *testing.T) {
	store := testStore(t, 0)

	require.NoError(t, os.MkdirAll(store.Dir(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("keep me"), 0644))

	require.NoError(t, store.Cleanup(time.Hour))

	_, err := os.Stat(filepath.Join(store.Dir(), "notes.txt"))
	assert.NoError(t, err)
}

func TestReportHasFindings(t *testing.T) {
	r := New("build.log")
	assert.False(t, r.HasFindings())
	assert.NotEmpty(t, r.ID)

	r.Results = append(r.Results, diagnostic.Result{PatternID: "x"})
	assert.True(t, r.HasFindings())
}
