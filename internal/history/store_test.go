package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helpers "github.com/ysouyno/isbld/internal/testutil/testutils"
)

func TestStoreSaveAndRecent(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	first := Run{
		ID:       NewRunID(),
		Project:  "demo.ism",
		Started:  base,
		Finished: base.Add(90 * time.Second),
		Status:   StatusSucceeded,
		Steps: []Step{
			{Name: "compile", Command: `""Compile.exe" "Setup.rul""`, Lines: 42, Duration: time.Minute},
			{Name: "build", Command: `""ISCmdBld.exe" -p "demo.ism""`, Lines: 7, Duration: 30 * time.Second},
		},
	}
	second := Run{
		ID:       NewRunID(),
		Project:  "demo.ism",
		Revision: "0123abcd",
		Started:  base.Add(time.Hour),
		Finished: base.Add(time.Hour + time.Second),
		Status:   StatusFailed,
		Error:    "tool exited with non-zero status",
		Steps:    []Step{{Name: "compile", Command: "x", Lines: 1, ExitCode: 2, Error: "exit status 2"}},
	}
	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))

	runs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, second.ID, runs[0].ID, "newest first")
	assert.Equal(t, StatusFailed, runs[0].Status)
	assert.Equal(t, "0123abcd", runs[0].Revision)
	require.Len(t, runs[0].Steps, 1)
	assert.Equal(t, 2, runs[0].Steps[0].ExitCode)

	assert.Equal(t, 90*time.Second, runs[1].Duration())
	require.Len(t, runs[1].Steps, 2)
	assert.Equal(t, "compile", runs[1].Steps[0].Name)
	assert.Equal(t, "build", runs[1].Steps[1].Name)
	assert.Equal(t, 42, runs[1].Steps[0].Lines)
	assert.Equal(t, time.Minute, runs[1].Steps[0].Duration)

	limited, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStoreDuplicateIDFails(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	now := time.Now()
	run := Run{ID: "fixed", Project: "p", Started: now, Finished: now, Status: StatusSucceeded}
	require.NoError(t, store.Save(t.Context(), run))
	require.ErrorIs(t, store.Save(t.Context(), run), ErrSaveFailed)
}

func TestStorePersistsOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isbld.db")
	store, err := Open(path)
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, store.Save(t.Context(), Run{ID: NewRunID(), Project: "p", Started: now, Finished: now, Status: StatusCanceled}))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	runs, err := reopened.Recent(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusCanceled, runs[0].Status)
}

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, NewRunID())
}

func TestRevision(t *testing.T) {
	dir := t.TempDir()

	rev, err := Revision(dir)
	require.NoError(t, err)
	assert.Empty(t, rev, "not a repository")

	_, w := helpers.SetupTestGitRepo(t, dir)

	rev, err = Revision(dir)
	require.NoError(t, err)
	assert.Empty(t, rev, "no commits yet")

	hash := helpers.CommitFile(t, w, "demo.ism", "<msi/>")

	sub := filepath.Join(dir, "Script Files")
	require.NoError(t, os.Mkdir(sub, 0o755))
	rev, err = Revision(sub)
	require.NoError(t, err)
	assert.Equal(t, hash.String(), rev)
}
