package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/bmsview/internal/engine"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestIngestFile_MovesToProcessed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pack.csv", dataLog)
	svc, _ := newTestService(t, testOptions(), nil)

	a, err := svc.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, SourceWatch, a.Source)
	assert.Equal(t, "pack.csv", a.Outcome.FileName)
	assert.Equal(t, engine.StatusRecognized, a.Outcome.Status)

	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(dir, DefaultProcessedDir, "pack.csv"))
}

func TestIngestFile_UnrecognizedIsMoved(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", junkLog)
	svc, _ := newTestService(t, testOptions(), nil)

	a, err := svc.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, engine.StatusUnrecognized, a.Outcome.Status)
	assert.FileExists(t, filepath.Join(dir, DefaultProcessedDir, "notes.txt"))
}

func TestIngestFile_NameCollision(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions()
	opts.ProcessedDir = "Done"
	svc, _ := newTestService(t, opts, nil)
	ctx := context.Background()

	for range 3 {
		path := writeFile(t, dir, "pack.csv", dataLog)
		_, err := svc.IngestFile(ctx, path)
		require.NoError(t, err)
	}

	done := filepath.Join(dir, "Done")
	assert.FileExists(t, filepath.Join(done, "pack.csv"))
	assert.FileExists(t, filepath.Join(done, "pack-1.csv"))
	assert.FileExists(t, filepath.Join(done, "pack-2.csv"))
}

func TestIngestFile_LeavesRejectedFiles(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions()
	opts.MaxFileSize = int64(len(junkLog))
	svc, _ := newTestService(t, opts, nil)
	ctx := context.Background()

	empty := writeFile(t, dir, "partial.csv", nil)
	_, err := svc.IngestFile(ctx, empty)
	assert.ErrorIs(t, err, ErrEmptyFile)
	assert.FileExists(t, empty)

	big := writeFile(t, dir, "big.csv", dataLog)
	_, err = svc.IngestFile(ctx, big)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.FileExists(t, big)

	_, err = svc.IngestFile(ctx, filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = svc.IngestFile(ctx, dir)
	assert.Error(t, err)
}

func TestIngestDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", errorLog)
	writeFile(t, dir, "a.csv", dataLog)
	writeFile(t, dir, ".hidden.csv", dataLog)
	writeFile(t, dir, "partial.csv", nil)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	svc, _ := newTestService(t, testOptions(), nil)
	results, err := svc.IngestDir(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "a.csv", results[0].FileName)
	assert.Equal(t, "b.csv", results[1].FileName)
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, engine.StatusRecognized, r.Analysis.Outcome.Status)
	}
	assert.Equal(t, engine.KindError, results[1].Analysis.Outcome.Kind)

	assert.FileExists(t, filepath.Join(dir, ".hidden.csv"))
	assert.FileExists(t, filepath.Join(dir, "partial.csv"))
	assert.DirExists(t, filepath.Join(dir, "nested"))

	// A second pass finds nothing new.
	results, err = svc.IngestDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIngestDir_Missing(t *testing.T) {
	svc, _ := newTestService(t, testOptions(), nil)
	_, err := svc.IngestDir(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestIngestDir_Canceled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", dataLog)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc, _ := newTestService(t, testOptions(), nil)
	results, err := svc.IngestDir(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	assert.FileExists(t, filepath.Join(dir, "a.csv"))
}
