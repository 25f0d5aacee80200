package core

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersist_WritesSummary(t *testing.T) {
	st := &fakeStore{}
	svc, _ := newTestService(t, testOptions(), st)

	a, err := svc.Analyze(context.Background(), File{Name: "pack.csv", Content: dataLog})
	require.NoError(t, err)
	assert.True(t, a.Persisted)
	assert.True(t, svc.HistoryEnabled())

	require.Len(t, st.records, 1)
	rec := st.records[0]
	assert.Equal(t, a.ID, rec.ID)
	assert.Equal(t, "pack.csv", rec.FileName)
	assert.Equal(t, a.Fingerprint, rec.Fingerprint)
	assert.Equal(t, "upload", rec.Source)
	assert.Equal(t, "recognized", rec.Status)
	assert.Equal(t, "data", rec.Kind)
	assert.Equal(t, 1, rec.HeaderIndex)
	assert.Equal(t, 4, rec.Rows)
	assert.True(t, rec.Comparable)
	assert.Equal(t, map[string]string{"SerialNumber": "PK-001"}, rec.Metadata)
	assert.Equal(t, a.Outcome.Flags, rec.Flags)
	assert.Equal(t, int64(len(dataLog)), rec.Size)
}

func TestPersist_FailureDoesNotFailAnalysis(t *testing.T) {
	st := &fakeStore{insertErr: errBoom}
	svc, _ := newTestService(t, testOptions(), st)

	a, err := svc.Analyze(context.Background(), File{Name: "pack.csv", Content: dataLog})
	require.NoError(t, err)
	assert.False(t, a.Persisted)
}

func TestPersist_UnrecognizedAndFailedOutcomes(t *testing.T) {
	st := &fakeStore{}
	svc, _ := newTestService(t, testOptions(), st)

	_, err := svc.Analyze(context.Background(), File{Name: "notes.txt", Content: junkLog})
	require.NoError(t, err)

	require.Len(t, st.records, 1)
	assert.Equal(t, "unrecognized", st.records[0].Status)
	assert.Equal(t, -1, st.records[0].HeaderIndex)
	assert.Zero(t, st.records[0].Rows)
}

func TestHistory(t *testing.T) {
	st := &fakeStore{}
	svc, _ := newTestService(t, testOptions(), st)
	ctx := context.Background()

	first, err := svc.Analyze(ctx, File{Name: "a.csv", Content: dataLog})
	require.NoError(t, err)
	_, err = svc.Analyze(ctx, File{Name: "b.csv", Content: errorLog})
	require.NoError(t, err)

	recs, err := svc.History(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	got, err := svc.GetAnalysis(ctx, first.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "a.csv", got.FileName)

	_, err = svc.GetAnalysis(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrAnalysisNotFound)

	_, err = svc.GetAnalysis(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrAnalysisNotFound)
}

func TestHistory_Disabled(t *testing.T) {
	svc, _ := newTestService(t, testOptions(), nil)
	ctx := context.Background()

	assert.False(t, svc.HistoryEnabled())

	_, err := svc.History(ctx, 10, 0)
	assert.ErrorIs(t, err, ErrStoreDisabled)

	_, err = svc.GetAnalysis(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrStoreDisabled)

	assert.NoError(t, svc.Ready(ctx))
}

func TestReady(t *testing.T) {
	st := &fakeStore{pingErr: errBoom}
	svc, _ := newTestService(t, testOptions(), st)
	assert.ErrorIs(t, svc.Ready(context.Background()), errBoom)
}
