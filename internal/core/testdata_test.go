package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/bmsview/internal/metrics"
	"github.com/JonMunkholm/bmsview/internal/store"
)

func logContent(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

var dataLog = logContent(
	"SerialNumber=PK-001",
	"Sample,DateTime,Voltage,Current,CellVolt1,CellVolt2,SafetyStatus",
	"1,2024-03-01 08:00:00,51000,2000,3300,3310,0",
	"2,2024-03-01 08:00:30,51100,2100,3302,3309,0",
	"3,2024-03-01 08:01:00,51200,2200,3301,3312,4",
	"4,2024-03-01 08:01:30,51300,2300,3303,3311,0",
)

var errorLog = logContent(
	"Time,LogCaption,Error Code,Error String",
	"2024-03-01 08:00:00,Charge,12,Cell over voltage",
	"2024-03-01 08:05:00,Charge,12,Cell over voltage",
	"2024-03-01 08:09:00,Idle,7,Temperature sensor",
)

var junkLog = logContent("hello", "world")

// fakeStore is an in-memory Store.
type fakeStore struct {
	mu        sync.Mutex
	records   []store.Record
	insertErr error
	pingErr   error
}

func (f *fakeStore) Insert(_ context.Context, rec store.Record) (store.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return store.Record{}, f.insertErr
	}
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeStore) List(_ context.Context, limit, offset int) ([]store.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if offset >= len(f.records) {
		return nil, nil
	}
	end := min(len(f.records), offset+limit)
	return append([]store.Record(nil), f.records[offset:end]...), nil
}

func (f *fakeStore) Get(_ context.Context, id uuid.UUID) (store.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			return r, nil
		}
	}
	return store.Record{}, store.ErrNotFound
}

func (f *fakeStore) Ping(context.Context) error {
	return f.pingErr
}

var errBoom = errors.New("connection refused")

func testOptions() Options {
	return Options{
		MaxFileSize:   1 << 20,
		MaxConcurrent: 2,
		MaxWaitTime:   time.Second,
		Timeout:       10 * time.Second,
		MaxBatchFiles: 10,
		CacheEntries:  16,
	}
}

func newTestService(t *testing.T, opts Options, st Store) (*Service, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	svc, err := NewService(opts, st, m)
	require.NoError(t, err)
	return svc, m
}
