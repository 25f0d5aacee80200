package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/bmsview/internal/config"
	"github.com/JonMunkholm/bmsview/internal/engine"
	"github.com/JonMunkholm/bmsview/internal/store"
)

var (
	// ErrFileTooLarge is returned for files above Options.MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile is returned by IngestFile for zero-length files, which
	// are usually still being written.
	ErrEmptyFile = errors.New("empty file")

	// ErrNoFiles is returned for a batch without files.
	ErrNoFiles = errors.New("no file provided")

	// ErrTooManyFiles is returned for a batch above Options.MaxBatchFiles.
	ErrTooManyFiles = errors.New("too many files in one request")

	// ErrAnalysisNotFound is returned when a history lookup misses.
	ErrAnalysisNotFound = errors.New("analysis not found")

	// ErrStoreDisabled is returned by history operations without a database.
	ErrStoreDisabled = errors.New("analysis history is disabled")

	// ErrUnrecognized describes an outcome with no recognizable header.
	ErrUnrecognized = errors.New("unrecognized log format")

	// ErrParseFailure describes an outcome whose table could not be read.
	ErrParseFailure = errors.New("parse failure")
)

// OutcomeError returns the error describing a non-recognized outcome, or nil.
func OutcomeError(o engine.Outcome) error {
	switch o.Status {
	case engine.StatusUnrecognized:
		return ErrUnrecognized
	case engine.StatusParseFailure:
		return fmt.Errorf("%w: %s", ErrParseFailure, o.Reason)
	default:
		return nil
	}
}

// File is one log file submitted for analysis.
type File struct {
	Name    string
	Content []byte
}

// Analysis is the service-level result for one file.
type Analysis struct {
	ID          uuid.UUID
	Fingerprint string
	Source      Source
	CreatedAt   time.Time
	Duration    time.Duration

	// Cached is true when the outcome was computed for an earlier or
	// concurrent request with the same content.
	Cached bool

	// Persisted is true when the summary was written to the store.
	Persisted bool

	Outcome engine.Outcome
}

// Result is one slot of a batch: an analysis, or the error that prevented it.
type Result struct {
	FileName string
	Analysis *Analysis
	Err      error
}

// Store is the persistence the service needs. *store.Store satisfies it.
type Store interface {
	Insert(ctx context.Context, rec store.Record) (store.Record, error)
	List(ctx context.Context, limit, offset int) ([]store.Record, error)
	Get(ctx context.Context, id uuid.UUID) (store.Record, error)
	Ping(ctx context.Context) error
}

// Options tunes the service.
type Options struct {
	// MaxFileSize rejects larger files; zero disables the check.
	MaxFileSize int64

	MaxConcurrent int
	MaxWaitTime   time.Duration

	// Timeout bounds one batch; zero means no limit.
	Timeout time.Duration

	// MaxBatchFiles rejects larger batches; zero disables the check.
	MaxBatchFiles int

	// CacheEntries sizes the outcome cache; zero disables caching.
	CacheEntries int

	// ProcessedDir is the subdirectory ingested files are moved into.
	ProcessedDir string
}

// DefaultProcessedDir is used when Options.ProcessedDir is empty.
const DefaultProcessedDir = "Processed"

// OptionsFromConfig maps application configuration onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		MaxFileSize:   cfg.Ingest.MaxFileSize,
		MaxConcurrent: cfg.Ingest.MaxConcurrent,
		MaxWaitTime:   cfg.Ingest.MaxWaitTime,
		Timeout:       cfg.Ingest.Timeout,
		MaxBatchFiles: cfg.Ingest.MaxBatchFiles,
		ProcessedDir:  cfg.Watch.ProcessedDir,
	}
	if cfg.Cache.Enabled {
		opts.CacheEntries = cfg.Cache.MaxEntries
	}
	return opts
}
