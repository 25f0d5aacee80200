// Package store persists analysis summaries in PostgreSQL.
//
// Only summaries are stored: file identity, classification, counts and the
// small derived artifacts (metadata, flags, error tally, warnings). Parsed
// tables are never written; they are recomputed from content on demand.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/bmsview/internal/engine"
)

// ErrNotFound is returned by Get when no summary has the requested ID.
var ErrNotFound = errors.New("analysis not found")

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PoolConfig tunes the connection pool opened by Open.
type PoolConfig struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Record is one persisted analysis summary.
type Record struct {
	ID          uuid.UUID         `json:"id"`
	FileName    string            `json:"file_name"`
	Fingerprint string            `json:"fingerprint"`
	Source      string            `json:"source"`
	Size        int64             `json:"size"`
	Status      string            `json:"status"`
	Kind        string            `json:"kind"`
	Reason      string            `json:"reason,omitempty"`
	HeaderIndex int               `json:"header_index"`
	Rows        int               `json:"rows"`
	Comparable  bool              `json:"comparable"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Flags       engine.FlagReport `json:"flags,omitempty"`
	Errors      engine.ErrorTally `json:"errors,omitempty"`
	Warnings    []engine.Warning  `json:"warnings,omitempty"`
	Unavailable []string          `json:"unavailable,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Store reads and writes analysis summaries.
type Store struct {
	db   DBTX
	pool *pgxpool.Pool
}

// New wraps an existing connection or pool.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Open connects a pool to url and verifies it with a ping.
func Open(ctx context.Context, url string, cfg PoolConfig) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: pool, pool: pool}, nil
}

// Close releases the pool if Open created it.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool != nil {
		return s.pool.Ping(ctx)
	}
	var one int
	return s.db.QueryRow(ctx, "SELECT 1").Scan(&one)
}

// EnsureSchema creates the summary table and its indexes if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Insert writes rec. A zero ID is replaced with a new random one and a zero
// CreatedAt with the current time; the stored values are returned.
func (s *Store) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx, insertSQL, insertArgs(rec)...)
	if err != nil {
		return Record{}, fmt.Errorf("insert analysis %s: %w", rec.FileName, err)
	}
	return rec, nil
}

// List returns summaries newest first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.Query(ctx, listSQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return out, nil
}

// Get returns the summary with the given ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	rec, err := scanRecord(s.db.QueryRow(ctx, getSQL, toPgUUID(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get analysis %s: %w", id, err)
	}
	return rec, nil
}
