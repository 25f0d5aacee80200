package store

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

const schemaSQL = `
CREATE TABLE IF NOT EXISTS bms_analyses (
    id            UUID PRIMARY KEY,
    file_name     TEXT NOT NULL,
    fingerprint   TEXT NOT NULL,
    source        TEXT NOT NULL,
    size_bytes    BIGINT NOT NULL,
    status        TEXT NOT NULL,
    kind          TEXT NOT NULL,
    reason        TEXT,
    header_index  INTEGER NOT NULL,
    row_count     INTEGER NOT NULL,
    comparable    BOOLEAN NOT NULL DEFAULT FALSE,
    metadata      JSONB NOT NULL DEFAULT '{}'::jsonb,
    flags         JSONB NOT NULL DEFAULT '[]'::jsonb,
    error_tally   JSONB NOT NULL DEFAULT '[]'::jsonb,
    warnings      JSONB NOT NULL DEFAULT '[]'::jsonb,
    unavailable   JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS bms_analyses_created_at_idx ON bms_analyses (created_at DESC);
CREATE INDEX IF NOT EXISTS bms_analyses_fingerprint_idx ON bms_analyses (fingerprint);
`

const recordColumns = `id, file_name, fingerprint, source, size_bytes, status, kind, reason,
    header_index, row_count, comparable, metadata, flags, error_tally, warnings,
    unavailable, created_at`

const insertSQL = `INSERT INTO bms_analyses (` + recordColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

const listSQL = `SELECT ` + recordColumns + `
FROM bms_analyses
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2`

const getSQL = `SELECT ` + recordColumns + `
FROM bms_analyses
WHERE id = $1`
