package store

import (
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/bmsview/internal/engine"
)

// toPgText returns an invalid (NULL) Text for blank strings.
func toPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

// insertArgs orders rec's fields to match recordColumns. Nil collections are
// written as empty JSON values so the NOT NULL columns accept them.
func insertArgs(rec Record) []any {
	metadata := rec.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	flags := rec.Flags
	if flags == nil {
		flags = engine.FlagReport{}
	}
	tally := rec.Errors
	if tally == nil {
		tally = engine.ErrorTally{}
	}
	warnings := rec.Warnings
	if warnings == nil {
		warnings = []engine.Warning{}
	}
	unavailable := rec.Unavailable
	if unavailable == nil {
		unavailable = []string{}
	}

	return []any{
		toPgUUID(rec.ID),
		rec.FileName,
		rec.Fingerprint,
		rec.Source,
		rec.Size,
		rec.Status,
		rec.Kind,
		toPgText(rec.Reason),
		int32(rec.HeaderIndex),
		int32(rec.Rows),
		rec.Comparable,
		metadata,
		flags,
		tally,
		warnings,
		unavailable,
		rec.CreatedAt,
	}
}

// scanRecord reads one row selected with recordColumns.
func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec         Record
		id          pgtype.UUID
		reason      pgtype.Text
		headerIndex int32
		rows        int32
	)
	err := row.Scan(
		&id,
		&rec.FileName,
		&rec.Fingerprint,
		&rec.Source,
		&rec.Size,
		&rec.Status,
		&rec.Kind,
		&reason,
		&headerIndex,
		&rows,
		&rec.Comparable,
		&rec.Metadata,
		&rec.Flags,
		&rec.Errors,
		&rec.Warnings,
		&rec.Unavailable,
		&rec.CreatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	if id.Valid {
		rec.ID = uuid.UUID(id.Bytes)
	}
	if reason.Valid {
		rec.Reason = reason.String
	}
	rec.HeaderIndex = int(headerIndex)
	rec.Rows = int(rows)
	return rec, nil
}
