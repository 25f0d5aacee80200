package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JonMunkholm/bmsview/internal/store"
)

// persist writes a's summary when a store is configured. A failed write is
// logged and leaves a.Persisted false; the analysis itself still succeeds.
func (s *Service) persist(ctx context.Context, a *Analysis, logger *slog.Logger) {
	if s.store == nil {
		return
	}
	if _, err := s.store.Insert(ctx, a.record()); err != nil {
		logger.Error("failed to save analysis", "id", a.ID, "error", err)
		return
	}
	a.Persisted = true
}

// record converts a to its persisted summary.
func (a *Analysis) record() store.Record {
	o := a.Outcome
	return store.Record{
		ID:          a.ID,
		FileName:    o.FileName,
		Fingerprint: a.Fingerprint,
		Source:      string(a.Source),
		Size:        int64(o.Size),
		Status:      string(o.Status),
		Kind:        string(o.Kind),
		Reason:      o.Reason,
		HeaderIndex: o.HeaderIndex,
		Rows:        rowCount(o),
		Comparable:  o.Comparable(),
		Metadata:    o.Metadata,
		Flags:       o.Flags,
		Errors:      o.Errors,
		Warnings:    o.Warnings,
		Unavailable: o.Unavailable,
		CreatedAt:   a.CreatedAt,
	}
}

// HistoryEnabled reports whether analysis summaries are persisted.
func (s *Service) HistoryEnabled() bool {
	return s.store != nil
}

// History returns persisted summaries, newest first.
func (s *Service) History(ctx context.Context, limit, offset int) ([]store.Record, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	recs, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return recs, nil
}

// GetAnalysis returns one persisted summary by ID.
func (s *Service) GetAnalysis(ctx context.Context, id string) (store.Record, error) {
	if s.store == nil {
		return store.Record{}, ErrStoreDisabled
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return store.Record{}, fmt.Errorf("%w: invalid id %q", ErrAnalysisNotFound, id)
	}
	rec, err := s.store.Get(ctx, parsed)
	if errors.Is(err, store.ErrNotFound) {
		return store.Record{}, fmt.Errorf("%w: %s", ErrAnalysisNotFound, id)
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("get analysis: %w", err)
	}
	return rec, nil
}
