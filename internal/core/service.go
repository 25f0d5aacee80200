package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/bmsview/internal/cache"
	"github.com/JonMunkholm/bmsview/internal/engine"
	"github.com/JonMunkholm/bmsview/internal/logging"
	"github.com/JonMunkholm/bmsview/internal/metrics"
)

// Service analyzes BMS log files and keeps their history.
type Service struct {
	opts    Options
	limiter *AnalysisLimiter
	cache   *cache.Cache[engine.Outcome]
	store   Store
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService creates a Service. st and m may be nil to run without
// persistence or metrics.
func NewService(opts Options, st Store, m *metrics.Metrics) (*Service, error) {
	if opts.ProcessedDir == "" {
		opts.ProcessedDir = DefaultProcessedDir
	}

	limiter := NewAnalysisLimiter(opts.MaxConcurrent, opts.MaxWaitTime)
	if m != nil {
		limiter.OnChange(m.SetInFlight)
	}

	s := &Service{
		opts:    opts,
		limiter: limiter,
		store:   st,
		metrics: m,
		now:     time.Now,
	}

	if opts.CacheEntries > 0 {
		var cacheOpts []cache.Option
		if m != nil {
			cacheOpts = append(cacheOpts, cache.WithMetrics(m.Registerer(), metrics.Namespace))
		}
		c, err := cache.New[engine.Outcome](opts.CacheEntries, cacheOpts...)
		if err != nil {
			return nil, fmt.Errorf("create analysis cache: %w", err)
		}
		s.cache = c
	}

	return s, nil
}

// Analyze runs one file through the engine. The returned error is non-nil
// only when the file was not analyzed at all; unrecognized and unparseable
// files produce an Analysis whose Outcome says so.
func (s *Service) Analyze(ctx context.Context, f File) (*Analysis, error) {
	if s.opts.MaxFileSize > 0 && int64(len(f.Content)) > s.opts.MaxFileSize {
		s.metrics.ObserveRejected("too_large")
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d",
			ErrFileTooLarge, f.Name, len(f.Content), s.opts.MaxFileSize)
	}

	fingerprint := cache.Fingerprint(f.Content)
	logger := logging.ForFile(ctx, f.Name, fingerprint)
	if ip := ClientIPFromContext(ctx); ip != "" {
		logger = logger.With("ip", ip)
	}
	start := time.Now()

	outcome, cached, err := s.outcome(ctx, f, fingerprint)
	if err != nil {
		if errors.Is(err, ErrTooManyAnalyses) {
			s.metrics.ObserveRejected("busy")
		}
		logger.Warn("analysis not started", "error", err)
		return nil, err
	}
	// Cached outcomes keep the name of the file that first produced them.
	outcome.FileName = f.Name

	a := &Analysis{
		ID:          uuid.New(),
		Fingerprint: fingerprint,
		Source:      SourceFromContext(ctx),
		CreatedAt:   s.now().UTC(),
		Duration:    time.Since(start),
		Cached:      cached,
		Outcome:     outcome,
	}

	s.metrics.ObserveAnalysis(string(outcome.Status), string(outcome.Kind),
		rowCount(outcome), warningCodes(outcome.Warnings), a.Duration)

	logger.Info("file analyzed",
		"status", outcome.Status,
		"kind", outcome.Kind,
		"rows", rowCount(outcome),
		"warnings", len(outcome.Warnings),
		"cached", cached,
		"duration_ms", a.Duration.Milliseconds(),
	)
	for _, w := range outcome.Warnings {
		logger.Debug("parse warning", "code", w.Code, "line", w.Line, "column", w.Column, "message", w.Message)
	}

	s.persist(ctx, a, logger)
	return a, nil
}

// outcome returns the engine result for f, computing it at most once per
// fingerprint while it is cached. A limiter slot is held only while the
// engine runs.
func (s *Service) outcome(ctx context.Context, f File, fingerprint string) (engine.Outcome, bool, error) {
	compute := func() (engine.Outcome, error) {
		if err := s.limiter.Acquire(ctx); err != nil {
			return engine.Outcome{}, err
		}
		defer s.limiter.Release()
		return engine.Analyze(f.Name, f.Content), nil
	}

	if s.cache == nil {
		o, err := compute()
		return o, false, err
	}
	for {
		o, shared, err := s.cache.GetOrCompute(fingerprint, compute)
		// A computation shared with another caller ends with that caller's
		// cancellation; run it again under ctx.
		if err != nil && isContextErr(err) && ctx.Err() == nil {
			continue
		}
		return o, shared, err
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// AnalyzeBatch analyzes files concurrently and returns one Result per file
// in input order. Per-file failures are reported in the Result; the error is
// non-nil only when the batch itself is invalid.
func (s *Service) AnalyzeBatch(ctx context.Context, files []File) ([]Result, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if s.opts.MaxBatchFiles > 0 && len(files) > s.opts.MaxBatchFiles {
		s.metrics.ObserveRejected("batch_too_large")
		return nil, fmt.Errorf("%w: %d files, limit is %d", ErrTooManyFiles, len(files), s.opts.MaxBatchFiles)
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	logger := logging.WithFields(ctx, "batch_size", len(files), "source", SourceFromContext(ctx))
	start := time.Now()

	results := make([]Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limiter.MaxConcurrent())
	for i, f := range files {
		g.Go(func() error {
			a, err := s.Analyze(gctx, f)
			results[i] = Result{FileName: f.Name, Analysis: a, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	logger.Info("batch analyzed",
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

// LimiterStatus returns the current analysis slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// CacheStats returns cache statistics; the zero value when caching is off.
func (s *Service) CacheStats() cache.StatsSummary {
	if s.cache == nil {
		return cache.StatsSummary{}
	}
	return s.cache.Stats()
}

// WaitForIdle blocks until no analysis is running or ctx is done. Used for
// graceful shutdown.
func (s *Service) WaitForIdle(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Ready reports whether the service's dependencies are reachable.
func (s *Service) Ready(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Ping(ctx)
}

func rowCount(o engine.Outcome) int {
	if o.Table == nil {
		return 0
	}
	return o.Table.Rows()
}

func warningCodes(ws []engine.Warning) []string {
	if len(ws) == 0 {
		return nil
	}
	codes := make([]string, len(ws))
	for i, w := range ws {
		codes[i] = w.Code
	}
	return codes
}
