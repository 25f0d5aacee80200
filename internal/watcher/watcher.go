// Package watcher analyzes log files dropped into a directory.
//
// Files already present are ingested when Run starts. New files are ingested
// once they have stopped changing for the settle delay, so a copy still in
// progress is not analyzed half-written.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/JonMunkholm/bmsview/internal/core"
	"github.com/JonMunkholm/bmsview/internal/logging"
)

// DefaultSettleDelay is used when New is given a non-positive delay.
const DefaultSettleDelay = 500 * time.Millisecond

// Ingester analyzes files on disk. *core.Service satisfies it.
type Ingester interface {
	IngestFile(ctx context.Context, path string) (*core.Analysis, error)
	IngestDir(ctx context.Context, dir string) ([]core.Result, error)
}

// Watcher feeds files created in one directory to an Ingester.
type Watcher struct {
	dir    string
	settle time.Duration
	ing    Ingester
	fsw    *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*pendingFile
	wg      sync.WaitGroup
}

// pendingFile is a file waiting out its settle delay.
type pendingFile struct {
	timer *time.Timer
}

// New watches dir, creating it if needed.
func New(dir string, settle time.Duration, ing Ingester) (*Watcher, error) {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create watch dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:     dir,
		settle:  settle,
		ing:     ing,
		fsw:     fsw,
		pending: make(map[string]*pendingFile),
	}, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run ingests the files already in the directory, then handles events until
// ctx is canceled. Pending files are dropped and in-flight ingests finish
// before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	defer w.wg.Wait()
	defer w.stopPending()

	logger := logging.FromContext(ctx).With("dir", w.dir)
	logger.Info("watching for log files", "settle", w.settle)

	results, err := w.ing.IngestDir(ctx, w.dir)
	if err != nil && ctx.Err() == nil {
		logger.Error("initial scan failed", "error", err)
	}
	for _, r := range results {
		logResult(logger, r.FileName, r.Analysis, r.Err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.schedule(ctx, ev.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.pending[path]; ok && p.timer.Stop() {
		p.timer.Reset(w.settle)
		return
	}

	p := &pendingFile{}
	w.wg.Add(1)
	p.timer = time.AfterFunc(w.settle, func() {
		defer w.wg.Done()
		w.fire(ctx, path, p)
	})
	w.pending[path] = p
}

func (w *Watcher) fire(ctx context.Context, path string, p *pendingFile) {
	w.mu.Lock()
	if w.pending[path] == p {
		delete(w.pending, path)
	}
	w.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	logger := logging.FromContext(ctx).With("dir", w.dir)
	a, err := w.ing.IngestFile(ctx, path)
	if errors.Is(err, core.ErrEmptyFile) {
		return
	}
	logResult(logger, filepath.Base(path), a, err)
}

// stopPending cancels timers that have not fired yet.
func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, p := range w.pending {
		if p.timer.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
}

func logResult(logger *slog.Logger, name string, a *core.Analysis, err error) {
	if err != nil {
		logger.Warn("ingest failed", "file", name, "error", err)
		return
	}
	logger.Info("ingested log file",
		"file", name,
		"id", a.ID,
		"status", a.Outcome.Status,
		"kind", a.Outcome.Kind,
	)
}
