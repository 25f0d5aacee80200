package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/bmsview/internal/logging"
)

// IngestFile analyzes the file at path and moves it into the processed
// subdirectory next to it. Files that are empty, too large, or could not get
// an analysis slot are left in place so a later scan can retry them.
func (s *Service) IngestFile(ctx context.Context, path string) (*Analysis, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("ingest %s: is a directory", path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("ingest %s: %w", path, ErrEmptyFile)
	}
	if s.opts.MaxFileSize > 0 && info.Size() > s.opts.MaxFileSize {
		s.metrics.ObserveRejected("too_large")
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d",
			ErrFileTooLarge, path, info.Size(), s.opts.MaxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	ctx = ContextWithSource(ctx, SourceWatch)
	a, err := s.Analyze(ctx, File{Name: filepath.Base(path), Content: content})
	if err != nil {
		return nil, err
	}

	dest, err := moveToProcessed(path, s.opts.ProcessedDir)
	logger := logging.ForFile(ctx, a.Outcome.FileName, a.Fingerprint)
	if err != nil {
		logger.Warn("failed to move ingested file", "error", err)
	} else {
		logger.Debug("moved ingested file", "to", dest)
	}
	return a, nil
}

// IngestDir ingests every regular, non-hidden file directly inside dir, in
// name order. The processed subdirectory itself is skipped.
func (s *Service) IngestDir(ctx context.Context, dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var results []Result
	for _, entry := range entries {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		a, err := s.IngestFile(ctx, filepath.Join(dir, entry.Name()))
		if errors.Is(err, ErrEmptyFile) {
			continue
		}
		results = append(results, Result{FileName: entry.Name(), Analysis: a, Err: err})
	}
	return results, nil
}

// moveToProcessed renames path into sub, next to it. An existing file of the
// same name is never overwritten; a numeric suffix is added instead.
func moveToProcessed(path, sub string) (string, error) {
	dir := filepath.Join(filepath.Dir(path), sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	target := filepath.Join(dir, base)
	for n := 1; ; n++ {
		if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
			break
		}
		target = filepath.Join(dir, stem+"-"+strconv.Itoa(n)+ext)
	}

	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("move to %s: %w", target, err)
	}
	return target, nil
}
