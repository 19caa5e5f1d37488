package helpers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

// maxConcurrentLoads bounds parallel file reads.
const maxConcurrentLoads = 4

// LoadError records one file that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.Path, e.Err) }

func (e LoadError) Unwrap() error { return e.Err }

// LoadDir loads every *.csv file in dir (not recursive), sorted by name.
// A file that fails to load is reported in the returned LoadErrors and does
// not stop the others. The error is non-nil only when dir itself cannot be
// listed or ctx ends.
func LoadDir(ctx context.Context, dir string, logger *zap.Logger) ([]*schema.Table, []LoadError, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read data dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return LoadFiles(ctx, paths, logger)
}

// LoadFiles loads the given CSV files concurrently. Tables come back in the
// order of paths, minus the failures.
func LoadFiles(ctx context.Context, paths []string, logger *zap.Logger) ([]*schema.Table, []LoadError, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("loader")

	start := time.Now()
	tables := make([]*schema.Table, len(paths))
	failures := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				failures[i] = err
				return nil
			}
			t, err := ParseCSV(filepath.Base(path), data)
			if err != nil {
				failures[i] = err
				return nil
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("load tables: %w", err)
	}

	var (
		loaded []*schema.Table
		errs   []LoadError
	)
	for i, t := range tables {
		if failures[i] != nil {
			errs = append(errs, LoadError{Path: paths[i], Err: failures[i]})
			logger.Warn("Skipping unreadable table", zap.String("path", paths[i]), zap.Error(failures[i]))
			continue
		}
		logger.Debug("Loaded table",
			zap.String("dataset", t.Name()),
			zap.Int("rows", t.Len()),
			zap.Int("columns", len(t.Columns())))
		loaded = append(loaded, t)
	}

	logger.Info("Tables loaded",
		zap.Int("loaded", len(loaded)),
		zap.Int("failed", len(errs)),
		zap.Duration("elapsed", time.Since(start)))
	return loaded, errs, nil
}
