package dirstat

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/dustin/go-humanize"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// isHidden reports whether the entry name follows the dot-file convention.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is done.
// The returned stop function cancels the reporter and waits for it to exit, so
// hook is never called once stop has returned.
//
//nolint:varnamelen // c is idiomatic for collector
func startProgressReporter(ctx context.Context, c *collector, hook func(int64, int64), interval time.Duration) func() {
	if hook == nil {
		return func() {}
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}

				hook(c.snapshot())
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// Files walks the directory tree at opt.Path and returns every regular file
// below it. Symlinks are not followed and never returned.
// Entries starting with a dot are skipped unless opt.Hidden is set.
//
// A missing or unreadable root is returned as an error. Errors on entries
// inside the tree are logged and skipped. The order of the result is
// unspecified.
//
// The walk can be cancelled via ctx. Progress updates are sent to
// progressHook if provided.
func Files(ctx context.Context, opt Options, progressHook func(int64, int64)) ([]File, error) {
	log := opt.Log

	if opt.Path == "" {
		opt.Path = "."
	}

	opt.Path = filepath.Clean(opt.Path)

	// validate path exists and is accessible
	if statInfo, err := os.Stat(opt.Path); err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", opt.Path, err)
	} else if !statInfo.IsDir() {
		return nil, fmt.Errorf("path %q is not a directory", opt.Path)
	}

	collector := newCollector()

	// Create child context to cancel the walk on early return
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stopProgress := startProgressReporter(ctx, collector, progressHook, opt.ProgressInterval)
	defer stopProgress()

	start := time.Now()

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, opt.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == opt.Path {
				return fmt.Errorf("reading root %q: %w", path, err)
			}

			log.Printf("error accessing path %s: %v", path, err)
			collector.addError()

			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if path == opt.Path {
			return nil
		}

		if !opt.Hidden && isHidden(d.Name()) {
			if d.IsDir() {
				log.Printf("skipping hidden directory: %s", filepath.ToSlash(path))

				return filepath.SkipDir
			}

			log.Printf("skipping hidden file: %s", filepath.ToSlash(path))

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			return fmt.Errorf("reading size of %q: %w", path, err)
		}

		collector.add(path, fileInfo.Size())

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %q: %w", opt.Path, walkErr)
	}

	files, errorCount := collector.finalize()

	if log.Enabled() {
		var total int64
		for _, f := range files {
			total += f.Size
		}

		log.Printf("scanned %d files (%s) with %d errors in %v",
			len(files), humanize.IBytes(uint64(total)), errorCount, time.Since(start)) //nolint:gosec // Sizes are never negative
	}

	return files, nil
}
