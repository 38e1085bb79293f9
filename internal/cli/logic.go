package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/extcheck/internal/dirstat"
	"github.com/idelchi/extcheck/internal/logger"
	"github.com/idelchi/extcheck/internal/objects"
	"github.com/idelchi/extcheck/internal/report"
)

// isTerminal reports whether the stderr writer is an interactive terminal.
func (c CLI) isTerminal() bool {
	f, ok := c.stderr.(*os.File)

	return ok && isatty.IsTerminal(f.Fd())
}

func (c CLI) logic(ctx context.Context, options Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log := logger.NewWithWriter(options.Debug, c.stderr)

	log.Printf("directory: %s", options.Dir)
	log.Printf("target: %s", options.Target)
	log.Printf("mode: %s", options.Mode)

	var (
		ok  bool
		err error
	)

	switch options.Mode {
	case ModeEasy:
		ok, err = c.checkReport(ctx, options, log)
	case ModeHard:
		ok, err = objects.Check(ctx, options.Target, objects.Placeholder{}, log)
	default:
		return &InvalidModeError{Mode: options.Mode}
	}

	if err != nil {
		return err
	}

	//nolint:forbidigo // Result output to console
	if ok {
		fmt.Fprintln(c.stdout, "All checks OK.")
	} else {
		fmt.Fprintln(c.stdout, "Errors found.")
	}

	return nil
}

func (c CLI) checkReport(ctx context.Context, options Options, log logger.Logger) (bool, error) {
	enableProgress := options.Output == "none" &&
		!options.Debug &&
		c.isTerminal()

	// Simple progress callback that prints directly to stderr
	var progressHook func(files, bytes int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(c.stderr, "\033[?25l")
		defer fmt.Fprint(c.stderr, "\033[?25h")

		progressHook = func(files, bytes int64) {
			msg := fmt.Sprintf("Scanning… %d files, %s",
				files, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(c.stderr, "\r\033[2K%s\r", msg)
		}
	}

	summaries, rows, err := report.Compute(ctx, dirstat.Options{
		Path:   options.Dir,
		Hidden: options.Hidden,
		Log:    log,
	}, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(c.stderr, "\r\033[2K\r")
	}

	if err != nil {
		return false, err
	}

	switch options.Output {
	case "json":
		if err := PrintJSON(summaries, c.stdout); err != nil {
			return false, err
		}
	case "table":
		if err := PrintTable(rows, c.stdout); err != nil {
			return false, err
		}
	}

	return report.Check(rows, options.Target, c.stdout)
}
