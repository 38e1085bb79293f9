package report

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/idelchi/extcheck/internal/dirstat"
)

// RowCountMismatch is returned when the reference has a different number of rows.
type RowCountMismatch struct {
	// Expected is the number of freshly computed rows.
	Expected int
	// Got is the number of rows in the reference.
	Got int
}

func (e *RowCountMismatch) Error() string {
	return fmt.Sprintf("Row count doesn't match.\nExpected: %d, got: %d.", e.Expected, e.Got)
}

// LineMismatch is returned for the first reference row that differs.
type LineMismatch struct {
	// Expected is the freshly computed row.
	Expected string
	// Got is the reference row.
	Got string
}

func (e *LineMismatch) Error() string {
	return fmt.Sprintf("Invalid extension data.\n<\"%s\"\n>\"%s\"", e.Expected, e.Got)
}

// IsMismatch reports whether err is a validation failure rather than an
// operational error.
func IsMismatch(err error) bool {
	var rowCount *RowCountMismatch
	var line *LineMismatch

	return errors.As(err, &rowCount) || errors.As(err, &line)
}

// Compare checks that got holds the same lines as expected, in any order.
// Only the first difference is reported.
func Compare(expected, got []string) error {
	if len(expected) != len(got) {
		return &RowCountMismatch{Expected: len(expected), Got: len(got)}
	}

	expected, got = slices.Clone(expected), slices.Clone(got)
	slices.Sort(expected)
	slices.Sort(got)

	for i := range expected {
		if expected[i] != got[i] {
			return &LineMismatch{Expected: expected[i], Got: got[i]}
		}
	}

	return nil
}

// Normalize trims surrounding whitespace from every line.
func Normalize(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.TrimSpace(line)
	}

	return out
}

// ReadLines reads r line by line, without a limit on line length. A trailing
// newline does not start an extra line, an empty line before it does.
func ReadLines(r io.Reader) ([]string, error) {
	reader := bufio.NewReader(r)
	lines := make([]string, 0)

	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading lines: %w", err)
		}

		if line != "" {
			line = strings.TrimSuffix(line, "\n")
			lines = append(lines, strings.TrimSuffix(line, "\r"))
		}

		if err != nil {
			return lines, nil
		}
	}
}

// ReadFile reads the reference report at path.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening report %q: %w", path, err)
	}
	defer f.Close()

	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("reading report %q: %w", path, err)
	}

	return lines, nil
}

// Compute walks opt.Path and returns its summaries and rendered report.
func Compute(ctx context.Context, opt dirstat.Options, progressHook func(int64, int64)) ([]dirstat.Summary, []string, error) {
	files, err := dirstat.Files(ctx, opt, progressHook)
	if err != nil {
		return nil, nil, err
	}

	summaries := dirstat.Aggregate(files)

	return summaries, Render(summaries), nil
}

// Check compares the report at referencePath with the report computed
// from rows. Mismatches are written to out and reported as false; only
// operational errors are returned.
func Check(rows []string, referencePath string, out io.Writer) (bool, error) {
	reference, err := ReadFile(referencePath)
	if err != nil {
		return false, err
	}

	err = Compare(Normalize(rows), Normalize(reference))

	switch {
	case err == nil:
		return true, nil
	case IsMismatch(err):
		//nolint:forbidigo // Mismatch details are part of the command output
		fmt.Fprintln(out, err.Error())

		return false, nil
	default:
		return false, err
	}
}
