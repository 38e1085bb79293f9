// Package report renders per-extension summaries as a fixed-width text
// report and checks such reports against a directory.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/idelchi/extcheck/internal/dirstat"
)

const (
	// BarWidth is the length of the histogram bar of a row holding every file.
	BarWidth = 50
	// BarMark is the character the histogram bar is made of.
	BarMark = "#"
)

// Bar returns the histogram bar for count out of total files.
// Halves round to even. A non-positive total yields an empty bar.
func Bar(count, total int64) string {
	if total <= 0 || count <= 0 {
		return ""
	}

	n := int(math.RoundToEven(BarWidth * float64(count) / float64(total)))

	return strings.Repeat(BarMark, min(n, BarWidth))
}

// RenderRow formats one report line, newline included.
func RenderRow(extension string, size int64, bar string) string {
	return fmt.Sprintf("%5s%14dB%60s\n", extension, size, bar)
}

// Sorted returns a copy of summaries ordered by file count descending.
// Equal counts keep their input order.
func Sorted(summaries []dirstat.Summary) []dirstat.Summary {
	sorted := make([]dirstat.Summary, len(summaries))
	copy(sorted, summaries)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Files > sorted[j].Files
	})

	return sorted
}

// Render returns one line per summary, ordered by file count descending.
// Rows with equal counts keep their input order. No rows are rendered when
// there are no files.
func Render(summaries []dirstat.Summary) []string {
	total := dirstat.Total(summaries)
	if total == 0 {
		return []string{}
	}

	sorted := Sorted(summaries)

	lines := make([]string, 0, len(sorted))
	for _, s := range sorted {
		lines = append(lines, RenderRow(s.Extension, s.Size, Bar(s.Files, total)))
	}

	return lines
}

// Write writes rendered lines to w as they are.
func Write(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	return nil
}
