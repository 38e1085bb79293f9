package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/idelchi/extcheck/internal/dirstat"
	"github.com/idelchi/extcheck/internal/report"
)

// jsonReport is the JSON form of a computed report.
type jsonReport struct {
	TotalFiles int64             `json:"total_files"`
	Extensions []dirstat.Summary `json:"extensions"`
}

// PrintJSON outputs the summaries in JSON format, in report order.
func PrintJSON(summaries []dirstat.Summary, writer io.Writer) error {
	data, err := json.MarshalIndent(jsonReport{
		TotalFiles: dirstat.Total(summaries),
		Extensions: report.Sorted(summaries),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintTable outputs the rendered report followed by a separator line.
func PrintTable(rows []string, writer io.Writer) error {
	if err := report.Write(writer, rows); err != nil {
		return err
	}

	//nolint:forbidigo // This function prints output to the console.
	if _, err := fmt.Fprintln(writer); err != nil {
		return err
	}

	return nil
}
