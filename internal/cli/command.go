package cli

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

// Modes accepted as the third positional argument.
const (
	ModeEasy = "easy"
	ModeHard = "hard"
)

// InvalidModeError is returned for a mode other than easy or hard.
type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return `Invalid option value: only "easy" (default)/"hard" version allowed.`
}

// Options holds the parsed command line.
type Options struct {
	// Dir is the directory whose report is computed.
	Dir string
	// Target is the reference report (easy) or the database (hard).
	Target string
	// Mode is either ModeEasy or ModeHard.
	Mode string
	// Output selects an additional dump of the computed report.
	Output string
	// Hidden includes dot-files and dot-directories.
	Hidden bool
	// Debug enables debug output.
	Debug bool
}

// CLI represents the command-line interface.
type CLI struct {
	version string
	stdout  io.Writer
	stderr  io.Writer
}

// New creates a new CLI instance with the given version, writing to the
// process's standard streams.
func New(version string) CLI {
	return CLI{version: version, stdout: os.Stdout, stderr: os.Stderr}
}

// WithOutput returns a copy of the CLI writing to the given streams.
func (c CLI) WithOutput(stdout, stderr io.Writer) CLI {
	c.stdout = stdout
	c.stderr = stderr

	return c
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().Execute()
}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	var options Options

	allowedOutputs := []string{"none", "table", "json"}

	cmd := &cobra.Command{
		Use:   "extcheck [flags] operating_dir output_file [easy|hard]",
		Short: "Check a per-extension size report against a directory",
		Long: heredoc.Doc(`
			extcheck computes, for every file extension below operating_dir, the
			total size and the number of files, and checks the result.

			Modes:
			  easy (default)  output_file is a report to compare with the computed one.
			                  Each line holds the extension, the size in bytes and a
			                  bar of up to 50 '#' proportional to the file count.
			                  Line order does not matter.
			  hard            output_file is a SQLite database holding the objects,
			                  cardinality and checksums tables.

			Files and directories starting with a dot are skipped unless --hidden is set.
		`),
		Args:          cobra.RangeArgs(2, 3), //nolint:mnd // Positional argument count
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Dir = args[0]
			options.Target = args[1]
			options.Mode = ModeEasy

			if len(args) == 3 { //nolint:mnd // Optional mode argument
				options.Mode = args[2]
			}

			if options.Mode != ModeEasy && options.Mode != ModeHard {
				return &InvalidModeError{Mode: options.Mode}
			}

			if !slices.Contains(allowedOutputs, options.Output) {
				return fmt.Errorf("invalid output format %q: must be one of %v", options.Output, allowedOutputs)
			}

			return c.logic(cmd.Context(), options)
		},
	}

	cmd.SetOut(c.stdout)
	cmd.SetErr(c.stderr)
	cmd.SetVersionTemplate("{{.Version}}\n")

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.StringVarP(&options.Output, "output", "o", "none",
		"Also print the computed report: none, table or json")
	flags.BoolVar(&options.Hidden, "hidden", false, "Include files and directories starting with a dot")
	flags.BoolVar(&options.Debug, "debug", false, "Enable debug output")

	return cmd
}
