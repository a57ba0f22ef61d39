package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/curlew-http/curlew/packages/cli"
	"github.com/curlew-http/curlew/packages/core/parser"
	"github.com/curlew-http/curlew/packages/run"
)

func runFiles(cmd *cobra.Command, args []string) int {
	options, err := cli.NewResolver().Resolve(cmd.Flags())
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err)
		return ExitConfigError
	}

	files := append([]string(nil), args...)
	files = append(files, options.GlobFiles...)
	if len(files) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "error: no input files")
		fmt.Fprintln(cmd.ErrOrStderr(), "try 'curlew --help' for more information")
		return ExitConfigError
	}

	execute := func() int { return executeRun(cmd, options, files) }
	code := execute()

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		if err := watchLoop(cmd, files, execute); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err)
			return ExitRuntimeError
		}
	}
	return code
}

func executeRun(cmd *cobra.Command, options *cli.Options, files []string) int {
	runner, err := run.New(options,
		run.WithOutput(cmd.OutOrStdout()),
		run.WithErrOutput(cmd.ErrOrStderr()),
		run.WithStdin(cmd.InOrStdin()),
	)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err)
		return ExitConfigError
	}

	report, err := runner.Run(cmd.Context(), files)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err)
		var parseErr *parser.ParseError
		if errors.As(err, &parseErr) || errors.Is(err, os.ErrNotExist) {
			return ExitParseError
		}
		return ExitRuntimeError
	}

	if options.JUnitFile != "" {
		if err := report.WriteJUnit(options.JUnitFile); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err)
			return ExitRuntimeError
		}
	}
	if options.HTMLDir != "" {
		if _, err := report.WriteHTML(options.HTMLDir); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err)
			return ExitRuntimeError
		}
	}

	if err := writeRunOutput(cmd, options, report); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err)
		return ExitRuntimeError
	}

	if report.Passed() {
		return ExitSuccess
	}
	return ExitRunFailure
}

// writeRunOutput emits the final output selected by the output mode:
// nothing but the console report in test mode, the JSON report, or the
// last response body.
func writeRunOutput(cmd *cobra.Command, options *cli.Options, report *run.Report) error {
	switch options.OutputType {
	case cli.OutputNone:
		run.NewConsole(cmd.OutOrStdout(), options.Color).WriteReport(report)
		return nil
	case cli.OutputJSON:
		data, err := report.JSON()
		if err != nil {
			return err
		}
		return writeBytes(cmd, options.Output, data)
	default:
		entry := lastEntry(report)
		if entry == nil {
			return nil
		}
		var data []byte
		if options.Include {
			data = append(data, "HTTP "+entry.StatusLine+"\n"...)
			names := make([]string, 0, len(entry.Headers))
			for name := range entry.Headers {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				data = append(data, name+": "+entry.Headers[name]+"\n"...)
			}
			data = append(data, '\n')
		}
		data = append(data, entry.Body...)
		return writeBytes(cmd, options.Output, data)
	}
}

func writeBytes(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create output file %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("cannot write output file %s: %w", path, err)
	}
	return nil
}

// lastEntry returns the final executed entry holding a response.
func lastEntry(report *run.Report) *run.EntryResult {
	for i := len(report.Files) - 1; i >= 0; i-- {
		entries := report.Files[i].Entries
		for j := len(entries) - 1; j >= 0; j-- {
			if entries[j].Error == "" {
				return &entries[j]
			}
		}
	}
	return nil
}

