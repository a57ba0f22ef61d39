// Package cmd wires the curlewfmt command line onto the formatter
// pipeline.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/curlew-http/curlew/packages/fmtcli"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var exitCode = fmtcli.ExitOK

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curlewfmt [options] FILE",
		Short: "Format and lint .curlew files",
		Long: `curlewfmt formats .curlew files. By default the formatted text is
written to stdout; --in-place rewrites the source file and --check
reports lint findings instead of formatting.

Examples:
  curlewfmt api.curlew
  curlewfmt --in-place api.curlew
  curlewfmt --check api.curlew
  curlewfmt --format html --standalone api.curlew`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = runFormat(cmd, args)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Bool("check", false, "Report lint findings without formatting")
	flags.Bool("color", false, "Colorize output")
	flags.String("format", "text", "Output format: text, json, html or ast")
	flags.Bool("in-place", false, "Rewrite the input file")
	flags.Bool("no-color", false, "Do not colorize output")
	flags.Bool("no-format", false, "Skip the automatic fix-up pass")
	flags.StringP("output", "o", "", "Write output to FILE instead of stdout")
	flags.Bool("standalone", false, "Wrap HTML output in a standalone document")

	cmd.MarkFlagsMutuallyExclusive("check", "format")
	cmd.MarkFlagsMutuallyExclusive("check", "output")
	cmd.MarkFlagsMutuallyExclusive("color", "no-color")
	cmd.MarkFlagsMutuallyExclusive("in-place", "output")
	cmd.MarkFlagsMutuallyExclusive("in-place", "color")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func runFormat(cmd *cobra.Command, args []string) int {
	flags := cmd.Flags()
	opts := fmtcli.RunOptions{}
	if len(args) == 1 {
		opts.Filename = args[0]
	}
	opts.Check, _ = flags.GetBool("check")
	opts.Format, _ = flags.GetString("format")
	opts.InPlace, _ = flags.GetBool("in-place")
	opts.NoFormat, _ = flags.GetBool("no-format")
	opts.Standalone, _ = flags.GetBool("standalone")
	opts.Color, _ = flags.GetBool("color")
	opts.NoColor, _ = flags.GetBool("no-color")
	opts.OutputFile, _ = flags.GetString("output")

	pipeline := fmtcli.NewPipeline(
		fmtcli.WithStdin(cmd.InOrStdin()),
		fmtcli.WithStdout(cmd.OutOrStdout()),
		fmtcli.WithStderr(cmd.ErrOrStderr()),
		fmtcli.WithUsage(func(w io.Writer) {
			fmt.Fprintln(w, cmd.UseLine())
			fmt.Fprintln(w, "try 'curlewfmt --help' for more information")
		}),
	)
	return pipeline.Run(opts)
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(fmtcli.ExitUsage)
	}
	os.Exit(exitCode)
}
