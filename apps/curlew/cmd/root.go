package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/curlew-http/curlew/packages/cli"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// exitCode is set by the run and read by Execute after cobra returns.
var exitCode = ExitSuccess

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curlew [options] FILE...",
		Short: "Run HTTP request files",
		Long: `curlew runs plain text files describing HTTP request/response
sequences. Each entry plays a request, checks the expected response and
its assertions, and carries captured values into the following entries.

Examples:
  curlew api.curlew
  curlew --test --glob "tests/**/*.curlew"
  curlew --variable host=example.org login.curlew
  curlew --test --report-junit report.xml api.curlew`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = runFiles(cmd, args)
			return nil
		},
	}

	cli.RegisterFlags(cmd.Flags())
	cmd.MarkFlagsMutuallyExclusive("json", "no-output")
	cmd.MarkFlagsMutuallyExclusive("color", "no-color")
	cmd.MarkFlagsMutuallyExclusive("interactive", "to-entry")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(ExitConfigError)
	}
	os.Exit(exitCode)
}
