package fmtcli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/curlew-http/curlew/packages/core/parser"
	"github.com/curlew-http/curlew/packages/format"
	"github.com/curlew-http/curlew/packages/lint"
)

// Exit codes of the formatter binary.
const (
	ExitOK    = 0 // clean formatting run
	ExitUsage = 1 // usage errors, invalid options, check findings
	ExitParse = 2 // unreadable input or syntax errors
)

// Render targets accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatHTML = "html"
	FormatAST  = "ast"
)

// RunOptions carries one formatter invocation. Filename "" or "-"
// selects standard input.
type RunOptions struct {
	Filename   string
	Format     string
	Check      bool
	NoFormat   bool
	Standalone bool
	InPlace    bool
	Color      bool
	NoColor    bool
	OutputFile string
}

// Pipeline holds the process-level collaborators. They are injected so
// tests can drive the pipeline without touching real file descriptors.
type Pipeline struct {
	stdin            io.Reader
	stdout           io.Writer
	stderr           io.Writer
	stdinIsTerminal  func() bool
	stdoutIsTerminal func() bool
	usage            func(w io.Writer)
}

type PipelineOption func(*Pipeline)

func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		stdinIsTerminal: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd())
		},
		stdoutIsTerminal: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd())
		},
		usage: func(w io.Writer) {
			fmt.Fprintln(w, "usage: curlewfmt [options] FILE")
			fmt.Fprintln(w, "try 'curlewfmt --help' for more information")
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func WithStdin(r io.Reader) PipelineOption {
	return func(p *Pipeline) { p.stdin = r }
}

func WithStdout(w io.Writer) PipelineOption {
	return func(p *Pipeline) { p.stdout = w }
}

func WithStderr(w io.Writer) PipelineOption {
	return func(p *Pipeline) { p.stderr = w }
}

func WithStdinTerminal(fn func() bool) PipelineOption {
	return func(p *Pipeline) { p.stdinIsTerminal = fn }
}

func WithStdoutTerminal(fn func() bool) PipelineOption {
	return func(p *Pipeline) { p.stdoutIsTerminal = fn }
}

func WithUsage(fn func(w io.Writer)) PipelineOption {
	return func(p *Pipeline) { p.usage = fn }
}

// Run executes one formatter invocation and returns the process exit
// code. Only an output write failure escapes as a panic; everything
// else is reported on stderr and mapped to a code.
func (p *Pipeline) Run(opts RunOptions) int {
	target := opts.Format
	if target == "" {
		target = FormatText
	}
	fromStdin := opts.Filename == "" || opts.Filename == "-"

	if opts.Standalone && target != FormatHTML {
		fmt.Fprintln(p.stderr, "error: --standalone can be used only with html output")
		return ExitUsage
	}
	if opts.InPlace {
		if target != FormatText {
			fmt.Fprintln(p.stderr, "error: --in-place can be used only with text output")
			return ExitUsage
		}
		if fromStdin {
			fmt.Fprintln(p.stderr, "error: --in-place cannot be used when reading from standard input")
			return ExitUsage
		}
	}

	contents, code := p.acquireInput(opts.Filename, fromStdin)
	if code != ExitOK {
		return code
	}
	lines := parser.SplitLines(contents)

	filename := opts.Filename
	if fromStdin {
		filename = "-"
	}
	file, err := parser.Parse(contents, filename)
	if err != nil {
		var parseErr *parser.ParseError
		if errors.As(err, &parseErr) {
			renderParseError(p.stderr, parseErr, lines, p.colorize(opts))
		} else {
			fmt.Fprintf(p.stderr, "error: %s\n", err)
		}
		return ExitParse
	}

	if opts.Check {
		// Check mode always exits 1 so automated pipelines can tell a
		// check run from a formatting run, even with zero findings.
		for _, diag := range lint.Check(file, lines) {
			fmt.Fprintln(p.stderr, diag.String())
		}
		return ExitUsage
	}

	output, code := p.render(file, target, opts)
	if code != ExitOK {
		return code
	}

	destination := ""
	switch {
	case opts.InPlace:
		destination = opts.Filename
	case opts.OutputFile != "":
		destination = opts.OutputFile
	}
	return p.write(destination, output)
}

func (p *Pipeline) acquireInput(filename string, fromStdin bool) (string, int) {
	if fromStdin {
		if filename == "" && p.stdinIsTerminal() {
			p.usage(p.stderr)
			return "", ExitUsage
		}
		data, err := io.ReadAll(p.stdin)
		if err != nil {
			fmt.Fprintf(p.stderr, "error: cannot read standard input: %s\n", err)
			return "", ExitParse
		}
		return string(data), ExitOK
	}

	if _, err := os.Stat(filename); err != nil {
		fmt.Fprintf(p.stderr, "error: input file %s does not exist\n", filename)
		return "", ExitUsage
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(p.stderr, "error: cannot read input file %s: %s\n", filename, err)
		return "", ExitParse
	}
	return string(data), ExitOK
}

func (p *Pipeline) render(file *parser.File, target string, opts RunOptions) (string, int) {
	switch target {
	case FormatText:
		if !opts.NoFormat {
			file = lint.Fix(file)
		}
		return format.Text(file, p.colorize(opts)), ExitOK
	case FormatJSON:
		output, err := format.JSON(file)
		if err != nil {
			fmt.Fprintf(p.stderr, "error: %s\n", err)
			return "", ExitUsage
		}
		return output, ExitOK
	case FormatHTML:
		if opts.Standalone {
			output, err := format.HTMLStandalone(file)
			if err != nil {
				fmt.Fprintf(p.stderr, "error: %s\n", err)
				return "", ExitUsage
			}
			return output, ExitOK
		}
		return format.HTML(file), ExitOK
	case FormatAST:
		return format.Dump(file), ExitOK
	default:
		fmt.Fprintf(p.stderr, "error: invalid output format %s\n", target)
		return "", ExitUsage
	}
}

// colorize decides terminal coloring for text rendering and
// diagnostics. Explicit flags win; in-place and file output never
// color; otherwise follow the stdout terminal probe.
func (p *Pipeline) colorize(opts RunOptions) bool {
	if opts.Color {
		return true
	}
	if opts.NoColor || opts.InPlace || opts.OutputFile != "" {
		return false
	}
	return p.stdoutIsTerminal()
}
