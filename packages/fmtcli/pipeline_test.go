package fmtcli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	pipeline *Pipeline
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
}

func newFixture(stdin string) *pipelineFixture {
	f := &pipelineFixture{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	f.pipeline = NewPipeline(
		WithStdin(strings.NewReader(stdin)),
		WithStdout(f.stdout),
		WithStderr(f.stderr),
		WithStdinTerminal(func() bool { return false }),
		WithStdoutTerminal(func() bool { return false }),
	)
	return f
}

func writeSource(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api.curlew")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRunFormatsFileToStdout(t *testing.T) {
	path := writeSource(t, "get https://example.org\nHTTP 200\n")
	f := newFixture("")

	code := f.pipeline.Run(RunOptions{Filename: path})

	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "GET https://example.org\nHTTP 200\n", f.stdout.String())
	assert.Empty(t, f.stderr.String())
}

func TestRunNoFormatKeepsInput(t *testing.T) {
	path := writeSource(t, "get https://example.org\n")
	f := newFixture("")

	code := f.pipeline.Run(RunOptions{Filename: path, NoFormat: true})

	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "get https://example.org\n", f.stdout.String())
}

func TestRunReadsStdin(t *testing.T) {
	f := newFixture("GET https://example.org\n")

	code := f.pipeline.Run(RunOptions{Filename: "-"})

	assert.Equal(t, ExitOK, code)
	assert.Equal(t, "GET https://example.org\n", f.stdout.String())
}

func TestRunInteractiveStdinPrintsUsage(t *testing.T) {
	f := newFixture("")
	f.pipeline.stdinIsTerminal = func() bool { return true }

	code := f.pipeline.Run(RunOptions{})

	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, f.stderr.String(), "usage: curlewfmt")
	assert.Empty(t, f.stdout.String())
}

func TestRunMissingFile(t *testing.T) {
	f := newFixture("")

	code := f.pipeline.Run(RunOptions{Filename: "/nonexistent/api.curlew"})

	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, f.stderr.String(), "does not exist")
}

func TestRunParseErrorExitsTwo(t *testing.T) {
	path := writeSource(t, "GET https://example.org\nHTTP abc\n")
	f := newFixture("")

	code := f.pipeline.Run(RunOptions{Filename: path})

	assert.Equal(t, ExitParse, code)
	assert.Contains(t, f.stderr.String(), "error: expecting a status code after HTTP")
	assert.Contains(t, f.stderr.String(), "-->")
	assert.Contains(t, f.stderr.String(), "HTTP abc")
	assert.Contains(t, f.stderr.String(), "^")
	assert.Empty(t, f.stdout.String())
}

func TestRunCheckCleanFileStillExitsOne(t *testing.T) {
	path := writeSource(t, "GET https://example.org\n")
	f := newFixture("")

	code := f.pipeline.Run(RunOptions{Filename: path, Check: true})

	assert.Equal(t, ExitUsage, code)
	assert.Empty(t, f.stderr.String())
	assert.Empty(t, f.stdout.String())
}

func TestRunCheckLogsFindings(t *testing.T) {
	path := writeSource(t, "get https://example.org\n")
	f := newFixture("")

	code := f.pipeline.Run(RunOptions{Filename: path, Check: true})

	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, f.stderr.String(), "method-case")
	assert.Empty(t, f.stdout.String())
}

func TestRunStandaloneRequiresHTML(t *testing.T) {
	for _, target := range []string{"", "text", "json", "ast"} {
		f := newFixture("")
		code := f.pipeline.Run(RunOptions{Filename: "-", Format: target, Standalone: true})
		assert.Equal(t, ExitUsage, code, "format %q", target)
		assert.Contains(t, f.stderr.String(), "--standalone")
	}
}

func TestRunStandaloneHTML(t *testing.T) {
	path := writeSource(t, "GET https://example.org\n")
	f := newFixture("")

	code := f.pipeline.Run(RunOptions{Filename: path, Format: "html", Standalone: true})

	assert.Equal(t, ExitOK, code)
	assert.Contains(t, f.stdout.String(), "<!DOCTYPE html>")
}

func TestRunHTMLFragment(t *testing.T) {
	path := writeSource(t, "GET https://example.org\n")
	f := newFixture("")

	code := f.pipeline.Run(RunOptions{Filename: path, Format: "html"})

	assert.Equal(t, ExitOK, code)
	assert.True(t, strings.HasPrefix(f.stdout.String(), "<pre><code"))
}

func TestRunInPlaceRequiresTextAndFile(t *testing.T) {
	f := newFixture("")
	code := f.pipeline.Run(RunOptions{Filename: "api.curlew", Format: "json", InPlace: true})
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, f.stderr.String(), "text output")

	f = newFixture("GET https://example.org\n")
	code = f.pipeline.Run(RunOptions{Filename: "-", InPlace: true})
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, f.stderr.String(), "standard input")

	f = newFixture("GET https://example.org\n")
	code = f.pipeline.Run(RunOptions{InPlace: true})
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, f.stderr.String(), "standard input")
}

func TestRunInPlaceRewritesSource(t *testing.T) {
	path := writeSource(t, "get https://example.org\n")
	f := newFixture("")

	code := f.pipeline.Run(RunOptions{Filename: path, InPlace: true})

	assert.Equal(t, ExitOK, code)
	rewritten, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "GET https://example.org\n", string(rewritten))
	assert.Empty(t, f.stdout.String())
}

func TestRunOutputFile(t *testing.T) {
	path := writeSource(t, "GET https://example.org\n")
	out := filepath.Join(t.TempDir(), "formatted.curlew")
	f := newFixture("")

	code := f.pipeline.Run(RunOptions{Filename: path, OutputFile: out})

	assert.Equal(t, ExitOK, code)
	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "GET https://example.org\n", string(written))
}

func TestRunOutputFileCreateFailure(t *testing.T) {
	path := writeSource(t, "GET https://example.org\n")
	f := newFixture("")

	code := f.pipeline.Run(RunOptions{Filename: path, OutputFile: "/nonexistent/dir/out.curlew"})

	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, f.stderr.String(), "cannot create output file")
}

func TestRunJSONFormat(t *testing.T) {
	path := writeSource(t, "GET https://example.org\n")
	f := newFixture("")

	code := f.pipeline.Run(RunOptions{Filename: path, Format: "json"})

	assert.Equal(t, ExitOK, code)
	assert.Contains(t, f.stdout.String(), `"method": "GET"`)
}

func TestRunASTFormat(t *testing.T) {
	path := writeSource(t, "GET https://example.org\n")
	f := newFixture("")

	code := f.pipeline.Run(RunOptions{Filename: path, Format: "ast"})

	assert.Equal(t, ExitOK, code)
	assert.Contains(t, f.stdout.String(), "Method")
}

func TestRunInvalidFormat(t *testing.T) {
	path := writeSource(t, "GET https://example.org\n")
	f := newFixture("")

	code := f.pipeline.Run(RunOptions{Filename: path, Format: "yaml"})

	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, f.stderr.String(), "invalid output format yaml")
}

func TestColorDecision(t *testing.T) {
	p := NewPipeline(WithStdoutTerminal(func() bool { return true }))
	assert.True(t, p.colorize(RunOptions{}))
	assert.False(t, p.colorize(RunOptions{NoColor: true}))
	assert.False(t, p.colorize(RunOptions{InPlace: true}))
	assert.False(t, p.colorize(RunOptions{OutputFile: "out"}))
	assert.True(t, p.colorize(RunOptions{Color: true, InPlace: true}))

	p = NewPipeline(WithStdoutTerminal(func() bool { return false }))
	assert.False(t, p.colorize(RunOptions{}))
	assert.True(t, p.colorize(RunOptions{Color: true}))
}
