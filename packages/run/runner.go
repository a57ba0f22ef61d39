package run

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pkt.systems/pslog"

	"github.com/curlew-http/curlew/packages/cli"
	"github.com/curlew-http/curlew/packages/core/parser"
)

// Runner plays .curlew files against the network according to the
// resolved options.
type Runner struct {
	options *cli.Options
	client  *Client
	logger  pslog.Base
	out     io.Writer
	errOut  io.Writer
	stdin   io.Reader
	visited []string
}

type Option func(*Runner)

func WithLogger(logger pslog.Base) Option {
	return func(r *Runner) { r.logger = logger }
}

func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

func WithErrOutput(w io.Writer) Option {
	return func(r *Runner) { r.errOut = w }
}

func WithStdin(reader io.Reader) Option {
	return func(r *Runner) { r.stdin = reader }
}

func WithClient(client *Client) Option {
	return func(r *Runner) { r.client = client }
}

// New builds a runner. The client is derived from the options unless
// one is injected.
func New(options *cli.Options, opts ...Option) (*Runner, error) {
	r := &Runner{
		options: options,
		out:     os.Stdout,
		errOut:  os.Stderr,
		stdin:   os.Stdin,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		level := pslog.InfoLevel
		if options.Verbose {
			if lvl, ok := pslog.ParseLevel("debug"); ok {
				level = lvl
			}
		}
		r.logger = pslog.NewWithOptions(r.errOut, pslog.Options{MinLevel: level})
	}
	if r.client == nil {
		client, err := NewClient(ClientOptionsFrom(options)...)
		if err != nil {
			return nil, err
		}
		r.client = client
	}
	if options.CookieInputFile != "" {
		if err := r.client.SeedCookies(options.CookieInputFile); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Run executes the given files in order. Read and parse failures abort
// the run and are returned as errors; failed entries are recorded in
// the report instead.
func (r *Runner) Run(ctx context.Context, files []string) (*Report, error) {
	report := newReport()
	started := time.Now()

	for _, file := range files {
		result, err := r.runFile(ctx, file)
		if err != nil {
			return nil, err
		}
		report.Files = append(report.Files, *result)
		if r.options.FailFast && !result.Passed() {
			r.logger.Debug("stopping after first failure", "file", file)
			break
		}
	}
	report.Duration = time.Since(started)

	if r.options.CookieOutputFile != "" {
		if err := r.client.SaveCookies(r.options.CookieOutputFile, r.visited); err != nil {
			return nil, err
		}
	}
	if r.options.Summary {
		writeSummary(r.errOut, report)
	}
	return report, nil
}

func (r *Runner) runFile(ctx context.Context, file string) (*FileResult, error) {
	path := file
	if r.options.FileRoot != "" && !filepath.IsAbs(path) {
		path = filepath.Join(r.options.FileRoot, path)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file %s: %w", path, err)
	}
	parsed, err := parser.Parse(string(contents), file)
	if err != nil {
		return nil, err
	}

	// captures accumulate across entries of one file
	variables := make(map[string]cli.Value, len(r.options.Variables))
	for name, value := range r.options.Variables {
		variables[name] = value
	}

	result := &FileResult{File: file}
	started := time.Now()
	total := len(parsed.Entries)
	for i, entry := range parsed.Entries {
		if r.options.ToEntry != nil && i+1 > *r.options.ToEntry {
			break
		}
		if r.options.Progress {
			fmt.Fprintf(r.errOut, "%s: entry %d/%d\n", file, i+1, total)
		}
		entryResult := r.runEntry(ctx, entry, i, variables)
		result.Entries = append(result.Entries, *entryResult)
		if !entryResult.Passed() && r.options.FailFast {
			break
		}
		if r.options.Interactive && i+1 < total {
			if !r.promptContinue() {
				break
			}
		}
	}
	result.Duration = time.Since(started)
	return result, nil
}

func (r *Runner) runEntry(ctx context.Context, entry *parser.Entry, index int, variables map[string]cli.Value) *EntryResult {
	result := &EntryResult{Index: index + 1, Method: entry.Request.Method}

	request, err := r.buildRequest(entry.Request, variables)
	if err != nil {
		result.URL = entry.Request.URL
		result.Error = err.Error()
		return result
	}
	result.URL = request.URL
	r.visited = append(r.visited, request.URL)

	r.logger.Debug("request", "method", request.Method, "url", request.URL)
	resp, err := r.client.Do(ctx, request)
	if err != nil {
		result.Error = err.Error()
		r.logger.Error("request failed", "method", request.Method, "url", request.URL, "error", err)
		return result
	}
	result.Status = resp.StatusCode
	result.Duration = resp.Duration
	result.Body = resp.Body
	result.Headers = resp.Headers
	result.StatusLine = resp.Status
	r.logger.Debug("response", "status", resp.StatusCode, "duration", resp.Duration.String())

	if entry.Response != nil {
		r.checkResponse(entry.Response, resp, variables, result)
	}
	return result
}

// buildRequest templates the request parts and folds the query string
// and form sections in.
func (r *Runner) buildRequest(req *parser.Request, variables map[string]cli.Value) (*Request, error) {
	target, err := expandTemplate(req.URL, variables)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(req.Headers))
	for _, header := range req.Headers {
		value, err := expandTemplate(header.Value, variables)
		if err != nil {
			return nil, err
		}
		headers[header.Name] = value
	}

	if section := req.Section(parser.SectionQueryStringParams); section != nil {
		values := url.Values{}
		for _, param := range section.Params {
			value, err := expandTemplate(param.Value, variables)
			if err != nil {
				return nil, err
			}
			values.Add(param.Key, value)
		}
		separator := "?"
		if strings.Contains(target, "?") {
			separator = "&"
		}
		target += separator + values.Encode()
	}

	body := ""
	if req.Body != nil {
		if body, err = expandTemplate(req.Body.Text, variables); err != nil {
			return nil, err
		}
	}
	if section := req.Section(parser.SectionFormParams); section != nil {
		values := url.Values{}
		for _, param := range section.Params {
			value, err := expandTemplate(param.Value, variables)
			if err != nil {
				return nil, err
			}
			values.Add(param.Key, value)
		}
		body = values.Encode()
		if _, ok := headers["Content-Type"]; !ok {
			headers["Content-Type"] = "application/x-www-form-urlencoded"
		}
	}

	return &Request{
		Method:  req.Method,
		URL:     target,
		Headers: headers,
		Body:    body,
	}, nil
}

func (r *Runner) checkResponse(expected *parser.Response, resp *Response, variables map[string]cli.Value, result *EntryResult) {
	if expected.Status != 0 {
		implicit := AssertResult{
			Source:    "status",
			Predicate: "==",
			Expected:  fmt.Sprintf("%d", expected.Status),
			Actual:    fmt.Sprintf("%d", resp.StatusCode),
			Passed:    resp.StatusCode == expected.Status,
			Line:      expected.Line,
		}
		if !implicit.Passed {
			implicit.Message = fmt.Sprintf("expected status %d, got %d", expected.Status, resp.StatusCode)
		}
		result.Asserts = append(result.Asserts, implicit)
	}

	if section := expected.Section(parser.SectionAsserts); section != nil && !r.options.IgnoreAsserts {
		for _, assert := range section.Asserts {
			templated := *assert
			if assert.Expected != "" {
				value, err := expandTemplate(assert.Expected, variables)
				if err != nil {
					result.Asserts = append(result.Asserts, AssertResult{
						Source:    assert.Source,
						Arg:       assert.Arg,
						Predicate: assert.Predicate,
						Expected:  assert.Expected,
						Message:   err.Error(),
						Line:      assert.Line,
					})
					continue
				}
				templated.Expected = value
			}
			result.Asserts = append(result.Asserts, evaluateAssert(&templated, resp))
		}
	}

	if section := expected.Section(parser.SectionCaptures); section != nil {
		for _, capture := range section.Captures {
			value, err := evaluateCapture(capture, resp)
			if err != nil {
				result.Error = err.Error()
				continue
			}
			variables[capture.Name] = value
			result.Captures = append(result.Captures, CaptureResult{
				Name:  capture.Name,
				Value: value.Interface(),
				Line:  capture.Line,
			})
		}
	}
}

func (r *Runner) promptContinue() bool {
	fmt.Fprint(r.errOut, "press enter to run the next entry, q to stop: ")
	reader := bufio.NewReader(r.stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(line) != "q"
}
