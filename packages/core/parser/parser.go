package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseError reports a syntax error with its 1-based position.
type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// SplitLines splits source text into lines, tolerating both bare and
// carriage-return-prefixed line feeds.
func SplitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Parse parses source text. filename is used for error reporting only.
func Parse(input, filename string) (*File, error) {
	return ParseLines(SplitLines(input), filename)
}

// ParseLines parses pre-split source lines.
func ParseLines(lines []string, filename string) (*File, error) {
	p := &parser{lines: lines, file: filename}
	return p.parseFile()
}

var httpMethods = map[string]bool{
	"GET": true, "HEAD": true, "POST": true, "PUT": true, "DELETE": true,
	"CONNECT": true, "OPTIONS": true, "TRACE": true, "PATCH": true,
}

var (
	headerPattern   = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9_.-]*):\s*(.*)$`)
	sectionPattern  = regexp.MustCompile(`^\[([A-Za-z]+)\]\s*$`)
	responsePattern = regexp.MustCompile(`^HTTP(?:/[0-9.]+)?\s+(\d{3})\s*$`)
)

var requestSections = map[string]bool{
	SectionQueryStringParams: true,
	SectionFormParams:        true,
	SectionOptions:           true,
}

var responseSections = map[string]bool{
	SectionAsserts:  true,
	SectionCaptures: true,
}

var assertSources = map[string]bool{
	"status": true, "duration": true, "body": true, "header": true, "jsonpath": true,
}

var assertPredicates = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"contains": true, "exists": true, "startswith": true, "endswith": true,
	"matches": true,
}

type parser struct {
	lines []string
	pos   int
	file  string
}

func (p *parser) eof() bool    { return p.pos >= len(p.lines) }
func (p *parser) line() string { return p.lines[p.pos] }
func (p *parser) lineno() int  { return p.pos + 1 }
func (p *parser) next()        { p.pos++ }

func (p *parser) skipBlank() {
	for !p.eof() && strings.TrimSpace(p.line()) == "" {
		p.next()
	}
}

func (p *parser) errf(lineno int, format string, args ...any) *ParseError {
	column := 1
	if lineno-1 < len(p.lines) {
		line := p.lines[lineno-1]
		column = len(line) - len(strings.TrimLeft(line, " \t")) + 1
	}
	return &ParseError{
		File:    p.file,
		Line:    lineno,
		Column:  column,
		Message: fmt.Sprintf(format, args...),
	}
}

func (p *parser) parseFile() (*File, error) {
	file := &File{Path: p.file}
	for {
		entry, err := p.parseEntry()
		if err != nil {
			return nil, err
		}
		if entry == nil {
			break
		}
		file.Entries = append(file.Entries, entry)
	}
	return file, nil
}

// parseEntry returns nil when only blank lines or trailing comments remain.
func (p *parser) parseEntry() (*Entry, error) {
	entry := &Entry{}
	for !p.eof() {
		trimmed := strings.TrimSpace(p.line())
		if trimmed == "" {
			p.next()
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			entry.Comments = append(entry.Comments, strings.TrimSpace(strings.TrimPrefix(trimmed, "#")))
			p.next()
			continue
		}
		break
	}
	if p.eof() {
		return nil, nil
	}

	entry.Line = p.lineno()
	method, rest, ok := methodLine(p.line())
	if !ok {
		return nil, p.errf(p.lineno(), "expecting an HTTP method, got %q", firstWord(p.line()))
	}
	if rest == "" {
		return nil, p.errf(p.lineno(), "expecting a url after method %s", method)
	}
	request := &Request{Method: method, URL: rest, Line: p.lineno()}
	p.next()

	var err error
	if request.Headers, err = p.parseHeaders(); err != nil {
		return nil, err
	}
	if request.Sections, err = p.parseSections(requestSections); err != nil {
		return nil, err
	}
	if request.Body, err = p.parseBody(); err != nil {
		return nil, err
	}
	entry.Request = request

	p.skipBlank()
	if !p.eof() && strings.HasPrefix(strings.TrimSpace(p.line()), "HTTP") {
		response, err := p.parseResponse()
		if err != nil {
			return nil, err
		}
		entry.Response = response
	}
	return entry, nil
}

func (p *parser) parseResponse() (*Response, error) {
	trimmed := strings.TrimSpace(p.line())
	m := responsePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return nil, p.errf(p.lineno(), "expecting a status code after HTTP")
	}
	status, _ := strconv.Atoi(m[1])
	response := &Response{Status: status, Line: p.lineno()}
	p.next()

	var err error
	if response.Headers, err = p.parseHeaders(); err != nil {
		return nil, err
	}
	if response.Sections, err = p.parseSections(responseSections); err != nil {
		return nil, err
	}
	if response.Body, err = p.parseBody(); err != nil {
		return nil, err
	}
	return response, nil
}

func (p *parser) parseHeaders() ([]*Header, error) {
	var headers []*Header
	for !p.eof() {
		trimmed := strings.TrimSpace(p.line())
		if isMethodStart(trimmed) || isResponseStart(trimmed) {
			break
		}
		m := headerPattern.FindStringSubmatch(trimmed)
		if m == nil {
			break
		}
		headers = append(headers, &Header{
			Name:  m[1],
			Value: strings.TrimSpace(m[2]),
			Line:  p.lineno(),
		})
		p.next()
	}
	return headers, nil
}

func (p *parser) parseSections(allowed map[string]bool) ([]*Section, error) {
	var sections []*Section
	for {
		p.skipBlank()
		if p.eof() || !strings.HasPrefix(strings.TrimSpace(p.line()), "[") {
			return sections, nil
		}
		trimmed := strings.TrimSpace(p.line())
		m := sectionPattern.FindStringSubmatch(trimmed)
		if m == nil {
			return nil, p.errf(p.lineno(), "malformed section line %q", trimmed)
		}
		name := m[1]
		if !allowed[name] {
			return nil, p.errf(p.lineno(), "unknown section [%s]", name)
		}
		section := &Section{Name: name, Line: p.lineno()}
		p.next()
		if err := p.parseSectionBody(section); err != nil {
			return nil, err
		}
		sections = append(sections, section)
	}
}

func (p *parser) parseSectionBody(section *Section) error {
	for !p.eof() {
		trimmed := strings.TrimSpace(p.line())
		if trimmed == "" || strings.HasPrefix(trimmed, "[") ||
			isMethodStart(trimmed) || isResponseStart(trimmed) {
			return nil
		}
		if strings.HasPrefix(trimmed, "#") {
			p.next()
			continue
		}
		switch section.Name {
		case SectionAsserts:
			assert, err := p.parseAssertLine(trimmed, p.lineno())
			if err != nil {
				return err
			}
			section.Asserts = append(section.Asserts, assert)
		case SectionCaptures:
			capture, err := p.parseCaptureLine(trimmed, p.lineno())
			if err != nil {
				return err
			}
			section.Captures = append(section.Captures, capture)
		default:
			key, value, found := strings.Cut(trimmed, ":")
			if !found || strings.TrimSpace(key) == "" {
				return p.errf(p.lineno(), "expecting key: value in [%s]", section.Name)
			}
			section.Params = append(section.Params, &Param{
				Key:   strings.TrimSpace(key),
				Value: strings.TrimSpace(value),
				Line:  p.lineno(),
			})
		}
		p.next()
	}
	return nil
}

func (p *parser) parseAssertLine(line string, lineno int) (*Assert, error) {
	tokens := splitTokens(line)
	if len(tokens) == 0 {
		return nil, p.errf(lineno, "empty assert line")
	}
	assert := &Assert{Source: tokens[0], Line: lineno}
	if !assertSources[assert.Source] {
		return nil, p.errf(lineno, "unknown assert source %q", assert.Source)
	}
	rest := tokens[1:]
	if assert.Source == "header" || assert.Source == "jsonpath" {
		if len(rest) == 0 {
			return nil, p.errf(lineno, "expecting an argument after %q", assert.Source)
		}
		assert.Arg = rest[0]
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return nil, p.errf(lineno, "expecting a predicate in assert")
	}
	if !assertPredicates[rest[0]] {
		return nil, p.errf(lineno, "unknown predicate %q", rest[0])
	}
	assert.Predicate = rest[0]
	rest = rest[1:]
	if assert.Predicate != "exists" {
		if len(rest) == 0 {
			return nil, p.errf(lineno, "expecting a value after %q", assert.Predicate)
		}
		assert.Expected = strings.Join(rest, " ")
	}
	return assert, nil
}

func (p *parser) parseCaptureLine(line string, lineno int) (*Capture, error) {
	name, rhs, found := strings.Cut(line, ":")
	if !found || strings.TrimSpace(name) == "" {
		return nil, p.errf(lineno, "expecting name: source in [Captures]")
	}
	tokens := splitTokens(strings.TrimSpace(rhs))
	if len(tokens) == 0 {
		return nil, p.errf(lineno, "expecting a capture source for %q", strings.TrimSpace(name))
	}
	capture := &Capture{Name: strings.TrimSpace(name), Source: tokens[0], Line: lineno}
	if !assertSources[capture.Source] {
		return nil, p.errf(lineno, "unknown capture source %q", capture.Source)
	}
	if capture.Source == "header" || capture.Source == "jsonpath" {
		if len(tokens) < 2 {
			return nil, p.errf(lineno, "expecting an argument after %q", capture.Source)
		}
		capture.Arg = tokens[1]
	}
	return capture, nil
}

func (p *parser) parseBody() (*Body, error) {
	p.skipBlank()
	if p.eof() {
		return nil, nil
	}
	trimmed := strings.TrimSpace(p.line())
	if strings.HasPrefix(trimmed, "```") {
		return p.parseFencedBody()
	}
	if isMethodStart(trimmed) || isResponseStart(trimmed) ||
		strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "[") {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "HTTP/") || trimmed == "HTTP" || strings.HasPrefix(trimmed, "HTTP ") {
		return nil, p.errf(p.lineno(), "expecting a status code after HTTP")
	}

	body := &Body{Line: p.lineno()}
	var lines []string
	for !p.eof() {
		raw := p.line()
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || isMethodStart(trimmed) || isResponseStart(trimmed) {
			break
		}
		lines = append(lines, raw)
		p.next()
	}
	body.Text = strings.Join(lines, "\n")
	return body, nil
}

func (p *parser) parseFencedBody() (*Body, error) {
	body := &Body{
		Fenced: true,
		Lang:   strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p.line()), "```")),
		Line:   p.lineno(),
	}
	fenceLine := p.lineno()
	p.next()
	var lines []string
	for {
		if p.eof() {
			return nil, p.errf(fenceLine, "unclosed body block")
		}
		if strings.TrimSpace(p.line()) == "```" {
			p.next()
			break
		}
		lines = append(lines, p.line())
		p.next()
	}
	body.Text = strings.Join(lines, "\n")
	return body, nil
}

func methodLine(line string) (method, rest string, ok bool) {
	trimmed := strings.TrimSpace(line)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return "", "", false
	}
	if !httpMethods[strings.ToUpper(fields[0])] {
		return "", "", false
	}
	return fields[0], strings.TrimSpace(trimmed[len(fields[0]):]), true
}

func isMethodStart(trimmed string) bool {
	_, _, ok := methodLine(trimmed)
	return ok
}

func isResponseStart(trimmed string) bool {
	return responsePattern.MatchString(trimmed)
}

func firstWord(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// splitTokens splits on whitespace while keeping double-quoted groups
// together. The quotes themselves are stripped.
func splitTokens(s string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case (c == ' ' || c == '\t') && !inQuotes:
			flush()
		default:
			current.WriteByte(c)
		}
	}
	flush()
	return tokens
}
