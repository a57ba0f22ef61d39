// Package lint checks parsed .curlew files for style problems and
// produces the canonical form used by the text formatter.
package lint

import (
	"fmt"
	"strings"

	"github.com/curlew-http/curlew/packages/core/parser"
)

// Diagnostic is a single lint finding.
type Diagnostic struct {
	File    string
	Line    int
	Rule    string
	Message string
}

func (d Diagnostic) String() string {
	position := fmt.Sprintf("%d", d.Line)
	if d.File != "" {
		position = d.File + ":" + position
	}
	return fmt.Sprintf("%s: %s (%s)", position, d.Message, d.Rule)
}

// Check inspects the parsed file and its raw source lines and reports every
// finding. A clean file yields an empty slice.
func Check(file *parser.File, lines []string) []Diagnostic {
	var diags []Diagnostic
	add := func(line int, rule, format string, args ...any) {
		diags = append(diags, Diagnostic{
			File:    file.Path,
			Line:    line,
			Rule:    rule,
			Message: fmt.Sprintf(format, args...),
		})
	}

	for _, entry := range file.Entries {
		request := entry.Request
		if upper := strings.ToUpper(request.Method); request.Method != upper {
			add(request.Line, "method-case", "method %s should be %s", request.Method, upper)
		}
		checkHeaders(request.Headers, add)
		checkSections(request.Sections, add)
		if entry.Response != nil {
			checkHeaders(entry.Response.Headers, add)
			checkSections(entry.Response.Sections, add)
		}
	}

	blank := 0
	for i, line := range lines {
		if trimmed := strings.TrimRight(line, " \t"); trimmed != line {
			add(i+1, "trailing-space", "trailing whitespace")
		}
		if strings.TrimSpace(line) == "" {
			blank++
			if blank == 2 {
				add(i+1, "blank-lines", "more than one consecutive blank line")
			}
		} else {
			blank = 0
		}
	}

	return diags
}

func checkHeaders(headers []*parser.Header, add func(int, string, string, ...any)) {
	seen := make(map[string]bool)
	for _, header := range headers {
		key := strings.ToLower(header.Name)
		if seen[key] {
			add(header.Line, "duplicate-header", "header %s is set more than once", header.Name)
		}
		seen[key] = true
	}
}

func checkSections(sections []*parser.Section, add func(int, string, string, ...any)) {
	for _, section := range sections {
		if len(section.Params) == 0 && len(section.Asserts) == 0 && len(section.Captures) == 0 {
			add(section.Line, "empty-section", "section [%s] is empty", section.Name)
		}
	}
}

// Fix returns a canonicalized deep copy of the file: methods uppercased,
// header and param values trimmed, empty sections dropped. The input is
// left untouched.
func Fix(file *parser.File) *parser.File {
	fixed := &parser.File{Path: file.Path}
	for _, entry := range file.Entries {
		fixed.Entries = append(fixed.Entries, &parser.Entry{
			Comments: append([]string(nil), entry.Comments...),
			Request:  fixRequest(entry.Request),
			Response: fixResponse(entry.Response),
			Line:     entry.Line,
		})
	}
	return fixed
}

func fixRequest(request *parser.Request) *parser.Request {
	return &parser.Request{
		Method:   strings.ToUpper(request.Method),
		URL:      strings.TrimSpace(request.URL),
		Headers:  fixHeaders(request.Headers),
		Sections: fixSectionList(request.Sections),
		Body:     copyBody(request.Body),
		Line:     request.Line,
	}
}

func fixResponse(response *parser.Response) *parser.Response {
	if response == nil {
		return nil
	}
	return &parser.Response{
		Status:   response.Status,
		Headers:  fixHeaders(response.Headers),
		Sections: fixSectionList(response.Sections),
		Body:     copyBody(response.Body),
		Line:     response.Line,
	}
}

func fixHeaders(headers []*parser.Header) []*parser.Header {
	var fixed []*parser.Header
	for _, header := range headers {
		fixed = append(fixed, &parser.Header{
			Name:  header.Name,
			Value: strings.TrimSpace(header.Value),
			Line:  header.Line,
		})
	}
	return fixed
}

func fixSectionList(sections []*parser.Section) []*parser.Section {
	var fixed []*parser.Section
	for _, section := range sections {
		if len(section.Params) == 0 && len(section.Asserts) == 0 && len(section.Captures) == 0 {
			continue
		}
		copied := &parser.Section{Name: section.Name, Line: section.Line}
		for _, param := range section.Params {
			copied.Params = append(copied.Params, &parser.Param{
				Key:   param.Key,
				Value: strings.TrimSpace(param.Value),
				Line:  param.Line,
			})
		}
		for _, assert := range section.Asserts {
			clone := *assert
			copied.Asserts = append(copied.Asserts, &clone)
		}
		for _, capture := range section.Captures {
			clone := *capture
			copied.Captures = append(copied.Captures, &clone)
		}
		fixed = append(fixed, copied)
	}
	return fixed
}

func copyBody(body *parser.Body) *parser.Body {
	if body == nil {
		return nil
	}
	clone := *body
	return &clone
}
