package format

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/curlew-http/curlew/packages/core/parser"
)

type palette struct {
	method  *color.Color
	section *color.Color
	header  *color.Color
	comment *color.Color
	status  *color.Color
}

func newPalette(colorize bool) *palette {
	p := &palette{
		method:  color.New(color.Bold),
		section: color.New(color.FgMagenta),
		header:  color.New(color.FgCyan),
		comment: color.New(color.FgHiBlack),
		status:  color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.method, p.section, p.header, p.comment, p.status} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Text renders the file in canonical form. Entries are separated by a
// single blank line and the output always ends with a newline.
func Text(file *parser.File, colorize bool) string {
	p := newPalette(colorize)
	var b strings.Builder
	for i, entry := range file.Entries {
		if i > 0 {
			b.WriteString("\n")
		}
		writeEntry(&b, entry, p)
	}
	return b.String()
}

func writeEntry(b *strings.Builder, entry *parser.Entry, p *palette) {
	for _, comment := range entry.Comments {
		fmt.Fprintf(b, "%s\n", p.comment.Sprint("# "+comment))
	}
	request := entry.Request
	fmt.Fprintf(b, "%s %s\n", p.method.Sprint(request.Method), request.URL)
	writeHeaders(b, request.Headers, p)
	writeSections(b, request.Sections, p)
	writeBody(b, request.Body)

	if entry.Response != nil {
		response := entry.Response
		fmt.Fprintf(b, "%s %s\n", p.method.Sprint("HTTP"), p.status.Sprint(fmt.Sprintf("%d", response.Status)))
		writeHeaders(b, response.Headers, p)
		writeSections(b, response.Sections, p)
		writeBody(b, response.Body)
	}
}

func writeHeaders(b *strings.Builder, headers []*parser.Header, p *palette) {
	for _, header := range headers {
		fmt.Fprintf(b, "%s: %s\n", p.header.Sprint(header.Name), header.Value)
	}
}

func writeSections(b *strings.Builder, sections []*parser.Section, p *palette) {
	for _, section := range sections {
		fmt.Fprintf(b, "%s\n", p.section.Sprint("["+section.Name+"]"))
		for _, param := range section.Params {
			fmt.Fprintf(b, "%s: %s\n", param.Key, param.Value)
		}
		for _, assert := range section.Asserts {
			fmt.Fprintf(b, "%s\n", assertLine(assert))
		}
		for _, capture := range section.Captures {
			fmt.Fprintf(b, "%s\n", captureLine(capture))
		}
	}
}

func assertLine(assert *parser.Assert) string {
	parts := []string{assert.Source}
	if assert.Arg != "" {
		parts = append(parts, quoteIfNeeded(assert.Arg))
	}
	parts = append(parts, assert.Predicate)
	if assert.Expected != "" {
		parts = append(parts, assert.Expected)
	}
	return strings.Join(parts, " ")
}

func captureLine(capture *parser.Capture) string {
	parts := []string{capture.Name + ":", capture.Source}
	if capture.Arg != "" {
		parts = append(parts, quoteIfNeeded(capture.Arg))
	}
	return strings.Join(parts, " ")
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}

func writeBody(b *strings.Builder, body *parser.Body) {
	if body == nil {
		return
	}
	if body.Fenced {
		fmt.Fprintf(b, "```%s\n%s\n```\n", body.Lang, body.Text)
		return
	}
	fmt.Fprintf(b, "%s\n", body.Text)
}
