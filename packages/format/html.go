package format

import (
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/curlew-http/curlew/packages/core/parser"
)

// HTML renders the file as an embeddable fragment. Every token is
// escaped; syntactic roles are tagged with span classes so callers can
// style them.
func HTML(file *parser.File) string {
	var b strings.Builder
	b.WriteString("<pre><code class=\"language-curlew\">")
	for i, entry := range file.Entries {
		if i > 0 {
			b.WriteString("\n")
		}
		writeHTMLEntry(&b, entry)
	}
	b.WriteString("</code></pre>\n")
	return b.String()
}

func writeHTMLEntry(b *strings.Builder, entry *parser.Entry) {
	for _, comment := range entry.Comments {
		fmt.Fprintf(b, "<span class=\"comment\">%s</span>\n", html.EscapeString("# "+comment))
	}
	request := entry.Request
	fmt.Fprintf(b, "<span class=\"method\">%s</span> <span class=\"url\">%s</span>\n",
		html.EscapeString(request.Method), html.EscapeString(request.URL))
	writeHTMLHeaders(b, request.Headers)
	writeHTMLSections(b, request.Sections)
	writeHTMLBody(b, request.Body)

	if entry.Response != nil {
		response := entry.Response
		fmt.Fprintf(b, "<span class=\"method\">HTTP</span> <span class=\"status\">%d</span>\n", response.Status)
		writeHTMLHeaders(b, response.Headers)
		writeHTMLSections(b, response.Sections)
		writeHTMLBody(b, response.Body)
	}
}

func writeHTMLHeaders(b *strings.Builder, headers []*parser.Header) {
	for _, header := range headers {
		fmt.Fprintf(b, "<span class=\"header-name\">%s</span>: <span class=\"header-value\">%s</span>\n",
			html.EscapeString(header.Name), html.EscapeString(header.Value))
	}
}

func writeHTMLSections(b *strings.Builder, sections []*parser.Section) {
	for _, section := range sections {
		fmt.Fprintf(b, "<span class=\"section\">[%s]</span>\n", html.EscapeString(section.Name))
		for _, param := range section.Params {
			fmt.Fprintf(b, "%s: %s\n", html.EscapeString(param.Key), html.EscapeString(param.Value))
		}
		for _, assert := range section.Asserts {
			fmt.Fprintf(b, "%s\n", html.EscapeString(assertLine(assert)))
		}
		for _, capture := range section.Captures {
			fmt.Fprintf(b, "%s\n", html.EscapeString(captureLine(capture)))
		}
	}
}

func writeHTMLBody(b *strings.Builder, body *parser.Body) {
	if body == nil {
		return
	}
	if body.Fenced {
		fmt.Fprintf(b, "<span class=\"body\">%s</span>\n", html.EscapeString("```"+body.Lang+"\n"+body.Text+"\n```"))
		return
	}
	fmt.Fprintf(b, "<span class=\"body\">%s</span>\n", html.EscapeString(body.Text))
}

type standalonePage struct {
	Title    string
	Fragment template.HTML
}

const standaloneTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 60rem; }
pre { background: #f6f8fa; border-radius: 6px; padding: 1rem; overflow-x: auto; }
code { font-family: "SF Mono", Consolas, monospace; font-size: 0.875rem; }
.method { font-weight: bold; }
.section { color: #8250df; }
.header-name { color: #0969da; }
.status { color: #1a7f37; }
.comment { color: #6e7781; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{.Fragment}}
</body>
</html>
`

// HTMLStandalone renders a complete HTML document embedding the
// fragment produced by HTML.
func HTMLStandalone(file *parser.File) (string, error) {
	tmpl, err := template.New("standalone").Parse(standaloneTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML template: %w", err)
	}
	title := file.Path
	if title == "" {
		title = "curlew"
	}
	page := standalonePage{
		Title: title,
		// The fragment escapes every user token itself.
		Fragment: template.HTML(HTML(file)),
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, page); err != nil {
		return "", fmt.Errorf("failed to render HTML document: %w", err)
	}
	return b.String(), nil
}
