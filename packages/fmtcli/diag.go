package fmtcli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/curlew-http/curlew/packages/core/parser"
)

// renderParseError prints a structured diagnostic with the offending
// source line and a caret under the failing column.
func renderParseError(w io.Writer, err *parser.ParseError, lines []string, colorize bool) {
	red := color.New(color.FgRed, color.Bold)
	blue := color.New(color.FgBlue, color.Bold)
	if colorize {
		red.EnableColor()
		blue.EnableColor()
	} else {
		red.DisableColor()
		blue.DisableColor()
	}

	fmt.Fprintf(w, "%s: %s\n", red.Sprint("error"), err.Message)
	position := fmt.Sprintf("%d:%d", err.Line, err.Column)
	if err.File != "" {
		position = err.File + ":" + position
	}
	fmt.Fprintf(w, "  %s %s\n", blue.Sprint("-->"), position)

	if err.Line < 1 || err.Line > len(lines) {
		return
	}
	source := lines[err.Line-1]
	gutter := fmt.Sprintf("%d", err.Line)
	pad := strings.Repeat(" ", len(gutter))
	fmt.Fprintf(w, "%s %s\n", pad, blue.Sprint("|"))
	fmt.Fprintf(w, "%s %s %s\n", blue.Sprint(gutter), blue.Sprint("|"), source)
	caret := strings.Repeat(" ", err.Column-1) + "^"
	fmt.Fprintf(w, "%s %s %s\n", pad, blue.Sprint("|"), red.Sprint(caret))
}
