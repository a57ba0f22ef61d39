package run

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// Console renders a run report for terminals, one line per file plus
// detail lines for every failure.
type Console struct {
	writer io.Writer
	green  *color.Color
	red    *color.Color
	bold   *color.Color
}

func NewConsole(w io.Writer, colorize bool) *Console {
	c := &Console{
		writer: w,
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		bold:   color.New(color.Bold),
	}
	for _, col := range []*color.Color{c.green, c.red, c.bold} {
		if colorize {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

func (c *Console) WriteReport(report *Report) {
	for i := range report.Files {
		file := &report.Files[i]
		if file.Passed() {
			fmt.Fprintf(c.writer, "%s %s (%d entries, %s)\n",
				c.green.Sprint("ok  "), file.File, len(file.Entries),
				file.Duration.Round(time.Millisecond))
			continue
		}
		fmt.Fprintf(c.writer, "%s %s (%d entries, %s)\n",
			c.red.Sprint("fail"), file.File, len(file.Entries),
			file.Duration.Round(time.Millisecond))
		c.writeFailures(file)
	}

	total, failed := report.Counts()
	if failed == 0 {
		fmt.Fprintf(c.writer, "%s: %d files, %d entries\n",
			c.bold.Sprint("passed"), len(report.Files), total)
		return
	}
	fmt.Fprintf(c.writer, "%s: %d files, %d entries, %d failed\n",
		c.bold.Sprint("failed"), len(report.Files), total, failed)
}

func (c *Console) writeFailures(file *FileResult) {
	if file.Error != "" {
		fmt.Fprintf(c.writer, "     %s\n", file.Error)
	}
	for i := range file.Entries {
		entry := &file.Entries[i]
		if entry.Error != "" {
			fmt.Fprintf(c.writer, "     entry %d: %s\n", entry.Index, entry.Error)
		}
		for _, assert := range entry.Asserts {
			if !assert.Passed {
				fmt.Fprintf(c.writer, "     entry %d: %s\n", entry.Index, assert.Message)
			}
		}
	}
}
