package run

import (
	"fmt"
	"io"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// writeSummary prints aggregate counts and latency percentiles for all
// executed entries.
func writeSummary(w io.Writer, report *Report) {
	histogram := hdrhistogram.New(1, 60_000_000, 3)
	for i := range report.Files {
		for j := range report.Files[i].Entries {
			entry := &report.Files[i].Entries[j]
			if entry.Error == "" && entry.Duration > 0 {
				histogram.RecordValue(entry.Duration.Microseconds())
			}
		}
	}

	total, failed := report.Counts()
	fmt.Fprintf(w, "--------------------------------------------------------------------------------\n")
	fmt.Fprintf(w, "executed files:   %d\n", len(report.Files))
	fmt.Fprintf(w, "executed entries: %d (%d failed)\n", total, failed)
	fmt.Fprintf(w, "duration:         %s\n", report.Duration.Round(time.Millisecond))
	if histogram.TotalCount() > 0 {
		fmt.Fprintf(w, "latency p50:      %s\n", microseconds(histogram.ValueAtQuantile(50)))
		fmt.Fprintf(w, "latency p90:      %s\n", microseconds(histogram.ValueAtQuantile(90)))
		fmt.Fprintf(w, "latency p99:      %s\n", microseconds(histogram.ValueAtQuantile(99)))
		fmt.Fprintf(w, "latency max:      %s\n", microseconds(histogram.Max()))
	}
}

func microseconds(us int64) string {
	return (time.Duration(us) * time.Microsecond).Round(time.Millisecond / 10).String()
}
