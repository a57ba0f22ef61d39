package fmtcli

import (
	"fmt"
	"io"
	"os"
)

// write delivers the rendered output. An empty destination means
// stdout. Failing to create the destination file is an ordinary error;
// failing to write bytes that were already computed is not, there is
// nothing left to recover, so it aborts the process.
func (p *Pipeline) write(destination, output string) int {
	if destination == "" {
		if _, err := io.WriteString(p.stdout, output); err != nil {
			panic(fmt.Sprintf("cannot write output: %s", err))
		}
		return ExitOK
	}

	f, err := os.Create(destination)
	if err != nil {
		fmt.Fprintf(p.stderr, "error: cannot create output file %s: %s\n", destination, err)
		return ExitUsage
	}
	if _, err := io.WriteString(f, output); err != nil {
		f.Close()
		panic(fmt.Sprintf("cannot write output file %s: %s", destination, err))
	}
	if err := f.Close(); err != nil {
		panic(fmt.Sprintf("cannot write output file %s: %s", destination, err))
	}
	return ExitOK
}
