package format

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/curlew-http/curlew/packages/core/parser"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump renders the parsed structure for debugging. Output is stable
// across runs: pointer addresses and capacities are suppressed.
func Dump(file *parser.File) string {
	return dumpConfig.Sdump(file)
}
