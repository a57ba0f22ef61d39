// Package cmd wires the curlew runner command line: flag registration,
// option resolution, file execution, reports and watch mode.
package cmd
