// Package fmtcli drives the formatter pipeline: acquire input, parse,
// then either report lint findings or render, and finally write the
// result. Every outcome maps onto a process exit code. The pipeline is
// linear; no state is entered twice in one run.
package fmtcli
