// Package cli resolves raw command line flags, prefixed environment
// variables and on-disk variable files into the immutable runner
// configuration.
//
// Resolution is all-or-nothing: the first validation failure aborts the
// whole call and no partially populated Options value is ever returned.
// The stateful probes involved (environment lookup, file existence checks,
// terminal detection) are injected so resolution stays testable.
package cli
