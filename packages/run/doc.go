// Package run executes parsed .curlew files: it plays each entry's
// request against the network, checks the expected response and its
// assertions, carries captured values forward as variables, and
// aggregates everything into a run report consumed by the console,
// JSON, JUnit and HTML outputs.
package run
