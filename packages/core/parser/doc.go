// Package parser turns .curlew source text into its AST.
//
// The grammar is line oriented: an entry is an HTTP method and url,
// followed by headers, bracketed sections, an optional body and an
// optional expected response introduced by an HTTP status line. Errors
// carry the 1-based line and column of the offending token.
package parser
