// Package format renders parsed .curlew files. Three targets are
// supported: canonical text (optionally colored for terminals), a JSON
// export of the syntax tree, and HTML, either as an embeddable fragment
// or as a standalone document.
package format
