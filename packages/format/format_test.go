package format

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curlew-http/curlew/packages/core/parser"
)

func parseSource(t *testing.T, source string) *parser.File {
	t.Helper()
	file, err := parser.Parse(source, "api.curlew")
	require.NoError(t, err)
	return file
}

func TestTextCanonical(t *testing.T) {
	source := "# health probe\n" +
		"GET https://example.org/health\n" +
		"Accept: application/json\n" +
		"[QueryStringParams]\n" +
		"verbose: true\n" +
		"HTTP 200\n" +
		"[Asserts]\n" +
		"status == 200\n" +
		"jsonpath $.ok exists\n"
	file := parseSource(t, source)

	got := Text(file, false)
	want := "# health probe\n" +
		"GET https://example.org/health\n" +
		"Accept: application/json\n" +
		"[QueryStringParams]\n" +
		"verbose: true\n" +
		"HTTP 200\n" +
		"[Asserts]\n" +
		"status == 200\n" +
		"jsonpath $.ok exists\n"
	assert.Equal(t, want, got)
}

func TestTextEntrySeparation(t *testing.T) {
	source := "GET https://example.org/a\n\nGET https://example.org/b\n"
	file := parseSource(t, source)

	got := Text(file, false)
	assert.Equal(t, "GET https://example.org/a\n\nGET https://example.org/b\n", got)
}

func TestTextFencedBody(t *testing.T) {
	source := "POST https://example.org/items\n" +
		"```json\n" +
		"{\"name\": \"curlew\"}\n" +
		"```\n"
	file := parseSource(t, source)

	got := Text(file, false)
	assert.Contains(t, got, "```json\n{\"name\": \"curlew\"}\n```\n")
}

func TestTextColor(t *testing.T) {
	file := parseSource(t, "GET https://example.org\n")

	plain := Text(file, false)
	colored := Text(file, true)
	assert.NotContains(t, plain, "\x1b[")
	assert.Contains(t, colored, "\x1b[1m")
	assert.Contains(t, colored, "GET")
}

func TestTextIdempotent(t *testing.T) {
	source := "GET https://example.org\n" +
		"Accept: text/html\n" +
		"HTTP 200\n"
	first := Text(parseSource(t, source), false)
	second := Text(parseSource(t, first), false)
	assert.Equal(t, first, second)
}

func TestJSONExport(t *testing.T) {
	file := parseSource(t, "GET https://example.org\nHTTP 200\n")

	got, err := JSON(file)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "\n"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(got), &decoded))
	entries, ok := decoded["entries"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	request := entry["request"].(map[string]any)
	assert.Equal(t, "GET", request["method"])
	assert.Equal(t, "https://example.org", request["url"])
	response := entry["response"].(map[string]any)
	assert.Equal(t, float64(200), response["status"])
}

func TestHTMLFragment(t *testing.T) {
	file := parseSource(t, "GET https://example.org/<script>\nHTTP 200\n")

	got := HTML(file)
	assert.True(t, strings.HasPrefix(got, "<pre><code"))
	assert.Contains(t, got, `<span class="method">GET</span>`)
	assert.Contains(t, got, `<span class="status">200</span>`)
	assert.Contains(t, got, "&lt;script&gt;")
	assert.NotContains(t, got, "<script>")
}

func TestDumpIsStable(t *testing.T) {
	file := parseSource(t, "GET https://example.org\nHTTP 200\n")

	first := Dump(file)
	second := Dump(file)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "Method")
	assert.Contains(t, first, "https://example.org")
	assert.NotContains(t, first, "0x")
}

func TestHTMLStandalone(t *testing.T) {
	file := parseSource(t, "GET https://example.org\n")

	got, err := HTMLStandalone(file)
	require.NoError(t, err)
	assert.Contains(t, got, "<!DOCTYPE html>")
	assert.Contains(t, got, "<title>api.curlew</title>")
	assert.Contains(t, got, `<span class="method">GET</span>`)
	assert.Contains(t, got, "</html>")
}
