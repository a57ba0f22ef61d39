package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleEntry(t *testing.T) {
	input := `GET https://example.org/users/1
`

	file, err := Parse(input, "test.curlew")
	require.NoError(t, err)
	require.Len(t, file.Entries, 1)

	req := file.Entries[0].Request
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "https://example.org/users/1", req.URL)
	assert.Equal(t, 1, req.Line)
	assert.Nil(t, file.Entries[0].Response)
}

func TestParseHeadersAndComments(t *testing.T) {
	input := `# fetch the user
# with auth
GET https://example.org/user
Authorization: Bearer abc
Accept: application/json
`

	file, err := Parse(input, "")
	require.NoError(t, err)
	require.Len(t, file.Entries, 1)

	entry := file.Entries[0]
	assert.Equal(t, []string{"fetch the user", "with auth"}, entry.Comments)
	require.Len(t, entry.Request.Headers, 2)
	assert.Equal(t, "Authorization", entry.Request.Headers[0].Name)
	assert.Equal(t, "Bearer abc", entry.Request.Headers[0].Value)
	assert.Equal(t, 4, entry.Request.Headers[0].Line)
}

func TestParseSectionsAndResponse(t *testing.T) {
	input := `GET https://example.org/search
[QueryStringParams]
q: curlew
limit: 10

HTTP 200
[Asserts]
status == 200
header Content-Type contains json
jsonpath "$.items" exists
jsonpath "$.total" >= 1
[Captures]
first_id: jsonpath "$.items[0].id"
ctype: header Content-Type
`

	file, err := Parse(input, "search.curlew")
	require.NoError(t, err)
	require.Len(t, file.Entries, 1)

	entry := file.Entries[0]
	params := entry.Request.Section(SectionQueryStringParams)
	require.NotNil(t, params)
	require.Len(t, params.Params, 2)
	assert.Equal(t, "q", params.Params[0].Key)
	assert.Equal(t, "curlew", params.Params[0].Value)

	require.NotNil(t, entry.Response)
	assert.Equal(t, 200, entry.Response.Status)

	asserts := entry.Response.Section(SectionAsserts)
	require.NotNil(t, asserts)
	require.Len(t, asserts.Asserts, 4)
	assert.Equal(t, "status", asserts.Asserts[0].Source)
	assert.Equal(t, "==", asserts.Asserts[0].Predicate)
	assert.Equal(t, "200", asserts.Asserts[0].Expected)
	assert.Equal(t, "header", asserts.Asserts[1].Source)
	assert.Equal(t, "Content-Type", asserts.Asserts[1].Arg)
	assert.Equal(t, "jsonpath", asserts.Asserts[2].Source)
	assert.Equal(t, "$.items", asserts.Asserts[2].Arg)
	assert.Equal(t, "exists", asserts.Asserts[2].Predicate)
	assert.Empty(t, asserts.Asserts[2].Expected)

	captures := entry.Response.Section(SectionCaptures)
	require.NotNil(t, captures)
	require.Len(t, captures.Captures, 2)
	assert.Equal(t, "first_id", captures.Captures[0].Name)
	assert.Equal(t, "jsonpath", captures.Captures[0].Source)
	assert.Equal(t, "$.items[0].id", captures.Captures[0].Arg)
}

func TestParseFencedBody(t *testing.T) {
	input := "POST https://example.org/users\nContent-Type: application/json\n```json\n{\n  \"name\": \"Ada\"\n}\n```\n"

	file, err := Parse(input, "")
	require.NoError(t, err)
	require.Len(t, file.Entries, 1)

	body := file.Entries[0].Request.Body
	require.NotNil(t, body)
	assert.True(t, body.Fenced)
	assert.Equal(t, "json", body.Lang)
	assert.Equal(t, "{\n  \"name\": \"Ada\"\n}", body.Text)
}

func TestParseRawBody(t *testing.T) {
	input := `POST https://example.org/users
Content-Type: application/json

{"name": "Ada"}
`

	file, err := Parse(input, "")
	require.NoError(t, err)
	body := file.Entries[0].Request.Body
	require.NotNil(t, body)
	assert.False(t, body.Fenced)
	assert.Equal(t, `{"name": "Ada"}`, body.Text)
}

func TestParseMultipleEntries(t *testing.T) {
	input := `GET https://example.org/a

HTTP 200

POST https://example.org/b

HTTP 201
`

	file, err := Parse(input, "")
	require.NoError(t, err)
	require.Len(t, file.Entries, 2)
	assert.Equal(t, "GET", file.Entries[0].Request.Method)
	assert.Equal(t, 200, file.Entries[0].Response.Status)
	assert.Equal(t, "POST", file.Entries[1].Request.Method)
	assert.Equal(t, 201, file.Entries[1].Response.Status)
}

func TestParseCRLF(t *testing.T) {
	input := "GET https://example.org/a\r\nAccept: */*\r\n\r\nHTTP 200\r\n"

	file, err := Parse(input, "")
	require.NoError(t, err)
	require.Len(t, file.Entries, 1)
	assert.Equal(t, "*/*", file.Entries[0].Request.Headers[0].Value)
	assert.Equal(t, 200, file.Entries[0].Response.Status)
}

func TestParseEmptyInput(t *testing.T) {
	file, err := Parse("", "")
	require.NoError(t, err)
	assert.Empty(t, file.Entries)

	file, err = Parse("# only a comment\n", "")
	require.NoError(t, err)
	assert.Empty(t, file.Entries)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		line    int
		message string
	}{
		{"not a method", "FETCH https://example.org\n", 1, "expecting an HTTP method"},
		{"missing url", "GET\n", 1, "expecting a url"},
		{"unknown section", "GET https://example.org\n[Bogus]\n", 2, "unknown section"},
		{"unknown assert source", "GET https://a\n\nHTTP 200\n[Asserts]\ncookie x == 1\n", 5, "unknown assert source"},
		{"unknown predicate", "GET https://a\n\nHTTP 200\n[Asserts]\nstatus equals 200\n", 5, "unknown predicate"},
		{"unclosed fence", "POST https://a\n```json\n{}\n", 2, "unclosed body block"},
		{"bad status line", "GET https://a\n\nHTTP abc\n", 3, "expecting a status code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, "bad.curlew")
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.line, parseErr.Line)
			assert.Contains(t, parseErr.Message, tt.message)
			assert.Equal(t, "bad.curlew", parseErr.File)
		})
	}
}

func TestParseLowercaseMethodAccepted(t *testing.T) {
	// the linter flags casing; the parser stays permissive
	file, err := Parse("get https://example.org\n", "")
	require.NoError(t, err)
	assert.Equal(t, "get", file.Entries[0].Request.Method)
}
