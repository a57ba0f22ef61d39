package parser

// File is the parsed representation of a .curlew source.
type File struct {
	Path    string   `json:"path,omitempty"`
	Entries []*Entry `json:"entries"`
}

// Entry is one request, optionally followed by the response expected for it.
type Entry struct {
	Comments []string  `json:"comments,omitempty"`
	Request  *Request  `json:"request"`
	Response *Response `json:"response,omitempty"`
	Line     int       `json:"line"`
}

type Request struct {
	Method   string     `json:"method"`
	URL      string     `json:"url"`
	Headers  []*Header  `json:"headers,omitempty"`
	Sections []*Section `json:"sections,omitempty"`
	Body     *Body      `json:"body,omitempty"`
	Line     int        `json:"line"`
}

type Response struct {
	Status   int        `json:"status"`
	Headers  []*Header  `json:"headers,omitempty"`
	Sections []*Section `json:"sections,omitempty"`
	Body     *Body      `json:"body,omitempty"`
	Line     int        `json:"line"`
}

type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Line  int    `json:"line"`
}

// Section names accepted by the grammar.
const (
	SectionQueryStringParams = "QueryStringParams"
	SectionFormParams        = "FormParams"
	SectionOptions           = "Options"
	SectionAsserts           = "Asserts"
	SectionCaptures          = "Captures"
)

// Section groups the bracketed blocks of an entry. Exactly one of the three
// slices is populated, depending on the section name.
type Section struct {
	Name     string     `json:"name"`
	Params   []*Param   `json:"params,omitempty"`
	Asserts  []*Assert  `json:"asserts,omitempty"`
	Captures []*Capture `json:"captures,omitempty"`
	Line     int        `json:"line"`
}

type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Line  int    `json:"line"`
}

// Assert is a single line of an [Asserts] section. Expected carries the raw
// token; typing it is up to the consumer.
type Assert struct {
	Source    string `json:"source"`             // status, duration, body, header, jsonpath
	Arg       string `json:"arg,omitempty"`      // header name or jsonpath query
	Predicate string `json:"predicate"`          // ==, !=, <, <=, >, >=, contains, exists, startswith, endswith, matches
	Expected  string `json:"expected,omitempty"`
	Line      int    `json:"line"`
}

type Capture struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Arg    string `json:"arg,omitempty"`
	Line   int    `json:"line"`
}

type Body struct {
	Fenced bool   `json:"fenced,omitempty"`
	Lang   string `json:"lang,omitempty"`
	Text   string `json:"text"`
	Line   int    `json:"line"`
}

// Section returns the named request section, or nil.
func (r *Request) Section(name string) *Section {
	for _, s := range r.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Section returns the named response section, or nil.
func (r *Response) Section(name string) *Section {
	for _, s := range r.Sections {
		if s.Name == name {
			return s
		}
	}
	return nil
}
