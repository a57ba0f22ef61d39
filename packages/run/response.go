package run

import (
	"strings"
	"time"
)

// Request is the fully templated request handed to the client.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

// Response is the observed HTTP exchange outcome.
type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// Header looks a response header up case-insensitively.
func (r *Response) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
