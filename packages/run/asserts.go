package run

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/curlew-http/curlew/packages/core/parser"
)

// AssertResult records one evaluated assertion.
type AssertResult struct {
	Source    string `json:"source"`
	Arg       string `json:"arg,omitempty"`
	Predicate string `json:"predicate"`
	Expected  string `json:"expected,omitempty"`
	Actual    string `json:"actual"`
	Passed    bool   `json:"passed"`
	Message   string `json:"message,omitempty"`
	Line      int    `json:"line,omitempty"`
}

// evaluateAssert resolves the assertion source against the response and
// applies the predicate.
func evaluateAssert(assert *parser.Assert, resp *Response) AssertResult {
	result := AssertResult{
		Source:    assert.Source,
		Arg:       assert.Arg,
		Predicate: assert.Predicate,
		Expected:  assert.Expected,
		Line:      assert.Line,
	}

	actual, found, err := resolveSource(assert, resp)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	result.Actual = actual

	if assert.Predicate == "exists" {
		result.Passed = found
		if !found {
			result.Message = fmt.Sprintf("%s %s does not exist", assert.Source, assert.Arg)
		}
		return result
	}
	if !found {
		result.Message = fmt.Sprintf("%s %s not found", assert.Source, assert.Arg)
		return result
	}

	passed, err := applyPredicate(assert.Predicate, actual, assert.Expected)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	result.Passed = passed
	if !passed {
		result.Message = fmt.Sprintf("expected %s %s %s, got %s",
			describeSource(assert), assert.Predicate, assert.Expected, actual)
	}
	return result
}

func describeSource(assert *parser.Assert) string {
	if assert.Arg != "" {
		return assert.Source + " " + assert.Arg
	}
	return assert.Source
}

func resolveSource(assert *parser.Assert, resp *Response) (actual string, found bool, err error) {
	switch assert.Source {
	case "status":
		return strconv.Itoa(resp.StatusCode), true, nil
	case "duration":
		return strconv.FormatInt(resp.Duration.Milliseconds(), 10), true, nil
	case "body":
		return resp.BodyString(), true, nil
	case "header":
		value := resp.Header(assert.Arg)
		return value, value != "", nil
	case "jsonpath":
		result := gjson.GetBytes(resp.Body, jsonPath(assert.Arg))
		return result.String(), result.Exists(), nil
	default:
		return "", false, fmt.Errorf("unknown assert source %s", assert.Source)
	}
}

// jsonPath converts the $.dotted query syntax into a gjson path.
func jsonPath(query string) string {
	path := strings.TrimPrefix(query, "$.")
	path = strings.TrimPrefix(path, "$")
	path = strings.ReplaceAll(path, "[", ".")
	path = strings.ReplaceAll(path, "]", "")
	return strings.TrimPrefix(path, ".")
}

func applyPredicate(predicate, actual, expected string) (bool, error) {
	switch predicate {
	case "==":
		return compareEqual(actual, expected), nil
	case "!=":
		return !compareEqual(actual, expected), nil
	case "<", "<=", ">", ">=":
		a, errA := strconv.ParseFloat(actual, 64)
		b, errB := strconv.ParseFloat(expected, 64)
		if errA != nil || errB != nil {
			return false, fmt.Errorf("predicate %s needs numbers, got %q and %q", predicate, actual, expected)
		}
		switch predicate {
		case "<":
			return a < b, nil
		case "<=":
			return a <= b, nil
		case ">":
			return a > b, nil
		default:
			return a >= b, nil
		}
	case "contains":
		return strings.Contains(actual, unquote(expected)), nil
	case "startswith":
		return strings.HasPrefix(actual, unquote(expected)), nil
	case "endswith":
		return strings.HasSuffix(actual, unquote(expected)), nil
	case "matches":
		re, err := regexp.Compile(unquote(expected))
		if err != nil {
			return false, fmt.Errorf("invalid pattern %s: %w", expected, err)
		}
		return re.MatchString(actual), nil
	default:
		return false, fmt.Errorf("unknown predicate %s", predicate)
	}
}

// compareEqual compares numerically when both sides parse as numbers,
// textually otherwise.
func compareEqual(actual, expected string) bool {
	expected = unquote(expected)
	a, errA := strconv.ParseFloat(actual, 64)
	b, errB := strconv.ParseFloat(expected, 64)
	if errA == nil && errB == nil {
		return a == b
	}
	return actual == expected
}

func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
