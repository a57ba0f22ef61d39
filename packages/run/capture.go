package run

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/curlew-http/curlew/packages/cli"
	"github.com/curlew-http/curlew/packages/core/parser"
)

// evaluateCapture extracts a value from the response and types it the
// same way inline variables are typed.
func evaluateCapture(capture *parser.Capture, resp *Response) (cli.Value, error) {
	switch capture.Source {
	case "status":
		return cli.NumberValue(float64(resp.StatusCode)), nil
	case "duration":
		return cli.NumberValue(float64(resp.Duration.Milliseconds())), nil
	case "body":
		return cli.StringValue(resp.BodyString()), nil
	case "header":
		value := resp.Header(capture.Arg)
		if value == "" {
			return cli.Value{}, fmt.Errorf("header %s not found for capture %s", capture.Arg, capture.Name)
		}
		return cli.StringValue(value), nil
	case "jsonpath":
		result := gjson.GetBytes(resp.Body, jsonPath(capture.Arg))
		if !result.Exists() {
			return cli.Value{}, fmt.Errorf("jsonpath %s not found for capture %s", capture.Arg, capture.Name)
		}
		return typedCapture(result), nil
	default:
		return cli.Value{}, fmt.Errorf("unknown capture source %s", capture.Source)
	}
}

func typedCapture(result gjson.Result) cli.Value {
	switch result.Type {
	case gjson.True:
		return cli.BoolValue(true)
	case gjson.False:
		return cli.BoolValue(false)
	case gjson.Number:
		return cli.NumberValue(result.Num)
	case gjson.Null:
		return cli.NullValue()
	default:
		return cli.StringValue(result.String())
	}
}

// CaptureResult records one extracted value.
type CaptureResult struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
	Line  int    `json:"line,omitempty"`
}
