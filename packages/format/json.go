package format

import (
	"encoding/json"
	"fmt"

	"github.com/curlew-http/curlew/packages/core/parser"
)

// JSON renders the syntax tree as indented JSON, ending with a newline.
func JSON(file *parser.File) (string, error) {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return "", fmt.Errorf("cannot serialize file to json: %w", err)
	}
	return string(data) + "\n", nil
}
