package run

import (
	"fmt"
	"regexp"

	"github.com/curlew-http/curlew/packages/cli"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_-]*)\s*\}\}`)

// expandTemplate substitutes {{name}} placeholders from the variable
// scope. An undefined name fails the expansion.
func expandTemplate(s string, variables map[string]cli.Value) (string, error) {
	var undefined string
	result := placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := variables[name]
		if !ok {
			if undefined == "" {
				undefined = name
			}
			return match
		}
		return value.String()
	})
	if undefined != "" {
		return "", fmt.Errorf("variable %s is not defined", undefined)
	}
	return result, nil
}
