package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// EnvPrefix marks environment variables that define user variables. The
// prefix is stripped to form the variable name.
const EnvPrefix = "CURLEW_"

// MergeVariables combines the three variable sources into a single map.
// Precedence, lowest to highest: prefixed environment entries, the variables
// file (applied in line order), then inline assignments (applied left to
// right). A later source overwrites an earlier entry of the same name.
func MergeVariables(environ []string, variablesFile string, inline []string) (map[string]Value, error) {
	variables := make(map[string]Value)

	for _, entry := range environ {
		name, raw, found := strings.Cut(entry, "=")
		if !found {
			continue
		}
		if stripped, ok := strings.CutPrefix(name, EnvPrefix); ok && stripped != "" {
			variables[stripped] = ParseValue(raw)
		}
	}

	if variablesFile != "" {
		if err := mergeVariablesFile(variables, variablesFile); err != nil {
			return nil, err
		}
	}

	for _, assignment := range inline {
		name, value, err := ParseAssignment(assignment)
		if err != nil {
			return nil, err
		}
		variables[name] = value
	}

	return variables, nil
}

// mergeVariablesFile applies a properties file of name=value lines. Blank
// lines and lines starting with # are skipped.
func mergeVariablesFile(variables map[string]Value, path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("variables file %s does not exist", path)
		}
		return fmt.Errorf("cannot open variables file %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, err := ParseAssignment(line)
		if err != nil {
			return fmt.Errorf("cannot parse line %d of %s: %w", lineno, path, err)
		}
		variables[name] = value
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("cannot read variables file %s: %w", path, err)
	}
	return nil
}
