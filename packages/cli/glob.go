package cli

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandGlobs expands shell-style patterns into a flat file list. Patterns
// are processed in the order given and each pattern's matches are appended
// in filesystem enumeration order. An invalid pattern or an unreadable
// entry aborts the whole expansion.
func ExpandGlobs(patterns []string) ([]string, error) {
	var filenames []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, fmt.Errorf("cannot expand glob pattern %q: %w", pattern, err)
		}
		filenames = append(filenames, matches...)
	}
	return filenames, nil
}
