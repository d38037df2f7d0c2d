package reader

import "github.com/bmatcuk/doublestar/v4"

// globKeys returns the keys of files matching pattern, in map
// iteration order (callers needing determinism sort the result).
func globKeys(pattern string, files map[string][]byte) ([]string, error) {
	var matches []string
	for path := range files {
		ok, err := doublestar.Match(pattern, path)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, path)
		}
	}
	return matches, nil
}
