package naming

import "path/filepath"

// OutputName derives the output file name for a source: prefix followed by
// the source's base name, extension preserved.
//
//	OutputName("encoded_", "/essays/draft.txt") == "encoded_draft.txt"
func OutputName(prefix, source string) string {
	return prefix + filepath.Base(source)
}
