package scanner

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	textunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readSourceFile reads a source file as UTF-8, honoring UTF-8/UTF-16 byte
// order marks. A file that cannot be read or decoded is reported so the
// caller can record a ScanError and move on.
func readSourceFile(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 - scanning user-specified project trees is the point
	if err != nil {
		return "", err
	}
	defer f.Close()

	decoder := textunicode.BOMOverride(textunicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(f, decoder))
	if err != nil {
		return "", fmt.Errorf("decoding: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("not valid UTF-8 after decoding")
	}
	return string(data), nil
}
