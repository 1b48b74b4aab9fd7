package core

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeText converts delimited-text bytes to UTF-8.
//
// A byte order mark selects UTF-8 or UTF-16 and is dropped. Input without a
// BOM that is not valid UTF-8 is read as Shift_JIS, the encoding Excel uses
// when saving CSV on Japanese Windows.
func decodeText(data []byte) (string, error) {
	fallback := unicode.UTF8.NewDecoder()
	if !utf8.Valid(data) {
		fallback = japanese.ShiftJIS.NewDecoder()
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(fallback), data)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}
