package engine

// decode.go turns raw log bytes into lines.
//
// Logs come from several firmware tools. Most are UTF-8, a few are UTF-16 with
// a byte order mark, and some contain stray bytes from serial noise. Decoding
// never fails on bad bytes: invalid sequences become U+FFFD.

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReplacementChar is substituted for byte sequences that cannot be decoded.
const ReplacementChar = '\uFFFD'

// DecodeLines decodes content and splits it into lines with terminators
// removed. fileName is only used in the error message.
//
// A byte order mark selects UTF-8 or UTF-16 and is stripped; without one the
// content is read as UTF-8.
func DecodeLines(fileName string, content []byte) ([]string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	text, _, err := transform.Bytes(dec, content)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fileName, err)
	}
	return splitLines(string(text)), nil
}

// splitLines splits on \n, \r\n and \r. A trailing terminator does not
// produce an empty final line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
