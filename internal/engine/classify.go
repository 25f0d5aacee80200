package engine

import "strings"

// HeaderScanLimit is the number of leading lines inspected for a header.
const HeaderScanLimit = 100

// dataSignature starts the column row of a telemetry log.
const dataSignature = "Sample,DateTime"

// errorSignatures appear anywhere in the column row of an error log.
var errorSignatures = []string{
	"Error Code,Error String",
	"Time,LogCaption,Error Code",
}

// Classify decides the file kind in a single pass over the first
// HeaderScanLimit lines. key=value lines seen before the header are collected
// as metadata; a repeated key keeps its last value.
func Classify(lines []string) Classification {
	result := Classification{
		Kind:        KindUnknown,
		HeaderIndex: -1,
		Metadata:    make(map[string]string),
	}

	limit := min(len(lines), HeaderScanLimit)
	for i := 0; i < limit; i++ {
		line := lines[i]

		if strings.HasPrefix(line, dataSignature) {
			result.Kind = KindData
			result.HeaderIndex = i
			return result
		}

		if isErrorHeader(line) {
			result.Kind = KindError
			result.HeaderIndex = i
			return result
		}

		if key, value, ok := metadataPair(line); ok {
			result.Metadata[key] = value
		}
	}

	return result
}

func isErrorHeader(line string) bool {
	for _, sig := range errorSignatures {
		if strings.Contains(line, sig) {
			return true
		}
	}
	return false
}

// metadataPair splits a line holding exactly one '='. Lines with an empty key
// are ignored.
func metadataPair(line string) (key, value string, ok bool) {
	if strings.Count(line, "=") != 1 {
		return "", "", false
	}
	key, value, _ = strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}
