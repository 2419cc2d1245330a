package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/flytam/filenamify"
)

const maxFilenameBytes = 255

var windowsReserved = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SanitizeFilename turns a remote display name into a single safe path element.
// Path separators, characters reserved on Windows and control characters are
// replaced by an underscore, trailing dots and spaces are trimmed and the
// result is capped at 255 bytes without splitting a rune.
func SanitizeFilename(name string) string {
	clean, err := filenamify.Filenamify(name, filenamify.Options{
		Replacement: "_",
		MaxLength:   len(name) + 1,
	})
	if err != nil {
		clean = ""
	}

	clean = strings.TrimRight(clean, ". ")
	clean = strings.TrimLeft(clean, " ")

	// Reserved device names stay reserved with an extension
	stem := strings.ToUpper(clean)
	if i := strings.IndexByte(stem, '.'); i >= 0 {
		stem = stem[:i]
	}
	if _, reserved := windowsReserved[stem]; reserved {
		clean = "_" + clean
	}

	for len(clean) > maxFilenameBytes {
		_, size := utf8.DecodeLastRuneInString(clean)
		clean = clean[:len(clean)-size]
	}

	if clean == "" || clean == "." || clean == ".." {
		return "_"
	}

	return clean
}

// StringInSlice return true if the string is in the slice
func StringInSlice(a string, list []string) bool {
	for _, b := range list {
		if b == a {
			return true
		}
	}
	return false
}

// DedupeStrings take a slice of string and dedupe it
func DedupeStrings(input []string) []string {
	keys := make(map[string]bool)
	list := []string{}
	for _, entry := range input {
		if _, value := keys[entry]; !value {
			keys[entry] = true
			list = append(list, entry)
		}
	}
	return list
}
