package storage

import (
	"regexp"
	"strings"
)

// maxNameLen caps sanitized path segments so keyword directories and record
// file names stay well under common filesystem limits.
const maxNameLen = 100

// invalidPathChars matches everything that cannot appear in a file name on
// the usual filesystems, including control characters.
var invalidPathChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeName maps an arbitrary string (keyword, seller name) to a safe
// path segment. Illegal characters become underscores, surrounding dots and
// spaces are trimmed, and overlong names are truncated. The result is never
// empty and sanitizing twice changes nothing.
func SanitizeName(name string) string {
	s := invalidPathChars.ReplaceAllString(name, "_")
	s = strings.Trim(s, ". ")
	if runes := []rune(s); len(runes) > maxNameLen {
		s = strings.Trim(string(runes[:maxNameLen]), ". ")
	}
	if s == "" {
		return "unnamed"
	}
	return s
}
