package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

var ErrInvalidFileName = errors.New("invalid file name")

const maxFileNameLen = 120

// SanitizeFileName reduces a client-supplied name to a single safe path segment.
// Separators and whitespace become underscores, so the result can never climb
// out of its directory; a bare "." or ".." is rejected. Long names are cut on a
// rune boundary.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsSpace(r):
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	if s == "" || s == "." || s == ".." {
		return "", ErrInvalidFileName
	}
	if len(s) > maxFileNameLen {
		ext := path.Ext(s)
		if len(ext) > 10 || !utf8.ValidString(ext) {
			ext = ""
		}
		s = truncateRunes(s[:len(s)-len(ext)], maxFileNameLen-len(ext)) + ext
	}
	return s, nil
}

// truncateRunes cuts s to at most n bytes without splitting a character.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
