// Package checkstyle converts Checkstyle XML reports into issue reports.
package checkstyle

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/msurajn/analysis-model/issue"
)

// MapSeverity maps a Checkstyle severity token, ignoring case. Tokens other
// than error, warning and info yield SeverityNone and false. Case folding is
// Unicode simple folding, so the dotless ı does not match "info".
func MapSeverity(token string) (issue.Severity, bool) {
	switch {
	case strings.EqualFold(token, "error"):
		return issue.SeverityHigh, true
	case strings.EqualFold(token, "warning"):
		return issue.SeverityNormal, true
	case strings.EqualFold(token, "info"):
		return issue.SeverityLow, true
	default:
		return issue.SeverityNone, false
	}
}

// Type returns the last dot-segment of a check source,
// e.g. "NamingCheck" for "com.example.checks.naming.NamingCheck".
func Type(source string) string {
	if i := strings.LastIndexByte(source, '.'); i >= 0 {
		return source[i+1:]
	}
	return source
}

// Category returns the second-to-last dot-segment of a check source with its
// first character title-cased, e.g. "Naming" for "com.example.checks.naming.NamingCheck".
// The rest of the segment is returned as is.
func Category(source string) string {
	prefix := ""
	if i := strings.LastIndexByte(source, '.'); i >= 0 {
		prefix = source[:i]
	}
	return capitalize(Type(prefix))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	title := unicode.ToTitle(r)
	if title == r {
		return s
	}
	return string(title) + s[size:]
}

// IsValidFile reports whether errors of the named file are converted.
// Checkstyle package.html documentation checks are skipped.
func IsValidFile(name string) bool {
	return !strings.HasSuffix(name, "package.html")
}
