// Package issue holds the normalized issue records produced by report parsers
// and the ordered report that collects them.
package issue

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Severity is the normalized ranking of an issue.
type Severity int

const (
	// SeverityNone marks an issue whose tool severity could not be mapped.
	SeverityNone Severity = iota
	SeverityLow
	SeverityNormal
	SeverityHigh
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityNormal:
		return "normal"
	case SeverityHigh:
		return "high"
	default:
		return "none"
	}
}

// ParseSeverity is the inverse of String. Unknown names yield SeverityNone
// and false.
func ParseSeverity(name string) (Severity, bool) {
	switch strings.ToLower(name) {
	case "low":
		return SeverityLow, true
	case "normal":
		return SeverityNormal, true
	case "high":
		return SeverityHigh, true
	case "none":
		return SeverityNone, true
	default:
		return SeverityNone, false
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AtLeast reports whether s ranks at or above threshold. SeverityNone never does,
// unless threshold is SeverityNone too.
func (s Severity) AtLeast(threshold Severity) bool {
	return s >= threshold
}

// Issue is one normalized finding.
type Issue struct {
	ID          uuid.UUID `json:"id"`
	Origin      string    `json:"origin,omitempty"`
	FileName    string    `json:"fileName"`
	LineStart   int       `json:"lineStart"`
	ColumnStart int       `json:"columnStart,omitempty"`
	Severity    Severity  `json:"severity"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
}

// HasSeverity reports whether the tool severity was mapped.
func (i Issue) HasSeverity() bool {
	return i.Severity != SeverityNone
}

func (i Issue) String() string {
	return fmt.Sprintf("%s:%d:%d: [%s] %s (%s/%s)",
		i.FileName, i.LineStart, i.ColumnStart, i.Severity, i.Message, i.Category, i.Type)
}
