package comment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/msurajn/analysis-model/issue"
)

// Comment represents a reported issue as a review comment on a changed line.
type Comment struct {
	Issue    issue.Issue
	ToolName string
	// Path is the file path relative to the repository root.
	Path string
	// Position is the line position in the pull request diff.
	Position int
}

// Body renders the markdown comment body.
func (c *Comment) Body() string {
	return MarkdownComment(c)
}

// Key identifies a comment by path, line and body.
func (c *Comment) Key() uuid.UUID {
	return Key(c.Path, c.Issue.LineStart, c.Body())
}

var keyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://checkstyle.org/review-comment"))

// Key returns the deterministic key of a comment at path and line with body.
func Key(path string, line int, body string) uuid.UUID {
	return uuid.NewSHA1(keyNamespace, []byte(fmt.Sprintf("%s\x00%d\x00%s", path, line, body)))
}

type PostedComments map[uuid.UUID]struct{}

// IsPosted returns true if a given comment has been posted in code review service already,
// otherwise returns false. It sees comments with same path, same position,
// and same body as same comments.
func (p PostedComments) IsPosted(key uuid.UUID) bool {
	if _, ok := p[key]; !ok {
		return false
	}
	return true
}

func (p PostedComments) AddPostedComment(key uuid.UUID) {
	if _, ok := p[key]; !ok {
		p[key] = struct{}{}
	}
}

// MarkdownComment creates comment body markdown.
func MarkdownComment(c *Comment) string {
	var sb strings.Builder
	if s := severityEmoji(c.Issue.Severity); s != "" {
		sb.WriteString(s)
		sb.WriteString(" ")
	}
	if rule := ruleName(c.Issue); rule != "" {
		sb.WriteString(fmt.Sprintf("<%s> ", rule))
	}
	sb.WriteString(c.Issue.Message)
	if c.ToolName != "" {
		sb.WriteString(fmt.Sprintf("\n\n<sub>reported by %s</sub>", c.ToolName))
	}
	return sb.String()
}

func ruleName(i issue.Issue) string {
	switch {
	case i.Category != "" && i.Type != "":
		return i.Category + "/" + i.Type
	default:
		return i.Type
	}
}

func severityEmoji(s issue.Severity) string {
	switch s {
	case issue.SeverityHigh:
		return "🚫"
	case issue.SeverityNormal:
		return "⚠️"
	case issue.SeverityLow:
		return "📝"
	default:
		return ""
	}
}
