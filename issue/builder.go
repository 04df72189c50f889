package issue

import (
	"fmt"

	"github.com/google/uuid"
)

// idNamespace scopes the name-based issue IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://checkstyle.org/issue"))

// Builder collects the attributes of one issue. A zero Builder is ready to use
// and can be reused: Build does not reset it.
type Builder struct {
	issue Issue
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) SetOrigin(origin string) *Builder {
	b.issue.Origin = origin
	return b
}

func (b *Builder) SetFileName(name string) *Builder {
	b.issue.FileName = name
	return b
}

func (b *Builder) SetLineStart(line int) *Builder {
	b.issue.LineStart = line
	return b
}

func (b *Builder) SetColumnStart(column int) *Builder {
	b.issue.ColumnStart = column
	return b
}

func (b *Builder) SetSeverity(severity Severity) *Builder {
	b.issue.Severity = severity
	return b
}

func (b *Builder) SetMessage(message string) *Builder {
	b.issue.Message = message
	return b
}

func (b *Builder) SetType(issueType string) *Builder {
	b.issue.Type = issueType
	return b
}

func (b *Builder) SetCategory(category string) *Builder {
	b.issue.Category = category
	return b
}

// Build returns the issue with an ID derived from its content and ordinal,
// the position it will take in its report. Identical input therefore yields
// identical IDs across runs.
func (b *Builder) Build(ordinal int) Issue {
	i := b.issue
	i.ID = uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("%d\x00%s\x00%s\x00%d\x00%d\x00%s\x00%s\x00%s",
		ordinal, i.Origin, i.FileName, i.LineStart, i.ColumnStart, i.Type, i.Category, i.Message)))
	return i
}
