// Package checkstylexml decodes Checkstyle XML reports into a document model.
//
//	<?xml version="1.0" encoding="utf-8"?><checkstyle version="4.3"><file ...></file>...</checkstyle>
//
// References:
//   - http://checkstyle.sourceforge.net/
//   - http://eslint.org/docs/user-guide/formatters/#checkstyle
package checkstylexml

// Document represents the <checkstyle> root.
type Document struct {
	Version string
	Files   []*File
}

// AddFile appends a finished <file> entry.
func (d *Document) AddFile(f *File) {
	d.Files = append(d.Files, f)
}

// File represents <file name="fname"><error ... />...</file>
type File struct {
	Name   string
	Errors []*Error
}

// AddError appends a finished <error> entry.
func (f *File) AddError(e *Error) {
	f.Errors = append(f.Errors, e)
}

// Error represents <error line="1" column="10" severity="error" message="msg" source="src" />
type Error struct {
	Line     int
	Column   int
	Severity string
	Message  string
	Source   string
}
