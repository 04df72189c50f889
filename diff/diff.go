// Package diff maps unified diffs as produced by git diff to the lines a pull
// request adds.
package diff

import (
	"io"

	rdiff "github.com/reviewdog/reviewdog/diff"
)

type (
	// FileDiff is the diff of one file.
	FileDiff = rdiff.FileDiff
	// Hunk is one @@ section.
	Hunk = rdiff.Hunk
	// Line is one line of a hunk. LnumDiff is its position within the file
	// diff; GitHub review comments address lines by it.
	Line = rdiff.Line
	// LineType is the kind of a diff line.
	LineType = rdiff.LineType
)

const (
	LineUnchanged = rdiff.LineUnchanged
	LineAdded     = rdiff.LineAdded
	LineDeleted   = rdiff.LineDeleted
)

const devNull = "/dev/null"

// ParseMultiFile parses a diff of any number of files.
func ParseMultiFile(r io.Reader) ([]*FileDiff, error) {
	return rdiff.ParseMultiFile(r)
}

// AddedLines indexes the added lines of files by new path and new line
// number. Deleted files are left out.
func AddedLines(files []*FileDiff) map[string]map[int]*Line {
	out := make(map[string]map[int]*Line)
	for _, f := range files {
		if f.PathNew == devNull {
			continue
		}
		lines, ok := out[f.PathNew]
		if !ok {
			lines = make(map[int]*Line)
		}
		for _, h := range f.Hunks {
			for _, l := range h.Lines {
				if l.Type == LineAdded {
					lines[l.LnumNew] = l
				}
			}
		}
		out[f.PathNew] = lines
	}
	return out
}
