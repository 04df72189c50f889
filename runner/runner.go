package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/msurajn/analysis-model/comment"
	"github.com/msurajn/analysis-model/diff"
	"github.com/msurajn/analysis-model/github"
	"github.com/msurajn/analysis-model/issue"
)

// DiffService is an interface which get diff.
type DiffService interface {
	Diff(context.Context) ([]byte, error)
	Strip() int
}

// CommentService posts review comments.
type CommentService interface {
	PostAsReviewComment(context.Context, []*comment.Comment) error
}

// Options tune the review run.
type Options struct {
	ToolName string
	// Workdir is the directory report paths are relative to.
	Workdir string
	// RelDir is Workdir relative to the repository root.
	RelDir string
	// MinSeverity drops issues ranked below it. SeverityNone keeps all.
	MinSeverity issue.Severity
}

// Result summarizes a run.
type Result struct {
	Issues   int
	Filtered int
	Comments []*comment.Comment
}

// Run posts the issues of report that fall on lines added by the diff.
func Run(ctx context.Context, diffService DiffService, commentService CommentService, report *issue.Report, opts Options) (*Result, error) {
	log := zerolog.Ctx(ctx)

	b, err := diffService.Diff(ctx)
	if err != nil {
		return nil, fmt.Errorf("get diff: %w", err)
	}
	fileDiffs, err := diff.ParseMultiFile(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	linesPerFile := createDiffMappingDataStructures(fileDiffs, diffService.Strip())
	log.Debug().Int("files", len(linesPerFile)).Msg("changed files in diff")

	postComments := filterIssues(report, linesPerFile, opts)
	log.Info().Int("issues", report.Len()).Int("comments", len(postComments)).Msg("filtered issues to changed lines")

	result := &Result{Issues: report.Len(), Filtered: len(postComments), Comments: postComments}
	if len(postComments) == 0 {
		return result, nil
	}

	var errs []error
	if err := commentService.PostAsReviewComment(ctx, postComments); err != nil {
		errs = append(errs, fmt.Errorf("post comments: %w", err))
	}
	return result, errors.Join(errs...)
}

func createDiffMappingDataStructures(fileDiffs []*diff.FileDiff, strip int) map[string]map[int]*diff.Line {
	linesPerFile := make(map[string]map[int]*diff.Line)
	for path, lines := range diff.AddedLines(fileDiffs) {
		normalized := github.NormalizePath(stripPath(path, strip), "", "")
		existing, ok := linesPerFile[normalized]
		if !ok {
			linesPerFile[normalized] = lines
			continue
		}
		for n, l := range lines {
			existing[n] = l
		}
	}
	return linesPerFile
}

func filterIssues(report *issue.Report, linesPerFile map[string]map[int]*diff.Line, opts Options) []*comment.Comment {
	postComments := make([]*comment.Comment, 0)
	for _, i := range report.Issues() {
		if opts.MinSeverity != issue.SeverityNone && !i.Severity.AtLeast(opts.MinSeverity) {
			continue
		}
		path := github.NormalizePath(i.FileName, opts.Workdir, opts.RelDir)
		lines, ok := linesPerFile[path]
		if !ok {
			continue
		}
		line, ok := lines[i.LineStart]
		if !ok {
			continue
		}
		postComments = append(postComments, &comment.Comment{
			Issue:    i,
			ToolName: opts.ToolName,
			Path:     path,
			Position: line.LnumDiff,
		})
	}
	return postComments
}

// stripPath removes the first n path elements, like patch -p.
func stripPath(path string, n int) string {
	for ; n > 0; n-- {
		_, rest, ok := strings.Cut(path, "/")
		if !ok {
			return path
		}
		path = rest
	}
	return path
}
