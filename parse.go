package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/msurajn/analysis-model/checkstyle"
	"github.com/msurajn/analysis-model/issue"
	"github.com/msurajn/analysis-model/logging"
)

func createParseCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [report.xml]",
		Short: "Parse a Checkstyle report and print its issues",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}
			failOn, err := cmd.Flags().GetString("fail-on")
			if err != nil {
				return fmt.Errorf("failed to get fail-on flag: %w", err)
			}
			threshold := issue.SeverityNone
			if failOn != "" {
				s, ok := issue.ParseSeverity(failOn)
				if !ok || s == issue.SeverityNone {
					return fmt.Errorf("invalid --fail-on %q, want low, normal or high", failOn)
				}
				threshold = s
			}

			path := a.config.Report.Path
			if len(args) == 1 {
				path = args[0]
			}

			parser := &checkstyle.Parser{MaxBytes: a.config.Report.MaxBytes, Logger: logging.Get(cmd.Context())}
			report, err := parser.ParseFile(a.fs, path)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				err = writeJSON(cmd.OutOrStdout(), report)
			case "text":
				err = writeText(cmd.OutOrStdout(), report)
			default:
				return fmt.Errorf("invalid --format %q, want text or json", format)
			}
			if err != nil {
				return err
			}

			if threshold != issue.SeverityNone {
				failing := report.Filter(func(i issue.Issue) bool { return i.Severity.AtLeast(threshold) })
				if !failing.IsEmpty() {
					return &ExitError{Code: 2}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringP("format", "f", "text", "Output format: text or json")
	cmd.Flags().String("fail-on", "", "Exit with status 2 when an issue at or above this severity is found")
	return cmd
}

func writeJSON(w io.Writer, report *issue.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	issues := report.Issues()
	if issues == nil {
		issues = []issue.Issue{}
	}
	return enc.Encode(issues)
}

var severityColors = map[issue.Severity]*color.Color{
	issue.SeverityHigh:   color.New(color.FgRed, color.Bold),
	issue.SeverityNormal: color.New(color.FgYellow),
	issue.SeverityLow:    color.New(color.FgCyan),
	issue.SeverityNone:   color.New(color.FgWhite),
}

func writeText(w io.Writer, report *issue.Report) error {
	location := color.New(color.Bold)
	for _, i := range report.Issues() {
		_, err := fmt.Fprintf(w, "%s %s %s %s\n",
			location.Sprintf("%s:%d:%d:", i.FileName, i.LineStart, i.ColumnStart),
			severityColors[i.Severity].Sprintf("[%s]", i.Severity),
			i.Message,
			color.HiBlackString("(%s/%s)", i.Category, i.Type))
		if err != nil {
			return err
		}
	}

	counts := report.CountBySeverity()
	_, err := fmt.Fprintf(w, "%d issues (high: %d, normal: %d, low: %d, none: %d)\n", report.Len(),
		counts[issue.SeverityHigh], counts[issue.SeverityNormal], counts[issue.SeverityLow], counts[issue.SeverityNone])
	return err
}
