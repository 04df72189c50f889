package checkstyle

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/msurajn/analysis-model/checkstylexml"
	"github.com/msurajn/analysis-model/issue"
)

// Origin identifies issues produced by this parser.
const Origin = "checkstyle"

// Parser converts Checkstyle reports. A zero Parser is ready to use and
// holds no state between calls.
type Parser struct {
	// MaxBytes bounds the report size; 0 means unbounded.
	MaxBytes int64
	// Logger receives debug output about skipped entries. Nil disables it.
	Logger *zerolog.Logger
}

// Parse decodes the whole report and returns its issues in document order.
// Decode failures abort the parse; no partial report is returned.
func (p *Parser) Parse(r io.Reader) (*issue.Report, error) {
	dec := &checkstylexml.Decoder{MaxBytes: p.MaxBytes}
	doc, err := dec.Decode(r)
	if err != nil {
		return nil, err
	}
	return p.convert(doc), nil
}

// ParseFile opens path on fs and parses it.
func (p *Parser) ParseFile(fs afero.Fs, path string) (*issue.Report, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checkstyle report: %w", err)
	}
	defer f.Close()

	report, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return report, nil
}

func (p *Parser) convert(doc *checkstylexml.Document) *issue.Report {
	log := p.logger()
	report := issue.NewReport()

	for _, file := range doc.Files {
		if !IsValidFile(file.Name) {
			log.Debug().Str("file", file.Name).Int("errors", len(file.Errors)).Msg("skipping package.html")
			continue
		}
		for _, e := range file.Errors {
			builder := issue.NewBuilder().SetOrigin(Origin)
			if severity, ok := MapSeverity(e.Severity); ok {
				builder.SetSeverity(severity)
			} else {
				log.Debug().Str("file", file.Name).Int("line", e.Line).Str("severity", e.Severity).Msg("unmapped severity")
			}
			builder.SetType(Type(e.Source)).
				SetCategory(Category(e.Source)).
				SetMessage(e.Message).
				SetLineStart(e.Line).
				SetFileName(file.Name).
				SetColumnStart(e.Column)
			report.AddBuilt(builder)
		}
	}

	log.Debug().Int("files", len(doc.Files)).Int("issues", report.Len()).Msg("parsed checkstyle report")
	return report
}

func (p *Parser) logger() *zerolog.Logger {
	if p.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return p.Logger
}
