package checkstylexml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// ErrNotCheckstyle is returned when the stream is XML but has no <checkstyle> root.
var ErrNotCheckstyle = errors.New("input stream is not a Checkstyle file")

// ErrNoRootElement is returned when the stream ends before any element.
var ErrNoRootElement = errors.New("no root element")

// DecodeError is the single failure kind of Decode. Use errors.Is with
// ErrNotCheckstyle, or errors.As with *xml.SyntaxError, to tell causes apart.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode checkstyle report: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

const (
	rootElement  = "checkstyle"
	fileElement  = "file"
	errorElement = "error"
)

type frameKind int

const (
	documentFrame frameKind = iota
	fileFrame
	errorFrame
)

// frame is the object under construction for one open element.
type frame struct {
	kind frameKind
	doc  *Document
	file *File
	err  *Error
}

// binder maps attribute names to setters on T.
type binder[T any] map[string]func(*T, string) error

func (b binder[T]) bind(target *T, attrs []xml.Attr) error {
	for _, a := range attrs {
		if a.Name.Space != "" {
			continue
		}
		set, ok := b[a.Name.Local]
		if !ok {
			continue
		}
		if err := set(target, a.Value); err != nil {
			return fmt.Errorf("attribute %q: %w", a.Name.Local, err)
		}
	}
	return nil
}

// parseInt reads a line or column number. Empty and non-numeric values
// read as 0 rather than failing the report.
func parseInt(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

var documentAttrs = binder[Document]{
	"version": func(d *Document, v string) error {
		d.Version = v
		return nil
	},
}

var fileAttrs = binder[File]{
	"name": func(f *File, v string) error {
		f.Name = v
		return nil
	},
}

var errorAttrs = binder[Error]{
	"line": func(e *Error, v string) error {
		e.Line = parseInt(v)
		return nil
	},
	"column": func(e *Error, v string) error {
		e.Column = parseInt(v)
		return nil
	},
	"severity": func(e *Error, v string) error {
		e.Severity = v
		return nil
	},
	"message": func(e *Error, v string) error {
		e.Message = v
		return nil
	},
	"source": func(e *Error, v string) error {
		e.Source = v
		return nil
	},
}

// Decoder builds a Document from a Checkstyle report. The zero value is usable.
type Decoder struct {
	// MaxBytes bounds the bytes read from the stream; 0 means unbounded.
	// Reports cut off by the limit fail as truncated XML.
	MaxBytes int64
}

// Decode reads a report with a default Decoder.
func Decode(r io.Reader) (*Document, error) {
	return (&Decoder{}).Decode(r)
}

// Decode reads the whole stream and returns the fully built document.
func (d *Decoder) Decode(r io.Reader) (*Document, error) {
	if d.MaxBytes > 0 {
		r = io.LimitReader(r, d.MaxBytes)
	}
	dec := newXMLDecoder(r)

	var (
		stack    []frame
		doc      *Document
		rootSeen bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &DecodeError{Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 {
				if rootSeen {
					line, _ := dec.InputPos()
					return nil, &DecodeError{Err: &xml.SyntaxError{Msg: "unexpected element <" + t.Name.Local + "> after root", Line: line}}
				}
				rootSeen = true
			}
			f, ok, err := open(stack, t)
			if err != nil {
				return nil, &DecodeError{Err: err}
			}
			if !ok {
				if err := dec.Skip(); err != nil {
					return nil, &DecodeError{Err: err}
				}
				continue
			}
			stack = append(stack, f)
		case xml.EndElement:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			switch top.kind {
			case documentFrame:
				doc = top.doc
			case fileFrame:
				stack[len(stack)-1].doc.AddFile(top.file)
			case errorFrame:
				stack[len(stack)-1].file.AddError(top.err)
			}
		}
	}

	if !rootSeen {
		return nil, &DecodeError{Err: fmt.Errorf("%w: %w", ErrNoRootElement, io.ErrUnexpectedEOF)}
	}
	if doc == nil {
		return nil, &DecodeError{Err: ErrNotCheckstyle}
	}
	return doc, nil
}

// open creates the frame for start when its path is checkstyle,
// checkstyle/file or checkstyle/file/error. Any other element is not
// matched and its subtree must be skipped.
func open(stack []frame, start xml.StartElement) (frame, bool, error) {
	name := start.Name.Local
	if len(stack) == 0 {
		if name != rootElement {
			return frame{}, false, nil
		}
		doc := &Document{}
		if err := documentAttrs.bind(doc, start.Attr); err != nil {
			return frame{}, false, fmt.Errorf("<%s>: %w", name, err)
		}
		return frame{kind: documentFrame, doc: doc}, true, nil
	}

	switch parent := stack[len(stack)-1]; {
	case parent.kind == documentFrame && name == fileElement:
		file := &File{}
		if err := fileAttrs.bind(file, start.Attr); err != nil {
			return frame{}, false, fmt.Errorf("<%s>: %w", name, err)
		}
		return frame{kind: fileFrame, file: file}, true, nil
	case parent.kind == fileFrame && name == errorElement:
		e := &Error{}
		if err := errorAttrs.bind(e, start.Attr); err != nil {
			return frame{}, false, fmt.Errorf("<%s> in %q: %w", name, parent.file.Name, err)
		}
		return frame{kind: errorFrame, err: e}, true, nil
	}
	return frame{}, false, nil
}

// newXMLDecoder returns a strict decoder. Entity is left nil so only the
// predefined XML entities resolve; DOCTYPE directives are surfaced as tokens
// and ignored, and encoding/xml never fetches external resources. A reference
// to an entity declared in an internal DTD subset is therefore rejected as an
// invalid character entity.
func newXMLDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	dec.Entity = nil
	dec.CharsetReader = charsetReader
	return dec
}

// charsetReader converts non UTF-8 reports, e.g. encoding="ISO-8859-1".
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("charset %q is not supported", label)
	}
	return enc.NewDecoder().Reader(input), nil
}
