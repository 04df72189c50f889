package checkstylexml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const sampleReport = `<?xml version="1.0" encoding="UTF-8"?>
<checkstyle version="8.45">
  <file name="src/main/java/A.java">
    <error line="12" column="4" severity="error" message="Missing javadoc." source="com.puppycrawl.tools.checkstyle.checks.javadoc.MissingJavadocMethodCheck"/>
    <error line="30" severity="warning" message="Line is longer than 100 characters." source="com.puppycrawl.tools.checkstyle.checks.sizes.LineLengthCheck"/>
  </file>
  <file name="src/main/java/B.java">
  </file>
</checkstyle>
`

func TestDecode(t *testing.T) {
	t.Parallel()

	doc, err := Decode(strings.NewReader(sampleReport))
	require.NoError(t, err)

	assert.Equal(t, "8.45", doc.Version)
	require.Len(t, doc.Files, 2)

	a := doc.Files[0]
	assert.Equal(t, "src/main/java/A.java", a.Name)
	require.Len(t, a.Errors, 2)
	assert.Equal(t, &Error{
		Line:     12,
		Column:   4,
		Severity: "error",
		Message:  "Missing javadoc.",
		Source:   "com.puppycrawl.tools.checkstyle.checks.javadoc.MissingJavadocMethodCheck",
	}, a.Errors[0])
	assert.Equal(t, 30, a.Errors[1].Line)
	assert.Equal(t, 0, a.Errors[1].Column, "missing column defaults to zero")

	assert.Equal(t, "src/main/java/B.java", doc.Files[1].Name)
	assert.Empty(t, doc.Files[1].Errors)
}

func TestDecodeEmptyRoot(t *testing.T) {
	t.Parallel()

	doc, err := Decode(strings.NewReader(`<checkstyle/>`))
	require.NoError(t, err)
	assert.Empty(t, doc.Files)
}

func TestDecodePreservesDocumentOrder(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString(`<checkstyle><file name="F.java">`)
	for i := 1; i <= 50; i++ {
		b.WriteString(`<error line="1" column="` + strconv.Itoa(i) + `" source="a.b.C"/>`)
	}
	b.WriteString(`</file></checkstyle>`)

	doc, err := Decode(strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Len(t, doc.Files[0].Errors, 50)
	for i, e := range doc.Files[0].Errors {
		assert.Equal(t, i+1, e.Column)
	}
}

func TestDecodeIgnoresUnknownAttributesAndElements(t *testing.T) {
	t.Parallel()

	input := `<checkstyle version="1" extra="x">
  <meta><file name="nested.java"><error line="1"/></file></meta>
  <file name="A.java" hash="abc">
    <error line="3" Line="99" severity="info" message="m" source="s" unknown="u"><detail/></error>
    <note line="4"/>
    <file name="inner.java"/>
  </file>
  <error line="7"/>
</checkstyle>`

	doc, err := Decode(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, doc.Files, 1, "file elements only count as direct children of checkstyle")
	assert.Equal(t, "A.java", doc.Files[0].Name)
	require.Len(t, doc.Files[0].Errors, 1, "error elements only count as direct children of file")
	assert.Equal(t, 3, doc.Files[0].Errors[0].Line, "attribute names match case-sensitively")
}

func TestDecodeNotCheckstyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "other root", input: `<foo/>`},
		{name: "checkstyle nested below other root", input: `<report><checkstyle><file name="A.java"/></checkstyle></report>`},
		{name: "pmd report", input: `<?xml version="1.0"?><pmd version="6"><file name="A.java"/></pmd>`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.ErrorIs(t, err, ErrNotCheckstyle)

			var decodeErr *DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "truncated tag", input: `<checkstyle><file name="A.java"><err`},
		{name: "unclosed root", input: `<checkstyle><file name="A.java"></file>`},
		{name: "mismatched end", input: `<checkstyle><file name="A.java"></error></checkstyle>`},
		{name: "second root", input: `<checkstyle/><checkstyle/>`},
		{name: "undeclared entity", input: `<checkstyle><file name="&secret;"/></checkstyle>`},
		{
			name: "internal entity declaration",
			input: `<?xml version="1.0"?><!DOCTYPE checkstyle [<!ENTITY xxe SYSTEM "file:///etc/passwd">]>` +
				`<checkstyle><file name="&xxe;"/></checkstyle>`,
		},
		{
			name:  "internal string entity",
			input: `<!DOCTYPE checkstyle [<!ENTITY v "8.0">]><checkstyle version="&v;"/>`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.NotErrorIs(t, err, ErrNotCheckstyle)

			var decodeErr *DecodeError
			require.ErrorAs(t, err, &decodeErr)
			var syntaxErr *xml.SyntaxError
			assert.ErrorAs(t, err, &syntaxErr)
		})
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader(""))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoRootElement)
	assert.NotErrorIs(t, err, ErrNotCheckstyle)
}

func TestDecodeInvalidNumber(t *testing.T) {
	t.Parallel()

	doc, err := Decode(strings.NewReader(`<checkstyle><file name="A.java">` +
		`<error line="twelve" column="" message="a"/>` +
		`<error line=" 7 " column="x1" message="b"/>` +
		`<error line="-3" column="4" message="c"/>` +
		`</file></checkstyle>`))
	require.NoError(t, err)
	require.Len(t, doc.Files, 1)

	errs := doc.Files[0].Errors
	require.Len(t, errs, 3)
	assert.Equal(t, &Error{Line: 0, Column: 0, Message: "a"}, errs[0])
	assert.Equal(t, &Error{Line: 7, Column: 0, Message: "b"}, errs[1])
	assert.Equal(t, &Error{Line: -3, Column: 4, Message: "c"}, errs[2])
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestDecodeReadFailure(t *testing.T) {
	t.Parallel()

	r := io.MultiReader(strings.NewReader(`<checkstyle><file name="A.java">`), failingReader{})
	_, err := Decode(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.NotErrorIs(t, err, ErrNotCheckstyle)
}

func TestDecodeMaxBytes(t *testing.T) {
	t.Parallel()

	d := &Decoder{MaxBytes: 40}
	_, err := d.Decode(strings.NewReader(sampleReport))
	require.Error(t, err)

	d = &Decoder{MaxBytes: int64(len(sampleReport))}
	doc, err := d.Decode(strings.NewReader(sampleReport))
	require.NoError(t, err)
	assert.Len(t, doc.Files, 2)
}

func TestDecodeLatin1(t *testing.T) {
	t.Parallel()

	utf8Report := `<?xml version="1.0" encoding="ISO-8859-1"?>
<checkstyle><file name="Übung.java"><error line="1" message="Größe" source="a.b.C"/></file></checkstyle>`
	encoded, err := charmap.ISO8859_1.NewEncoder().String(utf8Report)
	require.NoError(t, err)

	doc, err := Decode(bytes.NewReader([]byte(encoded)))
	require.NoError(t, err)
	assert.Equal(t, "Übung.java", doc.Files[0].Name)
	assert.Equal(t, "Größe", doc.Files[0].Errors[0].Message)
}

func TestDecodeUnknownCharset(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader(`<?xml version="1.0" encoding="klingon"?><checkstyle/>`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotCheckstyle)
}
