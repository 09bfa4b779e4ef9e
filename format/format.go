package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/kelly-lin/highlight-assertions/protocol"
	"gitlab.com/tozd/go/errors"
)

var ErrUnknownFormat = errors.New("unknown format")

const (
	FormatJSON = "json"
	FormatText = "text"
)

// Writer writes the assertions of one or more source files.
type Writer interface {
	Write(w io.Writer, files []protocol.FileAssertions) error
}

// Returns the writer for the named format. Keyed selects the JSON object
// keyed by path over the single file array, see JSONWriter.
func New(name string, keyed bool) (Writer, error) {
	switch name {
	case FormatJSON:
		return JSONWriter{Keyed: keyed}, nil
	case FormatText:
		return NewTextWriter(), nil
	default:
		return nil, errors.Errorf("%w: %q, expected %s or %s", ErrUnknownFormat, name, FormatJSON, FormatText)
	}
}

// JSONWriter writes the assertions of a single file as a JSON array, which is
// what nvim-treesitter's highlight tests consume. When Keyed is set the files
// are written as an object mapping each path to its array instead, regardless
// of how many files there are.
type JSONWriter struct {
	Keyed bool
}

func (jw JSONWriter) Write(w io.Writer, files []protocol.FileAssertions) error {
	var content any
	if !jw.Keyed {
		if len(files) != 1 {
			return errors.Errorf("writing assertions: expected 1 file without keyed output, got %d", len(files))
		}
		content = files[0].Assertions
	} else {
		byPath := make(map[string][]protocol.Assertion, len(files))
		for _, file := range files {
			byPath[file.Path] = file.Assertions
		}
		content = byPath
	}
	contentBytes, err := json.Marshal(content)
	if err != nil {
		return errors.Errorf("marshalling assertions: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\n", contentBytes); err != nil {
		return errors.Errorf("writing assertions: %w", err)
	}
	return nil
}

// TextWriter writes one "path:line:column: name" line per assertion. Lines and
// columns are 1 based so editors can jump to them.
type TextWriter struct {
	location *color.Color
	name     *color.Color
}

// Creates a text writer, colors are disabled automatically when stdout is not
// a terminal.
func NewTextWriter() TextWriter {
	return TextWriter{
		location: color.New(color.Faint),
		name:     color.New(color.FgCyan, color.Bold),
	}
}

// Disables colored output regardless of the terminal.
func (tw TextWriter) WithoutColor() TextWriter {
	tw.location.DisableColor()
	tw.name.DisableColor()
	return tw
}

func (tw TextWriter) Write(w io.Writer, files []protocol.FileAssertions) error {
	for _, file := range files {
		for _, assertion := range file.Assertions {
			location := fmt.Sprintf("%s:%d:%d:", file.Path, assertion.Position.Row+1, assertion.Position.Column+1)
			if _, err := fmt.Fprintf(w, "%s %s\n", tw.location.Sprint(location), tw.name.Sprint(assertion.ExpectedCaptureName)); err != nil {
				return errors.Errorf("writing assertions: %w", err)
			}
		}
	}
	return nil
}
