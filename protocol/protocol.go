package protocol

import "github.com/kelly-lin/highlight-assertions/parser"

// Zero based row and column of an assertion, columns are byte offsets.
type Position struct {
	Row    uint32 `json:"row"`
	Column uint32 `json:"column"`
}

// Assertion is the wire representation of a highlight assertion, it is the
// format nvim-treesitter's highlight tests read.
type Assertion struct {
	Position            Position `json:"position"`
	ExpectedCaptureName string   `json:"expected_capture_name"`
}

// Assertions found in a single source file.
type FileAssertions struct {
	Path       string      `json:"path"`
	Assertions []Assertion `json:"assertions"`
}

// Converts parser assertions into protocol assertions. The result is never nil
// so that no assertions is encoded as an empty array.
func ToProtocolAssertions(assertions []parser.Assertion) []Assertion {
	result := make([]Assertion, 0, len(assertions))
	for _, assertion := range assertions {
		result = append(result, Assertion{
			Position:            ToProtocolPosition(assertion.Position),
			ExpectedCaptureName: assertion.ExpectedCaptureName,
		})
	}
	return result
}

// Converts parser point into protocol position.
func ToProtocolPosition(p parser.Point) Position {
	return Position{Row: p.Row, Column: p.Column}
}
