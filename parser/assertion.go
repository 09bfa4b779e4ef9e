package parser

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	sitter "github.com/smacker/go-tree-sitter"
)

// Matches the highlight name following an arrow. \w is unicode aware in
// regexp2 which is what grammar authors expect for names like "keyword.ö".
var captureNameRegexp = regexp2.MustCompile(`[!\w_\-.]+`, regexp2.None)

// Assertion claims that the token at Position should be highlighted with the
// capture named ExpectedCaptureName.
type Assertion struct {
	Position            Point
	ExpectedCaptureName string
}

// ParseAssertions walks the tree rooted at root and returns every highlight
// assertion found in nodes whose type contains commentNode, sorted by
// position.
//
// An assertion is a comment containing an arrow followed by a capture name.
// An up arrow ("^") points at its own column on the line above the comment and
// a left arrow ("<-") points at the column the comment starts at:
//
//	int main() {}
//	// <- type
//	//  ^ function
//
// Consecutive lines of assertion comments all refer to the first line of code
// above them.
func ParseAssertions(root *sitter.Node, source []byte, commentNode string) []Assertion {
	result := []Assertion{}
	if root == nil || root.IsNull() {
		return result
	}
	var assertionRanges []Range

	cursor := sitter.NewTreeCursor(root)
	defer cursor.Close()
	ascending := false
	for {
		if ascending {
			node := cursor.CurrentNode()
			if assertion, ok := parseCommentAssertion(node, source, commentNode); ok {
				assertionRanges = append(assertionRanges, newNodeRange(node))
				result = append(result, assertion)
			}

			if cursor.GoToNextSibling() {
				ascending = false
			} else if !cursor.GoToParent() {
				break
			}
		} else if !cursor.GoToFirstChild() {
			ascending = true
		}
	}

	adjustAssertionRows(result, assertionRanges)

	// The row adjustments can leave assertions out of order.
	slices.SortFunc(result, func(a, b Assertion) int {
		return a.Position.Compare(b.Position)
	})
	return result
}

// Returns the assertion carried by node, if any. The returned position is the
// position of the arrow in the comment, the row still has to be adjusted to
// point at the annotated line of code.
func parseCommentAssertion(node *sitter.Node, source []byte, commentNode string) (Assertion, bool) {
	if !strings.Contains(node.Type(), commentNode) {
		return Assertion{}, false
	}
	text, ok := nodeText(node, source)
	if !ok {
		return Assertion{}, false
	}
	position := newPoint(node.StartPoint())
	// Nothing above the first line to assert on.
	if position.Row == 0 {
		return Assertion{}, false
	}

	arrowEnd, caretOffset, found := scanArrow(text)
	if !found {
		return Assertion{}, false
	}
	position.Column += uint32(caretOffset)

	name, ok := findCaptureName(text[arrowEnd:])
	if !ok {
		return Assertion{}, false
	}
	return Assertion{Position: position, ExpectedCaptureName: name}, true
}

// Finds the first arrow in text. Returns the byte offset just past the arrow
// and the byte offset of the caret for up arrows. Left arrows have a caret
// offset of 0 as they refer to the start of the comment.
func scanArrow(text string) (arrowEnd int, caretOffset int, found bool) {
	hasLeftCaret := false
	for i, c := range text {
		if c == '-' && hasLeftCaret {
			return i + 1, 0, true
		}
		if c == '^' {
			return i + 1, i, true
		}
		hasLeftCaret = c == '<'
	}
	return 0, 0, false
}

func findCaptureName(text string) (string, bool) {
	match, err := captureNameRegexp.FindStringMatch(text)
	if err != nil || match == nil {
		return "", false
	}
	return match.String(), true
}

// Returns the text of node in source. Nodes outside of source or which are not
// valid UTF-8 have no text.
func nodeText(node *sitter.Node, source []byte) (string, bool) {
	start, end := node.StartByte(), node.EndByte()
	if start > end || int(end) > len(source) {
		return "", false
	}
	content := source[start:end]
	if !utf8.Valid(content) {
		return "", false
	}
	return string(content), true
}

// Moves each assertion up to the line of code above it. There can be several
// consecutive lines of assertion comments so an assertion may move up more than
// one row. Assertions and ranges are in the same tree walk order so the start
// index into ranges only ever moves forward.
//
// Ranges are only recorded for comments below the first row so the row never
// reaches 0 while a range matches. The row > 0 check keeps it from underflowing
// on ranges that break that rule.
func adjustAssertionRows(assertions []Assertion, ranges []Range) {
	i := 0
	for idx := range assertions {
		position := &assertions[idx].Position
		for {
			if position.Row > 0 && hasRangeOnRow(ranges[i:], position.Row) {
				position.Row--
				continue
			}
			for i < len(ranges) && ranges[i].Start.Row < position.Row {
				i++
			}
			break
		}
	}
}

func hasRangeOnRow(ranges []Range, row uint32) bool {
	for _, r := range ranges {
		if r.Start.Row == row {
			return true
		}
	}
	return false
}
