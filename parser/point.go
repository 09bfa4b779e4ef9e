package parser

import sitter "github.com/smacker/go-tree-sitter"

// 0 indexed row and column indices of a position in a document. Columns are
// byte offsets into the row, the same as tree-sitter points.
type Point struct {
	Row    uint32
	Column uint32
}

// Compare returns -1, 0 or 1 when p orders before, equal to or after other.
// Points are ordered by row first, then by column.
func (p Point) Compare(other Point) int {
	switch {
	case p.Row < other.Row:
		return -1
	case p.Row > other.Row:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	}
	return 0
}

func (p Point) Less(other Point) bool {
	return p.Compare(other) < 0
}

// Range has a 0 indexed start and end point specifying the row and column
// index of the range. Similar to ranges in programming languages, the end
// point is exclusive.
type Range struct {
	Start Point
	End   Point
}

func newPoint(p sitter.Point) Point {
	return Point{Row: p.Row, Column: p.Column}
}

func newNodeRange(node *sitter.Node) Range {
	return Range{Start: newPoint(node.StartPoint()), End: newPoint(node.EndPoint())}
}
