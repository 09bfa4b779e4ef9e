package parser

import (
	"context"
	"math"

	"github.com/rs/zerolog"
	sitter "github.com/smacker/go-tree-sitter"
	"gitlab.com/tozd/go/errors"
)

var ErrNoLanguage = errors.New("no language provided")

// Included range covering the whole document, this is what tree-sitter uses
// when no ranges have been set.
var wholeDocument = sitter.Range{
	StartPoint: sitter.Point{Row: 0, Column: 0},
	EndPoint:   sitter.Point{Row: math.MaxUint32, Column: math.MaxUint32},
	StartByte:  0,
	EndByte:    math.MaxUint32,
}

// Parses source with language and returns the highlight assertions found in
// comment nodes whose type contains commentNode. See ParseAssertions.
func Parse(ctx context.Context, language *sitter.Language, source []byte, commentNode string) ([]Assertion, error) {
	if language == nil {
		return nil, ErrNoLanguage
	}

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(language)
	p.SetIncludedRanges([]sitter.Range{wholeDocument})
	tree, err := p.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, errors.Errorf("parsing source: %w", err)
	}
	if tree == nil {
		return nil, errors.New("parser returned no tree")
	}
	defer tree.Close()

	result := ParseAssertions(tree.RootNode(), source, commentNode)
	zerolog.Ctx(ctx).Debug().
		Int("assertions", len(result)).
		Str("comment_node", commentNode).
		Msg("parsed assertions")
	return result, nil
}
