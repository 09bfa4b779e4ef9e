// Package batch extracts highlight assertions from many source files
// concurrently. Every file is parsed by its own worker with its own parser, the
// only shared state is the read-only grammar.
package batch

import (
	"context"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kelly-lin/highlight-assertions/parser"
	"github.com/rs/zerolog"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Resolves the grammar to parse the source file at path with.
type LanguageResolver func(path string) (*sitter.Language, error)

type Options struct {
	// Substring of the node types that are comments.
	CommentNode string
	// Maximum number of files processed at once, 0 uses the number of CPUs.
	Workers  int
	Language LanguageResolver
}

// Assertions of a single source file. Err is set when the file could not be
// read or parsed.
type Result struct {
	Path       string
	Assertions []parser.Assertion
	Err        error
}

// Extract reads and parses every file in paths from fs and returns one result
// per path in the same order. A failing file does not stop the others, the
// returned error combines the errors of every failed file.
func Extract(ctx context.Context, fs afero.Fs, paths []string, opts Options) ([]Result, error) {
	if opts.Language == nil {
		return nil, errors.New("no language resolver provided")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(paths))
	g := errgroup.Group{}
	g.SetLimit(workers)
	for i, sourcePath := range paths {
		i, sourcePath := i, sourcePath
		g.Go(func() error {
			assertions, err := extractFile(ctx, fs, sourcePath, opts)
			results[i] = Result{Path: sourcePath, Assertions: assertions, Err: err}
			// Failures are kept per file in results, returning them would
			// cancel nothing but hide which files failed.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var err error
	for _, result := range results {
		if result.Err != nil {
			err = multierr.Append(err, errors.Errorf("%s: %w", result.Path, result.Err))
		}
	}
	return results, err
}

func extractFile(ctx context.Context, fs afero.Fs, sourcePath string, opts Options) ([]parser.Assertion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := zerolog.Ctx(ctx).With().Str("path", sourcePath).Logger()
	logger.Debug().Msg("reading source file")

	language, err := opts.Language(sourcePath)
	if err != nil {
		return nil, errors.Errorf("resolving language: %w", err)
	}
	source, err := afero.ReadFile(fs, sourcePath)
	if err != nil {
		return nil, errors.Errorf("reading source file: %w", err)
	}
	assertions, err := parser.Parse(logger.WithContext(ctx), language, source, opts.CommentNode)
	if err != nil {
		return nil, err
	}
	return assertions, nil
}

// ExpandPatterns expands doublestar glob patterns ("tests/**/*.rs") into the
// paths of the matching files. Patterns without glob meta characters are
// returned as is, even when the file does not exist, so that reading it reports
// the error. Duplicate paths are removed.
func ExpandPatterns(fs afero.Fs, patterns []string) ([]string, error) {
	var result []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := expandPattern(fs, pattern)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				result = append(result, match)
			}
		}
	}
	return result, nil
}

// IsPattern reports whether pattern contains glob meta characters.
func IsPattern(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

func expandPattern(fs afero.Fs, pattern string) ([]string, error) {
	if !IsPattern(pattern) {
		return []string{pattern}, nil
	}

	base, rest := doublestar.SplitPattern(filepath.ToSlash(pattern))
	root := fs
	if base != "." {
		root = afero.NewBasePathFs(fs, filepath.FromSlash(base))
	}
	matches, err := doublestar.Glob(afero.NewIOFS(root), rest, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Errorf("expanding pattern %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, errors.Errorf("no files match pattern %s", pattern)
	}
	sort.Strings(matches)
	result := make([]string, 0, len(matches))
	for _, match := range matches {
		if base != "." {
			match = path.Join(base, match)
		}
		result = append(result, filepath.FromSlash(match))
	}
	return result, nil
}
