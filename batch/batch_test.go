package batch_test

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/goleak"

	"github.com/kelly-lin/highlight-assertions/batch"
	"github.com/kelly-lin/highlight-assertions/lang"
	"github.com/kelly-lin/highlight-assertions/parser"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	byExtension := func(path string) (*sitter.Language, error) {
		name, err := lang.NameForFile(path, nil)
		if err != nil {
			return nil, err
		}
		return lang.Builtin(name)
	}

	t.Run("files are processed independently", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		assert := assert.New(t)
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/src/a.js", []byte("var x = 1;\n//  ^ variable\n"), 0o644))
		require.NoError(t, afero.WriteFile(fs, "/src/b.rs", []byte("fn main() {}\n// <- keyword\n"), 0o644))
		require.NoError(t, afero.WriteFile(fs, "/src/c.zig", []byte("const x = 1;\n// <- keyword\n"), 0o644))

		got, err := batch.Extract(context.Background(), fs, []string{"/src/a.js", "/src/missing.js", "/src/b.rs", "/src/c.zig"}, batch.Options{
			CommentNode: "comment",
			Workers:     2,
			Language:    byExtension,
		})
		assert.Error(err)
		assert.ErrorContains(err, "/src/missing.js")
		assert.ErrorContains(err, "/src/c.zig")
		require.Len(t, got, 4)

		assert.Equal("/src/a.js", got[0].Path)
		assert.NoError(got[0].Err)
		assert.Equal([]parser.Assertion{
			{Position: parser.Point{Row: 0, Column: 4}, ExpectedCaptureName: "variable"},
		}, got[0].Assertions)

		assert.Equal("/src/missing.js", got[1].Path)
		assert.Error(got[1].Err)

		assert.Equal("/src/b.rs", got[2].Path)
		assert.NoError(got[2].Err)
		assert.Equal([]parser.Assertion{
			{Position: parser.Point{Row: 0, Column: 0}, ExpectedCaptureName: "keyword"},
		}, got[2].Assertions)

		assert.Error(got[3].Err)
	})

	t.Run("every file failing still returns a result per file", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		assert := assert.New(t)
		paths := []string{"/a.js", "/b.js", "/c.js"}

		got, err := batch.Extract(context.Background(), afero.NewMemMapFs(), paths, batch.Options{
			CommentNode: "comment",
			Workers:     1,
			Language:    byExtension,
		})
		require.Len(t, got, len(paths))
		for i, result := range got {
			assert.Equal(paths[i], result.Path)
			assert.Error(result.Err)
			assert.ErrorContains(err, paths[i])
		}
	})

	t.Run("many files", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		assert := assert.New(t)
		fs := afero.NewMemMapFs()
		var paths []string
		for i := 0; i < 32; i++ {
			path := fmt.Sprintf("/src/%02d.js", i)
			source := fmt.Sprintf("var x%d = %d;\n// <- keyword\n", i, i)
			require.NoError(t, afero.WriteFile(fs, path, []byte(source), 0o644))
			paths = append(paths, path)
		}

		got, err := batch.Extract(context.Background(), fs, paths, batch.Options{
			CommentNode: "comment",
			Language:    byExtension,
		})
		require.NoError(t, err)
		require.Len(t, got, len(paths))
		for i, result := range got {
			assert.Equal(paths[i], result.Path)
			assert.Equal([]parser.Assertion{
				{Position: parser.Point{Row: 0, Column: 0}, ExpectedCaptureName: "keyword"},
			}, result.Assertions)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		assert := assert.New(t)
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/a.js", []byte("var x;\n"), 0o644))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		got, err := batch.Extract(ctx, fs, []string{"/a.js"}, batch.Options{CommentNode: "comment", Language: byExtension})
		assert.ErrorIs(err, context.Canceled)
		require.Len(t, got, 1)
		assert.Nil(got[0].Assertions)
	})

	t.Run("no language resolver", func(t *testing.T) {
		assert := assert.New(t)
		_, err := batch.Extract(context.Background(), afero.NewMemMapFs(), []string{"/a.js"}, batch.Options{CommentNode: "comment"})
		assert.Error(err)
	})
}

func TestIsPattern(t *testing.T) {
	assert := assert.New(t)
	for _, pattern := range []string{"*.rs", "/tests/**/x.js", "a?.c", "[ab].go", "x.{js,ts}"} {
		assert.True(batch.IsPattern(pattern), pattern)
	}
	for _, pattern := range []string{"/tests/keywords.js", "main.rs", ""} {
		assert.False(batch.IsPattern(pattern), pattern)
	}
}

func TestExpandPatterns(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, path := range []string{
		"/tests/query/highlights/rust/basic.rs",
		"/tests/query/highlights/rust/macros.rs",
		"/tests/query/highlights/cpp/classes.cpp",
		"/tests/query/highlights/cpp/README.md",
	} {
		require.NoError(t, afero.WriteFile(fs, path, []byte("\n"), 0o644))
	}

	type TestCase struct {
		Desc     string
		Patterns []string
		Want     []string
		WantErr  bool
	}
	testCases := []TestCase{
		{
			Desc:     "literal path",
			Patterns: []string{"/tests/query/highlights/rust/basic.rs"},
			Want:     []string{"/tests/query/highlights/rust/basic.rs"},
		},
		{
			Desc:     "literal missing path is kept",
			Patterns: []string{"/missing.rs"},
			Want:     []string{"/missing.rs"},
		},
		{
			Desc:     "glob",
			Patterns: []string{"/tests/query/highlights/rust/*.rs"},
			Want: []string{
				"/tests/query/highlights/rust/basic.rs",
				"/tests/query/highlights/rust/macros.rs",
			},
		},
		{
			Desc:     "double star with duplicates",
			Patterns: []string{"/tests/**/*.{rs,cpp}", "/tests/query/highlights/rust/basic.rs"},
			Want: []string{
				"/tests/query/highlights/cpp/classes.cpp",
				"/tests/query/highlights/rust/basic.rs",
				"/tests/query/highlights/rust/macros.rs",
			},
		},
		{
			Desc:     "glob without matches",
			Patterns: []string{"/tests/**/*.zig"},
			WantErr:  true,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.Desc, func(t *testing.T) {
			assert := assert.New(t)
			got, err := batch.ExpandPatterns(fs, testCase.Patterns)
			if testCase.WantErr {
				assert.Error(err)
				return
			}
			require.NoError(t, err)
			assert.Equal(testCase.Want, got)
		})
	}
}
