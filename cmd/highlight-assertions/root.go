package main

import (
	"context"
	"io"

	"github.com/kelly-lin/highlight-assertions/batch"
	"github.com/kelly-lin/highlight-assertions/config"
	"github.com/kelly-lin/highlight-assertions/format"
	"github.com/kelly-lin/highlight-assertions/lang"
	"github.com/kelly-lin/highlight-assertions/protocol"
	"github.com/rs/zerolog"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

type rootHandler struct {
	fs          afero.Fs
	configPath  string
	flags       config.Config
	sourceFiles []string
	debug       bool
}

func newRootCommand(fs afero.Fs) *cobra.Command {
	me := &rootHandler{fs: fs}

	cmd := &cobra.Command{
		Use:   "highlight-assertions [-p parser_file | -l language] -s source_file...",
		Short: "Extract tree-sitter highlight assertions from source files",
		Long: `Reads the highlight assertions of the tree-sitter unit test format
(https://tree-sitter.github.io/tree-sitter/syntax-highlighting#unit-testing)
from source files and prints them as JSON, for use in the highlight tests of
nvim-treesitter.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&me.flags.ParserFile, "parser-file", "p", "", "parser library to load (e.g. cpp.so from nvim-treesitter/parser)")
	cmd.Flags().StringVarP(&me.flags.Language, "language", "l", "", "built-in grammar to parse with, guessed from the file extension when neither this nor --parser-file is set")
	cmd.Flags().StringArrayVarP(&me.sourceFiles, "source-file", "s", nil, "source file with highlight assertions, may be a glob and repeated")
	cmd.Flags().StringVarP(&me.flags.CommentNode, "comment-node", "c", "", `substring of the node types to search for assertions (default "comment")`)
	cmd.Flags().StringVarP(&me.flags.Format, "format", "f", "", `output format, json or text (default "json")`)
	cmd.Flags().IntVarP(&me.flags.Workers, "workers", "j", 0, "number of files to process concurrently (default number of CPUs)")
	cmd.Flags().StringVar(&me.configPath, "config", "", "YAML config file, flags take precedence over its values")
	cmd.Flags().BoolVarP(&me.debug, "debug", "d", false, "enable debug logging to stderr")
	cmd.MarkFlagsMutuallyExclusive("parser-file", "language")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd.ErrOrStderr(), me.debug)
		ctx := logger.WithContext(cmd.Context())
		return me.Run(ctx, cmd.OutOrStdout(), append(me.sourceFiles, args...))
	}

	cmd.AddCommand(newLanguagesCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(level)
}

func (me *rootHandler) Run(ctx context.Context, w io.Writer, patterns []string) error {
	logger := zerolog.Ctx(ctx)

	cfg, err := me.config()
	if err != nil {
		return err
	}
	if len(patterns) == 0 {
		return errors.New("no source files provided, use --source-file")
	}
	// A single literal path prints the bare array nvim-treesitter consumes, anything
	// else is keyed by path so partial failures stay attributable.
	keyed := len(patterns) != 1 || batch.IsPattern(patterns[0])
	writer, err := format.New(cfg.Format, keyed)
	if err != nil {
		return err
	}

	paths, err := batch.ExpandPatterns(me.fs, patterns)
	if err != nil {
		return err
	}

	resolver, closeLanguage, err := newLanguageResolver(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeLanguage(); err != nil {
			logger.Warn().Err(err).Msg("closing parser")
		}
	}()

	logger.Debug().
		Strs("paths", paths).
		Str("comment_node", cfg.CommentNode).
		Str("parser_file", cfg.ParserFile).
		Str("language", cfg.Language).
		Msg("extracting assertions")
	results, extractErr := batch.Extract(ctx, me.fs, paths, batch.Options{
		CommentNode: cfg.CommentNode,
		Workers:     cfg.Workers,
		Language:    resolver,
	})

	files := make([]protocol.FileAssertions, 0, len(results))
	for _, result := range results {
		if result.Err != nil {
			continue
		}
		files = append(files, protocol.FileAssertions{
			Path:       result.Path,
			Assertions: protocol.ToProtocolAssertions(result.Assertions),
		})
	}
	if keyed || len(files) > 0 {
		if err := writer.Write(w, files); err != nil {
			return err
		}
	}
	if extractErr != nil {
		return errors.Errorf("extracting assertions: %w", extractErr)
	}
	return nil
}

// Defaults, then the config file, then flags.
func (me *rootHandler) config() (config.Config, error) {
	cfg := config.Default()
	if me.configPath != "" {
		fileCfg, err := config.Load(me.fs, me.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = cfg.Merge(fileCfg)
	}
	cfg = cfg.Merge(me.flags)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, errors.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Returns the resolver for the grammar selected in cfg and a function
// releasing it. A loaded parser library stays open until every file has been
// parsed.
func newLanguageResolver(cfg config.Config) (batch.LanguageResolver, func() error, error) {
	noop := func() error { return nil }
	switch {
	case cfg.ParserFile != "":
		lib, err := lang.Load(cfg.ParserFile)
		if err != nil {
			return nil, nil, errors.Errorf("loading parser: %w", err)
		}
		language := lib.Language()
		return func(string) (*sitter.Language, error) { return language, nil }, lib.Close, nil

	case cfg.Language != "":
		language, err := lang.Builtin(cfg.Language)
		if err != nil {
			return nil, nil, err
		}
		return func(string) (*sitter.Language, error) { return language, nil }, noop, nil

	default:
		return func(path string) (*sitter.Language, error) {
			name, err := lang.NameForFile(path, cfg.Languages)
			if err != nil {
				return nil, err
			}
			return lang.Builtin(name)
		}, noop, nil
	}
}
