package config

import (
	"bytes"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultCommentNode = "comment"
	DefaultFormat      = "json"
)

// Config of a run, read from a YAML file and overridden by command line flags.
type Config struct {
	// Substring of the node types that are comments.
	CommentNode string `yaml:"comment_node,omitempty"`
	// Parser shared object to load the grammar from.
	ParserFile string `yaml:"parser_file,omitempty"`
	// Name of a built-in grammar.
	Language string `yaml:"language,omitempty"`
	Format   string `yaml:"format,omitempty"`
	// Number of files processed concurrently, 0 uses the number of CPUs.
	Workers int `yaml:"workers,omitempty"`
	// Maps file extensions (".h") to built-in grammar names ("cpp").
	Languages map[string]string `yaml:"languages,omitempty"`
}

func Default() Config {
	return Config{
		CommentNode: DefaultCommentNode,
		Format:      DefaultFormat,
	}
}

// Load reads the YAML config file at path.
func Load(fs afero.Fs, path string) (Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Config{}, errors.Errorf("reading config file: %w", err)
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, errors.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Merge returns c with the non zero fields of other applied on top.
func (c Config) Merge(other Config) Config {
	if other.CommentNode != "" {
		c.CommentNode = other.CommentNode
	}
	if other.ParserFile != "" {
		c.ParserFile = other.ParserFile
		c.Language = ""
	}
	if other.Language != "" {
		c.Language = other.Language
		c.ParserFile = ""
	}
	if other.Format != "" {
		c.Format = other.Format
	}
	if other.Workers != 0 {
		c.Workers = other.Workers
	}
	if len(other.Languages) > 0 {
		languages := make(map[string]string, len(c.Languages)+len(other.Languages))
		for ext, name := range c.Languages {
			languages[ext] = name
		}
		for ext, name := range other.Languages {
			languages[ext] = name
		}
		c.Languages = languages
	}
	return c
}

// Validate reports configs that cannot be run.
func (c Config) Validate() error {
	if c.CommentNode == "" {
		return errors.New("comment node must not be empty")
	}
	if c.ParserFile != "" && c.Language != "" {
		return errors.New("parser file and language are mutually exclusive")
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}
