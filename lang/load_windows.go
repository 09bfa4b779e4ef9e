package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"gitlab.com/tozd/go/errors"
)

// Library is a parser shared object loaded into the process.
type Library struct {
	language *sitter.Language
}

// Load is not supported on windows, use a built-in grammar instead.
func Load(path string) (*Library, error) {
	return nil, errors.Errorf("loading parser %s: shared objects are not supported on windows", path)
}

func (l *Library) Language() *sitter.Language {
	return l.language
}

func (l *Library) Close() error {
	return nil
}
