// Package lang resolves tree-sitter grammars, either compiled into the binary
// or loaded from a parser shared object such as nvim-treesitter's cpp.so.
package lang

import (
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/css"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/lua"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/toml"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/smacker/go-tree-sitter/yaml"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrUnknownLanguage = errors.New("unknown language")
	ErrSymbolNotFound  = errors.New("language symbol not found")
)

// Grammars compiled into the binary, keyed by the name nvim-treesitter uses for
// the parser.
var builtins = map[string]func() *sitter.Language{
	"bash":       bash.GetLanguage,
	"c":          c.GetLanguage,
	"cpp":        cpp.GetLanguage,
	"c_sharp":    csharp.GetLanguage,
	"css":        css.GetLanguage,
	"go":         golang.GetLanguage,
	"html":       html.GetLanguage,
	"java":       java.GetLanguage,
	"javascript": javascript.GetLanguage,
	"lua":        lua.GetLanguage,
	"python":     python.GetLanguage,
	"ruby":       ruby.GetLanguage,
	"rust":       rust.GetLanguage,
	"toml":       toml.GetLanguage,
	"tsx":        tsx.GetLanguage,
	"typescript": typescript.GetLanguage,
	"yaml":       yaml.GetLanguage,
}

var aliases = map[string]string{
	"csharp": "c_sharp",
	"golang": "go",
	"js":     "javascript",
	"sh":     "bash",
	"ts":     "typescript",
}

var extensions = map[string]string{
	".bash": "bash",
	".sh":   "bash",
	".c":    "c",
	".h":    "c",
	".cc":   "cpp",
	".cpp":  "cpp",
	".cxx":  "cpp",
	".hpp":  "cpp",
	".cs":   "c_sharp",
	".css":  "css",
	".go":   "go",
	".htm":  "html",
	".html": "html",
	".java": "java",
	".cjs":  "javascript",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".lua":  "lua",
	".py":   "python",
	".rb":   "ruby",
	".rs":   "rust",
	".toml": "toml",
	".tsx":  "tsx",
	".ts":   "typescript",
	".yaml": "yaml",
	".yml":  "yaml",
}

// Returns the built-in grammar with the provided name or alias.
func Builtin(name string) (*sitter.Language, error) {
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	getLanguage, ok := builtins[name]
	if !ok {
		return nil, errors.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
	return getLanguage(), nil
}

// Names returns the sorted names of the built-in grammars.
func Names() []string {
	result := make([]string, 0, len(builtins))
	for name := range builtins {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Guesses the built-in grammar name for the source file at path from its
// extension. Overrides map extensions (with the leading dot) to grammar names
// and take precedence over the defaults.
func NameForFile(path string, overrides map[string]string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if name, ok := overrides[ext]; ok {
		return name, nil
	}
	if name, ok := extensions[ext]; ok {
		return name, nil
	}
	return "", errors.Errorf("%w: no grammar for file %s", ErrUnknownLanguage, path)
}

// Returns the file name up to its first dot, ignoring a leading dot, which is
// the language name of a parser file: "cpp.so" is "cpp" and ".vimrc.so" is
// ".vimrc". File names without a dot are returned as is.
func FilePrefix(fileName string) string {
	if fileName == ".." || len(fileName) < 2 {
		return fileName
	}
	i := strings.IndexByte(fileName[1:], '.')
	if i == -1 {
		return fileName
	}
	return fileName[:i+1]
}

// Name of the function a parser shared object exports to create its language.
func SymbolName(parserFile string) string {
	return "tree_sitter_" + FilePrefix(filepath.Base(parserFile))
}
