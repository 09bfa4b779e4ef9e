//go:build !windows

package lang

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>

typedef const void *(*language_func)(void);

static const void *call_language_func(void *fn) {
	return ((language_func)fn)();
}
*/
import "C"
import (
	"unsafe"

	sitter "github.com/smacker/go-tree-sitter"
	"gitlab.com/tozd/go/errors"
)

// Library is a parser shared object loaded into the process. The language must
// not be used after the library has been closed.
type Library struct {
	handle   unsafe.Pointer
	language *sitter.Language
}

// Loads the parser shared object at path and creates its language by calling
// the exported tree_sitter_<name> function, see SymbolName.
func Load(path string) (*Library, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	handle := C.dlopen(cPath, C.int(C.RTLD_NOW|C.RTLD_LOCAL))
	if handle == nil {
		return nil, errors.Errorf("opening parser %s: %s", path, C.GoString(C.dlerror()))
	}

	symbol := SymbolName(path)
	cSymbol := C.CString(symbol)
	defer C.free(unsafe.Pointer(cSymbol))
	fn := C.dlsym(handle, cSymbol)
	if fn == nil {
		C.dlclose(handle)
		return nil, errors.Errorf("%w: %s in %s", ErrSymbolNotFound, symbol, path)
	}

	ptr := C.call_language_func(fn)
	if ptr == nil {
		C.dlclose(handle)
		return nil, errors.Errorf("%s in %s returned no language", symbol, path)
	}
	return &Library{
		handle:   handle,
		language: sitter.NewLanguage(unsafe.Pointer(ptr)),
	}, nil
}

func (l *Library) Language() *sitter.Language {
	return l.language
}

// Close unloads the shared object.
func (l *Library) Close() error {
	if l.handle == nil {
		return nil
	}
	handle := l.handle
	l.handle = nil
	l.language = nil
	if C.dlclose(handle) != 0 {
		return errors.Errorf("closing parser: %s", C.GoString(C.dlerror()))
	}
	return nil
}
