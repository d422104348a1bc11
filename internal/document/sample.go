package document

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/inamate/spider/internal/engine"
)

//go:embed poses.yaml
var defaultPoses []byte

// Default returns the built-in pose document: stop, peace, fist, shaka,
// spread and claw.
func Default() *Document {
	doc, err := Load(bytes.NewReader(defaultPoses))
	if err != nil {
		panic(fmt.Sprintf("document: built-in poses: %v", err))
	}
	return doc
}

// DefaultLibrary returns the built-in pose library.
func DefaultLibrary() *engine.PoseLibrary {
	lib, err := Default().Library()
	if err != nil {
		panic(fmt.Sprintf("document: built-in library: %v", err))
	}
	return lib
}

// LoadLibrary returns the library from path, or the built-in one when path is empty.
func LoadLibrary(path string) (*engine.PoseLibrary, error) {
	if path == "" {
		return DefaultLibrary(), nil
	}
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return doc.Library()
}
