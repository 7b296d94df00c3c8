package script

import (
	"fmt"
	"os"

	"github.com/joshuapare/regapply/internal/regtext"
	"github.com/joshuapare/regapply/pkg/types"
)

// ParseOptions selects the dialect and input encoding.
type ParseOptions = regtext.ParseOptions

// ParseFile reads and parses a script file.
func ParseFile(path string, opts ParseOptions) (*types.Document, error) {
	if !fileExists(path) {
		return nil, fmt.Errorf("script file not found: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return ParseBytes(data, opts)
}

// ParseString parses script text held in a string.
func ParseString(text string, opts ParseOptions) (*types.Document, error) {
	return ParseBytes([]byte(text), opts)
}

// ParseBytes parses script text. This is the core parsing function used by
// ParseFile and ParseString.
func ParseBytes(data []byte, opts ParseOptions) (*types.Document, error) {
	return regtext.Parse(data, opts)
}

// Format renders doc in canonical native form.
func Format(doc *types.Document) ([]byte, error) {
	return regtext.EmitNative(doc)
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
