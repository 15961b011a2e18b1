package objectkey

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Generator defines the interface for object key generation strategies
type Generator interface {
	// GenerateKey creates an object key for an uploaded file
	GenerateKey(fileName string) string
}

// UUIDGenerator produces flat keys: a random token followed by the
// lowercased extension of the original file name ({token}{ext}). The token
// carries all the uniqueness; the extension only keeps content type
// recognizable to humans and CDNs.
type UUIDGenerator struct{}

// NewUUIDGenerator creates the default key generator
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) GenerateKey(fileName string) string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	return token + Ext(fileName)
}

// PrefixedGenerator nests keys of an underlying generator under a fixed
// path prefix, for containers shared with other applications.
type PrefixedGenerator struct {
	Prefix string
	Base   Generator
}

// NewPrefixedGenerator creates a generator that prefixes keys from base
func NewPrefixedGenerator(prefix string, base Generator) *PrefixedGenerator {
	if base == nil {
		base = NewUUIDGenerator()
	}
	return &PrefixedGenerator{Prefix: strings.Trim(prefix, "/"), Base: base}
}

func (g *PrefixedGenerator) GenerateKey(fileName string) string {
	key := g.Base.GenerateKey(fileName)
	if g.Prefix == "" {
		return key
	}
	return g.Prefix + "/" + key
}

// CustomFuncGenerator allows users to provide their own key generation function
type CustomFuncGenerator struct {
	GenerateFunc func(fileName string) string
}

// NewCustomFuncGenerator creates a generator from a plain function
func NewCustomFuncGenerator(fn func(fileName string) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{GenerateFunc: fn}
}

func (g *CustomFuncGenerator) GenerateKey(fileName string) string {
	return g.GenerateFunc(fileName)
}

// Ext extracts the lowercased extension (including the dot) from a file
// name. Characters that cannot appear in an object key path segment are
// replaced, and a bare trailing dot yields no extension at all.
func Ext(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "." {
		return ""
	}
	return sanitizeExt(ext)
}

func sanitizeExt(ext string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(ext)
}
