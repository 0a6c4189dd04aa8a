// Package jsxast parses TSX/JSX sources into program trees and prints them back.
package jsxast

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/alexaandru/go-sitter-forest/tsx"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast/pkg/node"
)

// Sentinel errors for parsing.
var (
	ErrSyntax     = errors.New("syntax error")
	errNoRootNode = errors.New("jsxast: no root node")
	errPoolType   = errors.New("jsxast: unexpected parser pool type")
)

// DefaultExtensions lists the file extensions handled by default.
var DefaultExtensions = []string{".tsx", ".jsx"}

var supportedLanguages = []string{"TSX", "TypeScript", "JavaScript", "JSX"}

// Parser converts TSX sources into program trees. It is safe for concurrent use.
type Parser struct {
	language     *sitter.Language
	extensions   []string
	tsParserPool sync.Pool
}

// NewParser creates a Parser accepting the given extensions (DefaultExtensions when empty).
func NewParser(extensions ...string) *Parser {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	normalized := make([]string, 0, len(extensions))

	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}

		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}

		normalized = append(normalized, ext)
	}

	parser := &Parser{
		language:   sitter.NewLanguage(tsx.GetLanguage()),
		extensions: normalized,
	}

	parser.tsParserPool = sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(parser.language)

			return tsParser
		},
	}

	return parser
}

// Extensions returns the accepted file extensions.
func (parser *Parser) Extensions() []string {
	return slices.Clone(parser.extensions)
}

// IsSupported reports whether filename should be parsed. Vendored paths are
// rejected; when content is given, enry must agree it is a script language.
func (parser *Parser) IsSupported(filename string, content []byte) bool {
	if !slices.Contains(parser.extensions, strings.ToLower(filepath.Ext(filename))) {
		return false
	}

	if enry.IsVendor(filepath.ToSlash(filename)) {
		return false
	}

	if content == nil {
		return true
	}

	lang := enry.GetLanguage(filepath.Base(filename), content)

	return lang == "" || slices.Contains(supportedLanguages, lang)
}

// Parse parses content and returns the Program node.
func (parser *Parser) Parse(ctx context.Context, filename string, content []byte) (*node.Node, error) {
	tsParser, ok := parser.tsParserPool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer parser.tsParserPool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	if errNode, found := findError(root); found {
		start := errNode.StartPoint()

		return nil, fmt.Errorf("%w in %s at %d:%d", ErrSyntax, filename, start.Row+1, start.Column+1)
	}

	conv := &converter{source: content}

	return conv.convert(root, contextStatement), nil
}

func findError(tsNode sitter.Node) (sitter.Node, bool) {
	if tsNode.Type() == "ERROR" {
		return tsNode, true
	}

	for idx := range tsNode.ChildCount() {
		if found, ok := findError(tsNode.Child(idx)); ok {
			return found, true
		}
	}

	return sitter.Node{}, false
}
