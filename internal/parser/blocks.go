package parser

import (
	"regexp"
	"strings"

	"github.com/cruffinoni/etch/internal/ast"
)

var (
	blockRe   = regexp.MustCompile(`\A(.*?)<\{(/?)([A-Za-z_]\w*)(?:\(([^)]*)\))?\}>(.*)\z`)
	literalRe = regexp.MustCompile(`<\{\{(/?[A-Za-z_]\w*(?:\([^)]*\))?)\}\}>`)
)

// extractBlocks splits a plain-text fragment around reusable-block markers,
// recursing on the remainder so any number of markers per fragment works.
// Text that is purely whitespace before a marker is dropped, so block tags can
// be indented freely without leaking indentation into the output.
func extractBlocks(doc *ast.Document, text string) {
	groups := blockRe.FindStringSubmatch(text)
	if groups == nil {
		doc.AppendText(unescapeLiterals(text))
		return
	}

	pre, closing, name, params, rest := groups[1], groups[2], groups[3], groups[4], groups[5]
	if strings.TrimSpace(pre) != "" {
		doc.AppendText(unescapeLiterals(pre))
	}
	if closing == "/" {
		// A parameter list on the closing marker is ignored.
		doc.Append(ast.Node{Kind: ast.BlockEnd, Value: name})
	} else {
		doc.Append(ast.Node{Kind: ast.BlockStart, Value: name, Params: params})
	}
	extractBlocks(doc, rest)
}

// unescapeLiterals rewrites the double-brace escape form in place, turning
// <{{name}}> into the literal text <{name}> so templates can generate
// templates that themselves contain block tags.
func unescapeLiterals(text string) string {
	return literalRe.ReplaceAllString(text, "<{$1}>")
}
