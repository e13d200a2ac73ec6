package parser

import (
	"github.com/cruffinoni/etch/internal/ast"
	"github.com/cruffinoni/etch/internal/lexer"
)

// Parse turns template source into the flat node sequence consumed by the
// code generator, applying the whitespace-trim policy along the way.
func Parse(src string) ast.Document {
	var doc ast.Document
	var (
		pendingTrim  bool
		hasDirective bool
		directive    lexer.Kind
	)

	for _, tok := range lexer.Lex(src) {
		switch tok.Kind {
		case lexer.TokenText:
			extractBlocks(&doc, tok.Value)
		case lexer.TokenCode:
			doc.Append(ast.Node{Kind: ast.Code, Value: tok.Value})
		case lexer.TokenComment:
			doc.Append(ast.Node{Kind: ast.Comment, Value: tok.Value})
		case lexer.TokenEscaped:
			doc.Append(ast.Node{Kind: ast.Escaped, Value: tok.Value})
		case lexer.TokenRaw:
			doc.Append(ast.Node{Kind: ast.Raw, Value: tok.Value})
		case lexer.TokenTagEnd:
			if tok.Trim {
				doc.TrimTextTail()
				pendingTrim = true
			}
			doc.Append(ast.Node{Kind: ast.TagEnd})
		case lexer.TokenNewline:
			if emitsNewline(&doc, tok, pendingTrim, hasDirective, directive) {
				doc.AppendText("\n")
			}
			doc.Append(ast.Node{Kind: ast.LineBreak})
			pendingTrim = false
			hasDirective = false
		}
		if tok.Directive {
			hasDirective = true
			directive = tok.Kind
		}
	}

	return doc
}

// emitsNewline decides whether the physical line that just ended contributes a
// newline to the rendered output.
func emitsNewline(doc *ast.Document, nl lexer.Token, pendingTrim, hasDirective bool, directive lexer.Kind) bool {
	if nl.Last || nl.InTag || pendingTrim {
		return false
	}
	if nl.Blank {
		return true
	}
	if hasDirective {
		// Whole-line directives are invisible, except expression directives
		// whose result replaces the line and keeps its line break.
		return directive == lexer.TokenEscaped || directive == lexer.TokenRaw
	}
	if kind, ok := doc.LastKind(); ok && (kind == ast.BlockStart || kind == ast.BlockEnd) {
		return false
	}
	return true
}
