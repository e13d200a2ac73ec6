package codegen

import (
	"strings"

	"github.com/cruffinoni/etch/internal/ast"
)

// WrapperLines is the number of synthetic lines emitted before the first
// template line: the async wrapper and the output accumulator. The error
// context mapper subtracts it to translate generated-source lines back to
// template lines, so it must track the shape of Generate's preamble exactly.
const WrapperLines = 2

// FrameMarker is the source name the generated program is compiled under. It
// shows up in the evaluator's stack frames and is how failures raised inside
// the compiled function are told apart from everything else.
const FrameMarker = "<template>"

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

// Generate lowers the node sequence into one JavaScript source string.
// Template line L lands on generated line L+WrapperLines: LineBreak markers
// emit literal newlines, and expressions the author split across physical
// lines are re-joined with embedded newlines to keep the alignment exact.
func Generate(doc ast.Document) string {
	var b strings.Builder
	b.WriteString("(async function () { with (__locals) {\n")
	b.WriteString("let __output = '';\n")

	nodes := doc.Nodes
	for i := 0; i < len(nodes); i++ {
		n := nodes[i]
		switch n.Kind {
		case ast.Text:
			b.WriteString(`__output += "`)
			b.WriteString(textEscaper.Replace(n.Value))
			b.WriteString(`";`)
		case ast.Code:
			b.WriteString(n.Value)
		case ast.Comment:
			// Comments vanish; their line breaks are separate nodes.
		case ast.Escaped, ast.Raw:
			value, skip := foldExpression(nodes, i)
			i += skip
			if n.Kind == ast.Escaped {
				b.WriteString("__output += __escape(")
			} else {
				b.WriteString("__output += (")
			}
			b.WriteString(value)
			b.WriteString(");")
		case ast.BlockStart:
			b.WriteString("const ")
			b.WriteString(n.Value)
			b.WriteString(" = async (")
			b.WriteString(n.Params)
			b.WriteString(") => { let __output = '';")
		case ast.BlockEnd:
			b.WriteString("return __safe(__output); };")
		case ast.LineBreak:
			b.WriteByte('\n')
		case ast.TagEnd:
			// Emits nothing; only separates adjacent same-kind tags.
		}
	}

	b.WriteString("return __output; } })();")
	return b.String()
}

// foldExpression joins an expression node with the continuations the author
// split across physical lines, inserting one newline per consumed LineBreak
// so the generated statement spans exactly the lines the source did.
func foldExpression(nodes []ast.Node, i int) (string, int) {
	value := nodes[i].Value
	end := i
	for {
		j := end + 1
		breaks := 0
		for j < len(nodes) && nodes[j].Kind == ast.LineBreak {
			breaks++
			j++
		}
		if breaks == 0 || j >= len(nodes) || nodes[j].Kind != nodes[i].Kind {
			break
		}
		value += strings.Repeat("\n", breaks) + nodes[j].Value
		end = j
	}
	return stripTerminator(value), end - i
}

// stripTerminator drops a stray trailing semicolon from an expression before
// it is wrapped in an append statement.
func stripTerminator(value string) string {
	trimmed := strings.TrimRight(value, " \t\r")
	if strings.HasSuffix(trimmed, ";") {
		return trimmed[:len(trimmed)-1]
	}
	return value
}
