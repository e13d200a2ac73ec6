package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cruffinoni/etch/internal/parser"
)

func TestGeneratePreambleShape(t *testing.T) {
	lines := strings.Split(Generate(parser.Parse("hello")), "\n")

	// The error mapper subtracts WrapperLines, so the preamble must hold
	// exactly that many lines before the first template line.
	// One template line plus the preamble plus the closing line.
	require.Len(t, lines, WrapperLines+2)
	require.Equal(t, "(async function () { with (__locals) {", lines[0])
	require.Equal(t, "let __output = '';", lines[1])
	require.Contains(t, lines[2], `__output += "hello";`)
	require.Equal(t, "return __output; } })();", lines[3])
}

func TestGenerateLineAlignment(t *testing.T) {
	src := "a\n<% let x = 1; %>\nb\n\nc"
	lines := strings.Split(Generate(parser.Parse(src)), "\n")

	// Every template line L lands on generated line L+WrapperLines.
	require.Len(t, lines, 5+WrapperLines+1)
	require.Contains(t, lines[2], `__output += "a\n";`)
	require.Contains(t, lines[3], "let x = 1;")
	require.Contains(t, lines[4], `__output += "b\n";`)
	require.Contains(t, lines[6], `__output += "c";`)
}

func TestGenerateEscapedAndRaw(t *testing.T) {
	code := Generate(parser.Parse(`<%= a %><%== b %>`))

	require.Contains(t, code, "__output += __escape( a );")
	require.Contains(t, code, "__output += ( b );")
}

func TestGenerateMultiLineExpressionFold(t *testing.T) {
	lines := strings.Split(Generate(parser.Parse("<%= 1 +\n 1 %>")), "\n")

	// The folded statement spans the same two lines the tag did.
	require.Len(t, lines, 2+WrapperLines+1)
	require.Contains(t, lines[2], "__output += __escape( 1 +")
	require.True(t, strings.HasPrefix(lines[3], " 1 );"))
}

func TestGenerateFoldAcrossBlankLines(t *testing.T) {
	lines := strings.Split(Generate(parser.Parse("<%= 1 +\n\n 1 %>")), "\n")

	require.Len(t, lines, 3+WrapperLines+1)
	require.Contains(t, lines[2], "__escape( 1 +")
	require.Equal(t, "", lines[3])
	require.True(t, strings.HasPrefix(lines[4], " 1 );"))
}

func TestGenerateStripsTrailingSemicolon(t *testing.T) {
	code := Generate(parser.Parse(`<%= f(); %>`))
	require.Contains(t, code, "__output += __escape( f());")
	require.NotContains(t, code, ";)")
}

func TestGenerateBlockClosure(t *testing.T) {
	code := Generate(parser.Parse(`<{greet(name)}>Hi <%= name %>!<{/greet}>`))

	require.Contains(t, code, "const greet = async (name) => { let __output = '';")
	require.Contains(t, code, "return __safe(__output); };")
}

func TestGenerateTextEscaping(t *testing.T) {
	code := Generate(parser.Parse("say \"hi\"\\\n"))
	require.Contains(t, code, `__output += "say \"hi\"\\\n";`)
}

func TestGenerateCommentsVanish(t *testing.T) {
	code := Generate(parser.Parse(`a<%# secret %>b`))
	require.NotContains(t, code, "secret")
	require.Contains(t, code, `__output += "a";`)
	require.Contains(t, code, `__output += "b";`)
}
