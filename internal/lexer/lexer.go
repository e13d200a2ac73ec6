package lexer

import (
	"regexp"
	"strings"
)

// Kind describes the syntactic category emitted by the lexer.
type Kind int

const (
	TokenText Kind = iota
	TokenCode
	TokenComment
	TokenEscaped
	TokenRaw
	TokenTagEnd
	TokenNewline
)

// Token represents one lexical unit plus the flags the parser needs for
// whitespace policy.
type Token struct {
	Kind  Kind
	Value string

	// Trim is set on a TagEnd closed with the =%> variant.
	Trim bool
	// Directive is set on content produced by a whole-line % directive.
	Directive bool
	// Blank is set on the Newline of an empty or whitespace-only text line.
	Blank bool
	// InTag is set on the Newline of a line that ended inside an open tag.
	InTag bool
	// Last is set on the Newline of the final physical line.
	Last bool
}

var (
	lineRe  = regexp.MustCompile(`\A(\s*)%(%|={1,2}|#)?(.*)\z`)
	openRe  = regexp.MustCompile(`\A(.*?)<%(%|={1,2}|#)?`)
	closeRe = regexp.MustCompile(`\A(.*?)(=?)%>`)
)

// mode is the cross-line scanner state: a tag left open on one line keeps the
// scanner in its content mode on the next.
type mode int

const (
	modeText mode = iota
	modeCode
	modeComment
	modeEscaped
	modeRaw
)

// modeFor maps a tag or directive discriminator to the content mode it opens.
func modeFor(disc string) mode {
	switch disc {
	case "#":
		return modeComment
	case "=":
		return modeEscaped
	case "==":
		return modeRaw
	default:
		return modeCode
	}
}

// kindFor maps a content mode to the token kind it produces.
func kindFor(m mode) Kind {
	switch m {
	case modeCode:
		return TokenCode
	case modeComment:
		return TokenComment
	case modeEscaped:
		return TokenEscaped
	default:
		return TokenRaw
	}
}

// Lex tokenizes template source line by line. Directive lines are recognized
// only in text mode; inside a multi-line tag every line feeds the open tag
// until its terminator shows up.
func Lex(src string) []Token {
	lines := strings.Split(src, "\n")
	m := modeText
	var tokens []Token

	for i, line := range lines {
		last := i == len(lines)-1

		if m == modeText {
			if groups := lineRe.FindStringSubmatch(line); groups != nil {
				tokens = append(tokens, lexDirective(groups)...)
				tokens = append(tokens, Token{Kind: TokenNewline, Last: last})
				continue
			}
			if strings.TrimSpace(line) == "" {
				tokens = append(tokens, Token{Kind: TokenNewline, Blank: true, Last: last})
				continue
			}
		}

		scanner := NewMatcher(line)
		for !scanner.Done() {
			if m != modeText {
				if groups := scanner.Match(closeRe); groups != nil {
					tokens = append(tokens, Token{Kind: kindFor(m), Value: groups[1]})
					tokens = append(tokens, Token{Kind: TokenTagEnd, Trim: groups[2] == "="})
					m = modeText
					continue
				}
				tokens = append(tokens, Token{Kind: kindFor(m), Value: scanner.Rest()})
				continue
			}

			groups := scanner.Match(openRe)
			if groups == nil {
				if rest := scanner.Rest(); rest != "" {
					tokens = append(tokens, Token{Kind: TokenText, Value: rest})
				}
				continue
			}
			if groups[1] != "" {
				tokens = append(tokens, Token{Kind: TokenText, Value: groups[1]})
			}
			if groups[2] == "%" {
				// Literal-percent opener: emit "<%" and stay in text mode.
				tokens = append(tokens, Token{Kind: TokenText, Value: "<%"})
				continue
			}
			m = modeFor(groups[2])
		}

		tokens = append(tokens, Token{Kind: TokenNewline, InTag: m != modeText, Last: last})
	}

	return tokens
}

// lexDirective turns one whole-line % directive into content tokens. The
// literal form keeps its indentation and sheds one percent sign.
func lexDirective(groups []string) []Token {
	indent, disc, rest := groups[1], groups[2], groups[3]
	if disc == "%" {
		return []Token{{Kind: TokenText, Value: indent + "%" + rest}}
	}
	return []Token{{Kind: kindFor(modeFor(disc)), Value: rest, Directive: true}}
}
