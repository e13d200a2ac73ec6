package etch

import (
	"fmt"
	"strings"
)

// SafeString marks a value as pre-escaped: escape functions pass its content
// through untouched. Reusable blocks return their output wrapped in one, so
// re-embedding a block result through <%= %> never double-escapes it.
type SafeString struct {
	value string
}

// Safe wraps already-escaped content.
func Safe(value string) *SafeString {
	return &SafeString{value: value}
}

// String returns the wrapped content.
func (s *SafeString) String() string {
	return s.value
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// XMLEscape is the default escape function: it stringifies the value, then
// entity-escapes the five XML metacharacters. SafeString values pass through
// raw and nil renders as "null".
func XMLEscape(value any) string {
	switch v := value.(type) {
	case *SafeString:
		return v.String()
	case string:
		return xmlEscaper.Replace(v)
	case nil:
		return "null"
	case fmt.Stringer:
		return xmlEscaper.Replace(v.String())
	default:
		return xmlEscaper.Replace(fmt.Sprintf("%v", v))
	}
}
