package lexer

import "regexp"

// Matcher scans one line through a cursor so back-to-back anchored matches
// never re-scan consumed text. Patterns handed to Match must be \A-anchored.
type Matcher struct {
	value  string
	offset int
}

// NewMatcher returns a matcher positioned at the start of value.
func NewMatcher(value string) *Matcher {
	return &Matcher{value: value}
}

// Match attempts re exactly at the cursor. On success the cursor advances past
// the match and the submatches are returned; on failure the cursor is left
// unchanged and nil is returned.
func (m *Matcher) Match(re *regexp.Regexp) []string {
	groups := re.FindStringSubmatch(m.value[m.offset:])
	if groups == nil {
		return nil
	}
	m.offset += len(groups[0])
	return groups
}

// Rest consumes and returns everything from the cursor to the end of the line.
func (m *Matcher) Rest() string {
	rest := m.value[m.offset:]
	m.offset = len(m.value)
	return rest
}

// Done reports whether the cursor has reached the end of the line.
func (m *Matcher) Done() bool {
	return m.offset >= len(m.value)
}

// Offset returns the current cursor position.
func (m *Matcher) Offset() int {
	return m.offset
}
