package diagnostics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Error is a template failure annotated with the source context of the line
// that raised it.
type Error struct {
	Name    string // template diagnostic label
	Line    int    // 1-based template line, 0 when unknown
	Context string // annotated source window
	Message string // original failure message
	Cause   error
}

// Error renders the annotated message, or a bare name-prefixed one when no
// source line could be recovered.
func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d\n%s\n\n%s", e.Name, e.Line, e.Context, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Unwrap exposes the original failure.
func (e *Error) Unwrap() error {
	return e.Cause
}

// FromStack scans captured stack text for the compiled function's frame
// marker and maps the generated-source line found there back to a template
// line. It returns nil when no marker frame is present: the failure did not
// originate inside the compiled function and must be re-raised unmodified.
func FromStack(name string, lines []string, wrapper int, marker, stack, msg string, cause error) error {
	gen, ok := frameLine(stack, marker)
	if !ok {
		return nil
	}
	line := gen - wrapper
	if line < 1 || line > len(lines) {
		return nil
	}
	return &Error{
		Name:    name,
		Line:    line,
		Context: Window(lines, line),
		Message: msg,
		Cause:   cause,
	}
}

var syntaxLineRe = regexp.MustCompile(`Line (\d+):(\d+)`)

// FromSyntax annotates a construction failure with the template name and,
// when the failure text carries a generated-source position, a source window.
func FromSyntax(name string, lines []string, wrapper int, marker string, cause error) error {
	msg := cause.Error()
	if strings.Contains(msg, marker) {
		if groups := syntaxLineRe.FindStringSubmatch(msg); groups != nil {
			gen, _ := strconv.Atoi(groups[1])
			line := gen - wrapper
			if line >= 1 && line <= len(lines) {
				return &Error{
					Name:    name,
					Line:    line,
					Context: Window(lines, line),
					Message: msg,
					Cause:   cause,
				}
			}
		}
	}
	return &Error{Name: name, Message: msg, Cause: cause}
}

// frameLine finds the first stack line mentioning the frame marker and
// extracts the generated-source line number following it.
func frameLine(stack, marker string) (int, bool) {
	token := marker + ":"
	for _, frame := range strings.Split(stack, "\n") {
		idx := strings.Index(frame, token)
		if idx < 0 {
			continue
		}
		rest := frame[idx+len(token):]
		end := 0
		for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
			end++
		}
		if end == 0 {
			continue
		}
		line, err := strconv.Atoi(rest[:end])
		if err != nil {
			continue
		}
		return line, true
	}
	return 0, false
}

// Window renders the context slice around a failing line: three lines before
// through two after, clipped to the document, with right-aligned line numbers
// and a pointer on the line itself.
func Window(lines []string, line int) string {
	start := line - 3
	if start < 1 {
		start = 1
	}
	end := line + 2
	if end > len(lines) {
		end = len(lines)
	}
	width := len(strconv.Itoa(end))

	var b strings.Builder
	for n := start; n <= end; n++ {
		prefix := "   "
		if n == line {
			prefix = ">> "
		}
		fmt.Fprintf(&b, "%s%*d| %s", prefix, width, n, lines[n-1])
		if n < end {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
