package etch

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func render(t *testing.T, source string, data map[string]any) string {
	t.Helper()
	out, err := Render(context.Background(), source, data, nil)
	require.NoError(t, err)
	return out
}

func TestRenderPlainText(t *testing.T) {
	require.Equal(t, "Hello\nWorld\n", render(t, "Hello\nWorld\n", nil))
}

func TestRenderEscapedExpression(t *testing.T) {
	require.Equal(t, "&lt;b&gt;", render(t, `<%= "<b>" %>`, nil))
	require.Equal(t, "Hello Go!", render(t, `Hello <%= name %>!`, map[string]any{"name": "Go"}))
}

func TestRenderRawExpression(t *testing.T) {
	require.Equal(t, "<b>", render(t, `<%== "<b>" %>`, nil))
}

func TestRenderComment(t *testing.T) {
	require.Equal(t, "ab", render(t, `a<%# ignored %>b`, nil))
}

func TestRenderCodeTag(t *testing.T) {
	src := "<% for (let i = 0; i < 3; i++) { %><%= i %><% } %>"
	require.Equal(t, "012", render(t, src, nil))
}

func TestRenderDirectiveLines(t *testing.T) {
	src := "% const x = 2\n%= x\ndone"
	require.Equal(t, "2\ndone", render(t, src, nil))

	require.Equal(t, "a\nb", render(t, "a\n%# note\nb", nil))
}

func TestRenderLiteralForms(t *testing.T) {
	require.Equal(t, "<% 1+1 %>", render(t, `<%% 1+1 %>`, nil))
	require.Equal(t, "<%= x %>", render(t, `<%%= x %>`, nil))
	require.Equal(t, "%= x", render(t, "%%= x", nil))
	require.Equal(t, "<{foo}>Foo<{/foo}>", render(t, `<{{foo}}>Foo<{{/foo}}>`, nil))
}

func TestRenderTrimTerminator(t *testing.T) {
	require.Equal(t, "2", render(t, "  <%= 1+1 =%>\n", nil))
	require.Equal(t, "2\n", render(t, "<%= 1+1 %>\n", nil))
}

func TestRenderMultiLineExpression(t *testing.T) {
	require.Equal(t, "2", render(t, "<%= 1 +\n 1 %>", nil))
}

func TestRenderBlocks(t *testing.T) {
	src := `<{greet(name)}>Hi <%= name %>!<{/greet}><%= await greet("A") %><%= await greet("B") %>`
	require.Equal(t, "Hi A!Hi B!", render(t, src, nil))
}

func TestRenderBlockOutputNotDoubleEscaped(t *testing.T) {
	src := `<{box}><div><{/box}><%= await box() %>`
	require.Equal(t, "<div>", render(t, src, nil))
}

func TestRenderAwaitedData(t *testing.T) {
	src := `<%= await fetchName() %>`
	data := map[string]any{
		"fetchName": func() string { return "async enough" },
	}
	require.Equal(t, "async enough", render(t, src, data))
}

func TestCompileCachesFunction(t *testing.T) {
	tmpl := New(`<%= n %>`, nil)

	fn1, err := tmpl.Compile()
	require.NoError(t, err)
	fn2, err := tmpl.Compile()
	require.NoError(t, err)
	require.Equal(t, reflect.ValueOf(fn1).Pointer(), reflect.ValueOf(fn2).Pointer())

	out, err := fn1(context.Background(), map[string]any{"n": 1})
	require.NoError(t, err)
	require.Equal(t, "1", out)
	out, err = fn2(context.Background(), map[string]any{"n": 2})
	require.NoError(t, err)
	require.Equal(t, "2", out)
}

func TestCompileCachesFailure(t *testing.T) {
	tmpl := New(`<% ) %>`, &Options{Name: "bad.etch"})

	_, err1 := tmpl.Compile()
	require.Error(t, err1)
	_, err2 := tmpl.Compile()
	require.Same(t, err1, err2)
	require.Contains(t, err1.Error(), "bad.etch")
}

func TestDefaultNameInErrors(t *testing.T) {
	_, err := Render(context.Background(), "<% throw new Error('x') %>", nil, nil)
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), DefaultName+":1\n"), err.Error())
}

func TestErrorContextWindow(t *testing.T) {
	src := "l1\nl2\nl3\nl4\nl5\n<% throw new Error('boom') %>\nl7\nl8\nl9"
	_, err := Render(context.Background(), src, nil, &Options{Name: "t.etch"})
	require.Error(t, err)

	msg := err.Error()
	require.True(t, strings.HasPrefix(msg, "t.etch:6\n"), msg)
	require.Contains(t, msg, "   3| l3")
	require.Contains(t, msg, ">> 6| <% throw new Error('boom') %>")
	require.Contains(t, msg, "   8| l8")
	require.NotContains(t, msg, "| l9")
	require.Contains(t, msg, "boom")
}

func TestGoCallableErrorMapped(t *testing.T) {
	src := "a\n<%= boom() %>\nc"
	data := map[string]any{
		"boom": func() (string, error) { return "", errors.New("kaput") },
	}

	_, err := Render(context.Background(), src, data, &Options{Name: "t"})
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "t:2\n"), err.Error())
	require.Contains(t, err.Error(), "kaput")
}

func TestCustomEscape(t *testing.T) {
	shout := func(v any) string { return strings.ToUpper(XMLEscape(v)) }
	out, err := Render(context.Background(), `<%= "hi <b>" %>`, nil, &Options{Escape: shout})
	require.NoError(t, err)
	require.Equal(t, "HI &LT;B&GT;", out)
}

func TestNewFrom(t *testing.T) {
	shout := func(v any) string { return strings.ToUpper(XMLEscape(v)) }
	base := New(`<%= "hi" %>`, &Options{Name: "base", Escape: shout})

	derived := NewFrom(base, &Options{Name: "derived"})
	require.Equal(t, "derived", derived.Name())
	require.Equal(t, "base", base.Name())

	out, err := derived.Render(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "HI", out)
}

func TestRenderCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Render(ctx, "ok", nil, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestXMLEscape(t *testing.T) {
	require.Equal(t, "&amp;&lt;&gt;&quot;&#39;", XMLEscape(`&<>"'`))
	require.Equal(t, "null", XMLEscape(nil))
	require.Equal(t, "42", XMLEscape(42))
	require.Equal(t, "<kept>", XMLEscape(Safe("<kept>")))
}
