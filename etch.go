// Package etch compiles embedded templates into reusable render functions.
// A template interleaves literal text with JavaScript fragments in <% %> tags
// or %-prefixed directive lines; compilation lowers the whole document into
// one asynchronous function, and failures raised by embedded code are mapped
// back to the template line that caused them.
package etch

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/cruffinoni/etch/internal/codegen"
	"github.com/cruffinoni/etch/internal/parser"
	"github.com/cruffinoni/etch/internal/vm"
)

// DefaultName labels templates constructed without an explicit name.
const DefaultName = "template"

// debugEnv turns on generated-source dumping for every template, read once at
// process start.
var debugEnv = os.Getenv("ETCH_DEBUG") != ""

// EscapeFunc renders one expression result as output text. Implementations
// must pass pre-escaped values through untouched and stringify everything
// else, nil included.
type EscapeFunc func(value any) string

// RenderFunc is a compiled template, invocable any number of times with
// independent data contexts.
type RenderFunc func(ctx context.Context, data map[string]any) (string, error)

// Options configures template construction.
type Options struct {
	// Name is the diagnostic label used in error messages.
	Name string
	// Escape overrides the default XMLEscape function.
	Escape EscapeFunc
	// Debug dumps the generated source to stderr at compile time for this
	// template, like ETCH_DEBUG=1 does globally.
	Debug bool
}

// Template owns immutable template source and a lazily compiled render
// function. The first render compiles, later renders reuse the cached
// function; a Template is safe for concurrent use.
type Template struct {
	lines  []string
	name   string
	escape EscapeFunc
	debug  bool

	once sync.Once
	fn   RenderFunc
	err  error
}

// New builds a Template from raw source text.
func New(source string, opts *Options) *Template {
	t := &Template{
		lines:  strings.Split(source, "\n"),
		name:   DefaultName,
		escape: XMLEscape,
		debug:  debugEnv,
	}
	t.applyOptions(opts)
	return t
}

// NewFrom derives a Template from an existing one, inheriting source lines
// and escape function unless overridden. The compiled-function cache is not
// shared: the derived template compiles on its own first render.
func NewFrom(t *Template, opts *Options) *Template {
	derived := &Template{
		lines:  t.lines,
		name:   t.name,
		escape: t.escape,
		debug:  t.debug,
	}
	derived.applyOptions(opts)
	return derived
}

func (t *Template) applyOptions(opts *Options) {
	if opts == nil {
		return
	}
	if opts.Name != "" {
		t.name = opts.Name
	}
	if opts.Escape != nil {
		t.escape = opts.Escape
	}
	if opts.Debug {
		t.debug = true
	}
}

// Name returns the diagnostic label.
func (t *Template) Name() string {
	return t.name
}

// Compile parses the template, generates its source, and builds the render
// function. The work happens once; every later call returns the cached
// function or the cached construction failure.
func (t *Template) Compile() (RenderFunc, error) {
	t.once.Do(func() {
		t.fn, t.err = t.compile()
	})
	return t.fn, t.err
}

func (t *Template) compile() (RenderFunc, error) {
	doc := parser.Parse(strings.Join(t.lines, "\n"))
	source := codegen.Generate(doc)
	if t.debug {
		fmt.Fprintf(os.Stderr, "-- Generated code for %s\n%s\n", t.name, source)
	}

	prog, err := vm.Compile(t.name, t.lines, source)
	if err != nil {
		return nil, err
	}

	escape := t.escape
	return func(ctx context.Context, data map[string]any) (string, error) {
		return prog.Run(ctx, data, vm.EscapeFunc(escape), func(s string) any { return Safe(s) })
	}, nil
}

// Render compiles on first use and renders the template with data. A nil data
// map renders with an empty context.
func (t *Template) Render(ctx context.Context, data map[string]any) (string, error) {
	fn, err := t.Compile()
	if err != nil {
		return "", err
	}
	return fn(ctx, data)
}

// Render is the one-shot convenience entry point: construct, compile, render.
func Render(ctx context.Context, source string, data map[string]any, opts *Options) (string, error) {
	return New(source, opts).Render(ctx, data)
}
