package vm

import (
	"context"
	"errors"
	"fmt"

	"github.com/dop251/goja"

	"github.com/cruffinoni/etch/internal/codegen"
	"github.com/cruffinoni/etch/internal/diagnostics"
)

// EscapeFunc renders one expression result as output text, honoring
// pre-escaped values.
type EscapeFunc func(value any) string

// SafeFunc wraps accumulated block output in the engine's pre-escaped marker.
type SafeFunc func(value string) any

// Program is one compiled template body plus the source metadata needed to
// map failures back to template lines.
type Program struct {
	name  string
	lines []string
	prog  *goja.Program
}

// Compile builds the invocable program from generated source. A construction
// failure is annotated with the template name and routed through the error
// context mapper before being returned.
func Compile(name string, lines []string, source string) (*Program, error) {
	prog, err := goja.Compile(codegen.FrameMarker, source, false)
	if err != nil {
		return nil, diagnostics.FromSyntax(name, lines, codegen.WrapperLines, codegen.FrameMarker, err)
	}
	return &Program{name: name, lines: lines, prog: prog}, nil
}

// Run renders once: a fresh runtime with the data context bound to __locals
// and the collaborators exposed as globals. The compiled program is never
// mutated, so concurrent Runs of one Program are independent.
func (p *Program) Run(ctx context.Context, data map[string]any, escape EscapeFunc, safe SafeFunc) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if data == nil {
		data = map[string]any{}
	}

	rt := goja.New()
	if err := rt.Set("__locals", data); err != nil {
		return "", err
	}
	if err := rt.Set("__escape", func(v goja.Value) string { return escape(exportValue(v)) }); err != nil {
		return "", err
	}
	if err := rt.Set("__safe", func(s string) any { return safe(s) }); err != nil {
		return "", err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			rt.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	value, err := rt.RunProgram(p.prog)
	if err != nil {
		return "", p.mapRunError(err)
	}

	promise, ok := value.Export().(*goja.Promise)
	if !ok {
		return "", fmt.Errorf("template %s: generated program did not produce a promise", p.name)
	}
	switch promise.State() {
	case goja.PromiseStateFulfilled:
		return promise.Result().String(), nil
	case goja.PromiseStateRejected:
		return "", p.mapThrown(promise.Result(), nil)
	default:
		return "", fmt.Errorf("template %s: render did not settle; embedded code awaited a value nothing resolves", p.name)
	}
}

// mapRunError classifies a failure from program evaluation itself: context
// interrupts come back as the context error, thrown values go through the
// error context mapper, anything else is passed along untouched.
func (p *Program) mapRunError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			return cause
		}
		return err
	}
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return p.mapThrown(ex.Value(), err)
	}
	return err
}

// mapThrown maps a thrown value to a source-annotated error via its captured
// stack. Values without a marker frame are re-raised unmodified.
func (p *Program) mapThrown(thrown goja.Value, fallback error) error {
	cause := fallback
	if cause == nil {
		if exported, ok := thrown.Export().(error); ok {
			cause = exported
		} else {
			cause = errors.New(thrown.String())
		}
	}

	stack := ""
	if obj, ok := thrown.(*goja.Object); ok {
		if s := obj.Get("stack"); s != nil && !goja.IsUndefined(s) {
			stack = s.String()
		}
	}

	mapped := diagnostics.FromStack(p.name, p.lines, codegen.WrapperLines, codegen.FrameMarker, stack, thrown.String(), cause)
	if mapped != nil {
		return mapped
	}
	return cause
}

// exportValue hands collaborators a Go value, keeping the JavaScript names
// for the two values that would otherwise both export to nil.
func exportValue(v goja.Value) any {
	if v == nil {
		return nil
	}
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return v.String()
	}
	return v.Export()
}
