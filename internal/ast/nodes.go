package ast

// Kind describes the role of one node in the flat template representation.
type Kind int

const (
	// Text is literal output, embedded into generated source as a string append.
	Text Kind = iota
	// Code is an embedded statement fragment, emitted verbatim.
	Code
	// Comment is ignored by the generator.
	Comment
	// Escaped is an expression whose result is passed through the escape function.
	Escaped
	// Raw is an expression whose result is appended unescaped.
	Raw
	// BlockStart opens a named reusable block closure.
	BlockStart
	// BlockEnd closes the innermost open block closure.
	BlockEnd
	// LineBreak marks a physical source line boundary. The generator emits a
	// literal newline for it so generated lines stay aligned with the template.
	LineBreak
	// TagEnd marks an inline tag terminator. It emits nothing but keeps
	// back-to-back tags of the same kind from merging into one node.
	TagEnd
)

// Node is one element of the flat template representation. Blocks are not
// nested: a BlockStart/BlockEnd pair delimits a sub-scope in document order.
type Node struct {
	Kind Kind
	// Value holds literal text, raw code, or expression source depending on Kind;
	// for BlockStart it holds the block name.
	Value string
	// Params is the declared parameter list of a BlockStart, without parentheses.
	Params string
}

// Document is the ordered node sequence produced by the parser.
type Document struct {
	Nodes []Node
}

// mergeable reports whether adjacent nodes of this kind collapse into one.
// Marker kinds never merge: two LineBreaks are two source lines.
func mergeable(k Kind) bool {
	switch k {
	case Text, Code, Comment, Escaped, Raw:
		return true
	default:
		return false
	}
}

// Append adds a node, concatenating its value onto the previous node when both
// share a mergeable kind. The merge must be exact concatenation: multi-line
// expressions rely on it to preserve line counts in generated code.
func (d *Document) Append(n Node) {
	if last := d.last(); last != nil && last.Kind == n.Kind && mergeable(n.Kind) {
		last.Value += n.Value
		return
	}
	d.Nodes = append(d.Nodes, n)
}

// AppendText appends literal output text.
func (d *Document) AppendText(text string) {
	if text == "" {
		return
	}
	d.Append(Node{Kind: Text, Value: text})
}

// TrimTextTail strips trailing whitespace from the nearest preceding Text
// node, serving the whitespace-trimming tag terminator.
func (d *Document) TrimTextTail() {
	for i := len(d.Nodes) - 1; i >= 0; i-- {
		if d.Nodes[i].Kind != Text {
			continue
		}
		v := d.Nodes[i].Value
		end := len(v)
		for end > 0 {
			c := v[end-1]
			if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				break
			}
			end--
		}
		d.Nodes[i].Value = v[:end]
		return
	}
}

// LastKind returns the kind of the final node, or ok=false for an empty document.
func (d *Document) LastKind() (Kind, bool) {
	if last := d.last(); last != nil {
		return last.Kind, true
	}
	return 0, false
}

func (d *Document) last() *Node {
	if len(d.Nodes) == 0 {
		return nil
	}
	return &d.Nodes[len(d.Nodes)-1]
}
