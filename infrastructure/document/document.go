// Package document implements the rendered-document port on top of an
// in-memory node table. The table comes either from a capture script run in a
// live page (mutations are forwarded back to the page) or from static HTML
// with inline styles.
package document

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
)

// EventType names a simulated input event
type EventType string

const (
	EventClick EventType = "click"
	EventKey   EventType = "keydown"
)

// Event is a simulated input event sent to an element
type Event struct {
	Type    EventType
	Key     string
	Element interfaces.Element
}

type node struct {
	doc   *Document
	index int
	kind  interfaces.NodeKind
	data  string

	tag      string
	attrs    []interfaces.Attr
	parent   *node
	children []*node

	style    interfaces.Style
	hasStyle bool
	after    string
	rects    []entities.Rect
	bbox     entities.Rect
	visible  bool
	hidden   bool
	disabled bool
	editable bool
	href     string
	value    string
	control  *node
	inline   string

	source *html.Node
}

// Document is an in-memory rendered document
type Document struct {
	root  *node
	body  *node
	nodes []*node

	width, height    float64
	scrollX, scrollY float64

	// live is nil for static documents
	live   *liveBinding
	static *staticState

	events []Event
}

// Events returns the simulated input events in the order they were sent
func (d *Document) Events() []Event {
	return append([]Event(nil), d.events...)
}

func (d *Document) Body() interfaces.Element {
	if d.body == nil {
		return nil
	}
	return d.body
}

func (d *Document) ElementByID(id string) interfaces.Element {
	if id == "" {
		return nil
	}
	if d.live != nil && d.live.dirty {
		if err := d.live.refreshByID(id); err != nil {
			d.live.logf("refresh of #%s failed: %v", id, err)
		}
	}
	found := d.Find(func(el interfaces.Element) bool {
		v, ok := el.Attribute("id")
		return ok && v == id
	})
	if len(found) > 0 {
		return found[0]
	}
	// Nodes captured after the tree was built may not be attached yet.
	for _, n := range d.nodes {
		if n == nil || n.kind != interfaces.ElementNodeKind {
			continue
		}
		if v, ok := n.Attribute("id"); ok && v == id {
			return n
		}
	}
	return nil
}

func (d *Document) Find(fn func(interfaces.Element) bool) []interfaces.Element {
	var out []interfaces.Element
	var walk func(n *node)
	walk = func(n *node) {
		if n.kind != interfaces.ElementNodeKind {
			return
		}
		if fn(n) {
			out = append(out, n)
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	if d.root != nil {
		walk(d.root)
	}
	return out
}

func (d *Document) Viewport() (float64, float64) {
	return d.width, d.height
}

func (d *Document) ScrollOffset() (float64, float64) {
	return d.scrollX, d.scrollY
}

// Close drops the page-side node table of a live document.
// It is a no-op for static documents.
func (d *Document) Close() error {
	if d.live == nil {
		return nil
	}
	return d.live.release()
}

func (d *Document) mutate(n *node, op mutation) error {
	if d.live != nil {
		return d.live.mutate(n, op)
	}
	return d.static.mutate(n, op)
}

// node

func (n *node) Kind() interfaces.NodeKind {
	return n.kind
}

func (n *node) Data() string {
	return n.data
}

func (n *node) AsElement() (interfaces.Element, bool) {
	if n.kind != interfaces.ElementNodeKind {
		return nil, false
	}
	return n, true
}

func (n *node) TagName() string {
	return n.tag
}

func (n *node) Attribute(name string) (string, bool) {
	for _, attr := range n.attrs {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

func (n *node) Attributes() []interfaces.Attr {
	return append([]interfaces.Attr(nil), n.attrs...)
}

func (n *node) ClassName() string {
	v, _ := n.Attribute("class")
	return v
}

func (n *node) Parent() interfaces.Element {
	if n.parent == nil || n.parent.kind != interfaces.ElementNodeKind {
		return nil
	}
	return n.parent
}

func (n *node) ChildNodes() []interfaces.Node {
	out := make([]interfaces.Node, 0, len(n.children))
	for _, child := range n.children {
		out = append(out, child)
	}
	return out
}

func (n *node) Children() []interfaces.Element {
	var out []interfaces.Element
	for _, child := range n.children {
		if child.kind == interfaces.ElementNodeKind {
			out = append(out, child)
		}
	}
	return out
}

func (n *node) siblingIndex() int {
	if n.parent == nil {
		return -1
	}
	for i, sibling := range n.parent.children {
		if sibling == n {
			return i
		}
	}
	return -1
}

func (n *node) PreviousElementSibling() interfaces.Element {
	i := n.siblingIndex()
	if i < 0 {
		return nil
	}
	for j := i - 1; j >= 0; j-- {
		if s := n.parent.children[j]; s.kind == interfaces.ElementNodeKind {
			return s
		}
	}
	return nil
}

func (n *node) NextElementSibling() interfaces.Element {
	i := n.siblingIndex()
	if i < 0 {
		return nil
	}
	for j := i + 1; j < len(n.parent.children); j++ {
		if s := n.parent.children[j]; s.kind == interfaces.ElementNodeKind {
			return s
		}
	}
	return nil
}

func (n *node) ComputedStyle() (interfaces.Style, error) {
	if !n.hasStyle {
		return interfaces.Style{}, fmt.Errorf("no computed style for <%s>", n.tag)
	}
	return n.style, nil
}

func (n *node) PseudoContent(pseudo string) (string, error) {
	if !n.hasStyle {
		return "", fmt.Errorf("no computed style for <%s>%s", n.tag, pseudo)
	}
	if pseudo != "::after" {
		return "", nil
	}
	return n.after, nil
}

func (n *node) ClientRects() ([]entities.Rect, error) {
	return append([]entities.Rect(nil), n.rects...), nil
}

func (n *node) BoundingClientRect() (entities.Rect, error) {
	return n.bbox, nil
}

func (n *node) CheckVisibility() bool {
	return n.visible
}

func (n *node) Hidden() bool {
	return n.hidden
}

func (n *node) Disabled() bool {
	return n.disabled
}

func (n *node) ContentEditable() bool {
	return n.editable
}

func (n *node) Href() string {
	return n.href
}

func (n *node) Value() string {
	return n.value
}

func (n *node) Control() interfaces.Element {
	if n.control == nil {
		return nil
	}
	return n.control
}

func (n *node) InlineDisplay() string {
	return n.inline
}

func (n *node) SetAttribute(name, value string) error {
	return n.doc.mutate(n, mutation{Op: opSetAttribute, Name: name, Value: value})
}

func (n *node) RemoveAttribute(name string) error {
	return n.doc.mutate(n, mutation{Op: opRemoveAttribute, Name: name})
}

func (n *node) SetInlineDisplay(value string) error {
	return n.doc.mutate(n, mutation{Op: opSetDisplay, Value: value})
}

func (n *node) RemoveClass(name string) error {
	return n.doc.mutate(n, mutation{Op: opRemoveClass, Name: name})
}

func (n *node) Click() error {
	n.doc.events = append(n.doc.events, Event{Type: EventClick, Element: n})
	return n.doc.mutate(n, mutation{Op: opClick})
}

func (n *node) DispatchKey(key string) error {
	n.doc.events = append(n.doc.events, Event{Type: EventKey, Key: key, Element: n})
	return n.doc.mutate(n, mutation{Op: opKey, Value: key})
}

func (n *node) String() string {
	if n.kind == interfaces.TextNodeKind {
		return fmt.Sprintf("#text(%q)", n.data)
	}
	var b strings.Builder
	b.WriteString("<" + n.tag)
	if id, ok := n.Attribute("id"); ok {
		b.WriteString(" id=" + id)
	}
	b.WriteString(">")
	return b.String()
}

// setAttr updates the local attribute list without forwarding anything.
func (n *node) setAttr(name, value string) {
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, interfaces.Attr{Name: name, Value: value})
}

func (n *node) removeAttr(name string) {
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

type mutationOp string

const (
	opSetAttribute    mutationOp = "setAttribute"
	opRemoveAttribute mutationOp = "removeAttribute"
	opSetDisplay      mutationOp = "setDisplay"
	opRemoveClass     mutationOp = "removeClass"
	opClick           mutationOp = "click"
	opKey             mutationOp = "key"
	opCapture         mutationOp = "capture"
	opRelease         mutationOp = "release"
)

type mutation struct {
	Op    mutationOp `json:"op"`
	Index int        `json:"i"`
	Name  string     `json:"name,omitempty"`
	Value string     `json:"value,omitempty"`
	ID    string     `json:"id,omitempty"`
	Reset bool       `json:"reset,omitempty"`

	// Deep asks the page to re-describe the whole subtree of the node
	Deep bool `json:"deep,omitempty"`
}

var _ interfaces.Document = (*Document)(nil)
var _ interfaces.Element = (*node)(nil)
