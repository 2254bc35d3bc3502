package interfaces

import "page_structure/domain/entities"

// NodeKind distinguishes element nodes from text nodes
type NodeKind int

const (
	ElementNodeKind NodeKind = 1
	TextNodeKind    NodeKind = 3
)

// Node is any child of an element
type Node interface {
	Kind() NodeKind

	// Data returns the literal text of a text node and "" for elements
	Data() string

	// AsElement returns the node as an element when it is one
	AsElement() (Element, bool)
}

// Attr is one attribute in document order
type Attr struct {
	Name  string
	Value string
}

// Style carries the computed style properties the extractor reads
type Style struct {
	Display    string
	Visibility string
	Cursor     string
	Float      string
	Position   string
	FontSize   string
}

// Element is a rendered element of a live document.
// Implementations must return the same value for the same underlying node so
// elements can be compared with == and used as map keys.
type Element interface {
	Node

	// TagName returns the lower-cased tag name
	TagName() string

	Attribute(name string) (string, bool)
	Attributes() []Attr
	ClassName() string

	Parent() Element
	ChildNodes() []Node
	Children() []Element
	PreviousElementSibling() Element
	NextElementSibling() Element

	// ComputedStyle fails when the style cannot be established
	ComputedStyle() (Style, error)

	// PseudoContent returns the computed content of a pseudo element such as "::after"
	PseudoContent(pseudo string) (string, error)

	ClientRects() ([]entities.Rect, error)
	BoundingClientRect() (entities.Rect, error)

	// CheckVisibility is the engine's native visibility check with opacity
	// and visibility-CSS checks switched off
	CheckVisibility() bool

	Hidden() bool
	Disabled() bool
	ContentEditable() bool

	// Href returns the resolved link destination, "" when there is none
	Href() string

	// Value returns the live value of form controls
	Value() string

	// Control returns the control bound to a label, or nil
	Control() Element

	// InlineDisplay returns the display value set in the style attribute
	InlineDisplay() string

	SetAttribute(name, value string) error
	RemoveAttribute(name string) error

	// SetInlineDisplay sets the inline display value, "" removes it
	SetInlineDisplay(value string) error
	RemoveClass(name string) error

	Click() error
	DispatchKey(key string) error
}

// Document is one rendered document scope
type Document interface {
	Body() Element
	ElementByID(id string) Element

	// Find returns every element matching fn in document order
	Find(fn func(Element) bool) []Element

	Viewport() (width, height float64)
	ScrollOffset() (x, y float64)
}
