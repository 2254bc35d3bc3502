package entities

import (
	"encoding/json"
	"sort"
	"strings"
)

// AttributeValue holds either a string or, for boolean-semantics attributes
// (required, checked, selected, readonly and their aria- forms), a bool.
type AttributeValue struct {
	Str    string
	Bool   bool
	IsBool bool
}

// StringAttr wraps a plain attribute value.
func StringAttr(s string) AttributeValue {
	return AttributeValue{Str: s}
}

// BoolAttr wraps a coerced boolean attribute value.
func BoolAttr(b bool) AttributeValue {
	return AttributeValue{Bool: b, IsBool: true}
}

// Truthy mirrors how the page scripts test attribute values: a non-empty
// string or a true bool.
func (v AttributeValue) Truthy() bool {
	if v.IsBool {
		return v.Bool
	}
	return v.Str != ""
}

// String renders the value the way it is written back into markup.
func (v AttributeValue) String() string {
	if v.IsBool {
		if v.Bool {
			return "true"
		}
		return "false"
	}
	return v.Str
}

func (v AttributeValue) MarshalJSON() ([]byte, error) {
	if v.IsBool {
		return json.Marshal(v.Bool)
	}
	return json.Marshal(v.Str)
}

func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = BoolAttr(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = StringAttr(s)
	return nil
}

// Attributes maps attribute names to values.
type Attributes map[string]AttributeValue

// Truthy reports whether the attribute exists and is truthy.
func (a Attributes) Truthy(name string) bool {
	v, ok := a[name]
	return ok && v.Truthy()
}

// Str returns the string form of an attribute, or "" when absent.
func (a Attributes) Str(name string) string {
	v, ok := a[name]
	if !ok {
		return ""
	}
	return v.String()
}

// Names returns attribute names in lexical order.
func (a Attributes) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Role returns the lower-cased role attribute.
func (a Attributes) Role() string {
	return strings.ToLower(strings.TrimSpace(a.Str("role")))
}

// SelectOption is one entry of a selection control.
type SelectOption struct {
	OptionIndex int    `json:"optionIndex"`
	Text        string `json:"text"`
}

// ElementNode is one captured interactable element.
type ElementNode struct {
	ID            int            `json:"id"`
	TagName       string         `json:"tagName"`
	Attributes    Attributes     `json:"attributes,omitempty"`
	Text          string         `json:"text,omitempty"`
	Children      []*ElementNode `json:"children,omitempty"`
	Rect          *Rect          `json:"rect,omitempty"`
	Options       []SelectOption `json:"options,omitempty"`
	Context       string         `json:"context,omitempty"`
	LinkedElement *int           `json:"linked_element,omitempty"`
	Value         *string        `json:"value,omitempty"`

	// CapturedText and CapturedContext keep the values as first captured so
	// deduplication can be recomputed from them.
	CapturedText    string `json:"-"`
	CapturedContext string `json:"-"`
}

// Walk visits the node and its descendants in pre-order.
func (n *ElementNode) Walk(fn func(*ElementNode)) {
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// LinkTo records a relation to another element by id.
func (n *ElementNode) LinkTo(id int) {
	n.LinkedElement = &id
}
