package document

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
)

// Options configures a static document
type Options struct {
	Width   float64
	Height  float64
	ScrollX float64
	ScrollY float64

	// BaseURL resolves relative hrefs
	BaseURL string
}

const (
	defaultWidth   = 1280
	defaultHeight  = 720
	defaultBaseURL = "http://localhost/"
)

type staticState struct {
	doc      *Document
	htmlRoot *html.Node
	base     *url.URL
	bySource map[*html.Node]*node

	// frozen documents come from a capture table; their computed facts are
	// never recomputed from inline styles
	frozen bool
}

// ParseHTML builds a static document from markup. Computed style comes from
// inline style attributes (with inheritance of visibility, cursor and
// font-size); geometry comes from inline left/top/width/height in pixels.
// Elements without an inline width and height have no client rects.
func ParseHTML(r io.Reader, opts Options) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	if opts.Width == 0 {
		opts.Width = defaultWidth
	}
	if opts.Height == 0 {
		opts.Height = defaultHeight
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", opts.BaseURL, err)
	}

	d := &Document{
		width:   opts.Width,
		height:  opts.Height,
		scrollX: opts.ScrollX,
		scrollY: opts.ScrollY,
	}
	st := &staticState{
		doc:      d,
		htmlRoot: root,
		base:     base,
		bySource: make(map[*html.Node]*node),
	}
	d.static = st

	htmlEl := htmlquery.FindOne(root, "//html")
	if htmlEl == nil {
		return nil, fmt.Errorf("document has no html element")
	}
	d.root = st.build(htmlEl, nil)
	if body := htmlquery.FindOne(root, "//body"); body != nil {
		d.body = st.bySource[body]
	}
	st.recompute()
	return d, nil
}

// ParseHTMLString is ParseHTML over a string
func ParseHTMLString(markup string, opts Options) (*Document, error) {
	return ParseHTML(strings.NewReader(markup), opts)
}

// QueryXPath resolves an XPath expression against a static document
func (d *Document) QueryXPath(expr string) (interfaces.Element, error) {
	if d.static == nil {
		return nil, fmt.Errorf("xpath lookup needs a static document")
	}
	found, err := htmlquery.Query(d.static.htmlRoot, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	if found == nil {
		return nil, nil
	}
	n, ok := d.static.bySource[found]
	if !ok {
		return nil, nil
	}
	return n, nil
}

func (st *staticState) build(src *html.Node, parent *node) *node {
	n := &node{
		doc:    st.doc,
		index:  len(st.doc.nodes),
		parent: parent,
		source: src,
	}
	st.doc.nodes = append(st.doc.nodes, n)
	st.bySource[src] = n

	switch src.Type {
	case html.TextNode:
		n.kind = interfaces.TextNodeKind
		n.data = src.Data
		return n
	case html.ElementNode:
		n.kind = interfaces.ElementNodeKind
		n.tag = strings.ToLower(src.Data)
		for _, a := range src.Attr {
			n.attrs = append(n.attrs, interfaces.Attr{Name: a.Key, Value: a.Val})
		}
	}

	for c := src.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode && c.Type != html.TextNode {
			continue
		}
		n.children = append(n.children, st.build(c, n))
	}
	return n
}

type inherited struct {
	displayNone      bool
	visibility       string
	cursor           string
	fontSize         string
	editable         bool
	fieldsetDisabled bool
}

func (st *staticState) recompute() {
	if st.doc.root == nil {
		return
	}
	st.computeNode(st.doc.root, inherited{
		visibility: "visible",
		cursor:     "auto",
		fontSize:   "16px",
	})
	for _, n := range st.doc.nodes {
		if n.kind == interfaces.ElementNodeKind && n.tag == "label" {
			n.control = st.labelControl(n)
		}
	}
}

func (st *staticState) computeNode(n *node, in inherited) {
	if n.kind != interfaces.ElementNodeKind {
		return
	}
	styleAttr, _ := n.Attribute("style")
	decls := parseInlineStyle(styleAttr)

	n.inline = decls.get("display")
	display := n.inline
	if display == "" {
		if _, hidden := n.Attribute("hidden"); hidden {
			display = "none"
		} else {
			display = defaultDisplay(n.tag)
		}
	}

	n.hasStyle = true
	n.style = interfaces.Style{
		Display:    display,
		Visibility: orDefault(decls.get("visibility"), in.visibility),
		Cursor:     orDefault(decls.get("cursor"), in.cursor),
		Float:      orDefault(decls.get("float"), "none"),
		Position:   orDefault(decls.get("position"), "static"),
		FontSize:   orDefault(decls.get("font-size"), in.fontSize),
	}
	n.after = ""

	none := in.displayNone || display == "none"
	n.visible = !none
	n.rects = nil
	n.bbox = entities.Rect{}
	if !none && display != "contents" {
		if r, ok := inlineGeometry(decls); ok {
			n.rects = []entities.Rect{r}
			n.bbox = r
		}
	}

	_, n.hidden = n.Attribute("hidden")

	editable := in.editable
	if v, ok := n.Attribute("contenteditable"); ok {
		switch strings.ToLower(v) {
		case "", "true", "plaintext-only":
			editable = true
		case "false":
			editable = false
		}
	}
	n.editable = editable

	_, hasDisabled := n.Attribute("disabled")
	n.disabled = false
	switch n.tag {
	case "button", "input", "select", "textarea", "optgroup", "option", "fieldset":
		n.disabled = hasDisabled || in.fieldsetDisabled
	}

	n.href = ""
	if n.tag == "a" || n.tag == "area" {
		if raw, ok := n.Attribute("href"); ok {
			n.href = st.resolve(raw)
		}
	}
	n.value = st.valueOf(n)

	next := inherited{
		displayNone:      none,
		visibility:       n.style.Visibility,
		cursor:           n.style.Cursor,
		fontSize:         n.style.FontSize,
		editable:         editable,
		fieldsetDisabled: in.fieldsetDisabled || (n.tag == "fieldset" && hasDisabled),
	}
	for _, child := range n.children {
		st.computeNode(child, next)
	}
}

func inlineGeometry(decls inlineStyle) (entities.Rect, bool) {
	w, okW := px(decls.get("width"))
	h, okH := px(decls.get("height"))
	if !okW || !okH {
		return entities.Rect{}, false
	}
	left, _ := px(decls.get("left"))
	top, _ := px(decls.get("top"))
	return entities.NewRect(left, top, left+w, top+h), true
}

func (st *staticState) resolve(raw string) string {
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	return st.base.ResolveReference(ref).String()
}

func (st *staticState) valueOf(n *node) string {
	switch n.tag {
	case "input":
		v, _ := n.Attribute("value")
		return v
	case "textarea":
		return textContent(n)
	case "select":
		var first *node
		for _, opt := range descendantsByTag(n, "option") {
			if first == nil {
				first = opt
			}
			if _, ok := opt.Attribute("selected"); ok {
				return optionValue(opt)
			}
		}
		if first != nil {
			return optionValue(first)
		}
	}
	return ""
}

func optionValue(opt *node) string {
	if v, ok := opt.Attribute("value"); ok {
		return v
	}
	return strings.TrimSpace(textContent(opt))
}

var labelable = map[string]bool{
	"button": true, "input": true, "meter": true, "output": true,
	"progress": true, "select": true, "textarea": true,
}

func isLabelable(n *node) bool {
	if !labelable[n.tag] {
		return false
	}
	if n.tag == "input" {
		t, _ := n.Attribute("type")
		return !strings.EqualFold(t, "hidden")
	}
	return true
}

func (st *staticState) labelControl(label *node) *node {
	if target, ok := label.Attribute("for"); ok {
		for _, n := range st.doc.nodes {
			if n.kind != interfaces.ElementNodeKind {
				continue
			}
			if id, ok := n.Attribute("id"); ok && id == target {
				if isLabelable(n) {
					return n
				}
				return nil
			}
		}
		return nil
	}
	var found *node
	var walk func(*node)
	walk = func(n *node) {
		for _, child := range n.children {
			if found != nil || child.kind != interfaces.ElementNodeKind {
				continue
			}
			if isLabelable(child) {
				found = child
				return
			}
			walk(child)
		}
	}
	walk(label)
	return found
}

func (st *staticState) mutate(n *node, m mutation) error {
	switch m.Op {
	case opSetAttribute:
		n.setAttr(m.Name, m.Value)
	case opRemoveAttribute:
		n.removeAttr(m.Name)
	case opSetDisplay:
		styleAttr, _ := n.Attribute("style")
		updated := parseInlineStyle(styleAttr).set("display", m.Value).String()
		if updated == "" {
			n.removeAttr("style")
		} else {
			n.setAttr("style", updated)
		}
	case opRemoveClass:
		var kept []string
		for _, c := range strings.Fields(n.ClassName()) {
			if c != m.Name {
				kept = append(kept, c)
			}
		}
		n.setAttr("class", strings.Join(kept, " "))
	case opClick, opKey:
		return nil
	default:
		return fmt.Errorf("unsupported mutation %q", m.Op)
	}
	if st.frozen {
		if m.Op == opSetDisplay {
			n.inline = m.Value
			if m.Value != "" {
				n.style.Display = m.Value
			}
		}
		return nil
	}
	st.syncSource(n)
	st.recompute()
	return nil
}

// syncSource mirrors attribute changes into the parsed tree so xpath
// queries see them.
func (st *staticState) syncSource(n *node) {
	if n.source == nil {
		return
	}
	attrs := make([]html.Attribute, 0, len(n.attrs))
	for _, a := range n.attrs {
		attrs = append(attrs, html.Attribute{Key: a.Name, Val: a.Value})
	}
	n.source.Attr = attrs
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func textContent(n *node) string {
	if n.kind == interfaces.TextNodeKind {
		return n.data
	}
	var b strings.Builder
	for _, child := range n.children {
		b.WriteString(textContent(child))
	}
	return b.String()
}

func descendantsByTag(n *node, tag string) []*node {
	var out []*node
	for _, child := range n.children {
		if child.kind != interfaces.ElementNodeKind {
			continue
		}
		if child.tag == tag {
			out = append(out, child)
		}
		out = append(out, descendantsByTag(child, tag)...)
	}
	return out
}
