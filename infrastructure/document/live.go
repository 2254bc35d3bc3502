package document

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
)

//go:embed capture.js
var captureScript string

// CaptureScript is the page-side script that serializes the rendered
// document into a node table and applies forwarded mutations.
func CaptureScript() string {
	return captureScript
}

// Capture is the node table returned by the capture script
type Capture struct {
	Viewport struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"viewport"`
	Scroll struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"scroll"`
	Root  int          `json:"root"`
	Nodes []NodeRecord `json:"nodes"`
}

// NodeRecord describes one captured node. Rects are [left, top, right, bottom].
type NodeRecord struct {
	Index    int          `json:"i"`
	Parent   int          `json:"p"`
	Kind     int          `json:"k"`
	Data     string       `json:"d,omitempty"`
	Tag      string       `json:"tag,omitempty"`
	Attrs    [][2]string  `json:"a,omitempty"`
	Style    *StyleRecord `json:"s,omitempty"`
	After    string       `json:"after,omitempty"`
	Rects    [][4]float64 `json:"r,omitempty"`
	Box      [4]float64   `json:"b"`
	Visible  bool         `json:"v"`
	Hidden   bool         `json:"h"`
	Disabled bool         `json:"dis"`
	Editable bool         `json:"ce"`
	Href     string       `json:"href,omitempty"`
	Value    string       `json:"val,omitempty"`
	Control  int          `json:"ctl"`
	Inline   string       `json:"inl,omitempty"`
	Children []int        `json:"c,omitempty"`
}

// StyleRecord holds the captured computed style
type StyleRecord struct {
	Display    string `json:"display"`
	Visibility string `json:"visibility"`
	Cursor     string `json:"cursor"`
	Float      string `json:"float"`
	Position   string `json:"position"`
	FontSize   string `json:"fontSize"`
}

type liveBinding struct {
	ctx    context.Context
	runner interfaces.ScriptRunner
	doc    *Document
	logger *logrus.Logger
	dirty  bool
}

// NewLive captures the page behind runner. Mutations made through the
// returned document are applied to the page as well. Close must be called
// when the pass is over.
func NewLive(ctx context.Context, runner interfaces.ScriptRunner, logger *logrus.Logger) (*Document, error) {
	d := &Document{}
	lb := &liveBinding{ctx: ctx, runner: runner, doc: d, logger: logger}
	d.live = lb

	capture, err := lb.run(mutation{Op: opCapture, Reset: true})
	if err != nil {
		return nil, fmt.Errorf("failed to capture document: %w", err)
	}
	d.applyCapture(capture)
	if capture.Root >= 0 {
		d.body = d.nodeAt(capture.Root)
		d.root = d.body
	}
	return d, nil
}

// FromCapture builds a document from an already decoded capture. Mutations
// only affect the in-memory table.
func FromCapture(capture *Capture) *Document {
	d := &Document{}
	d.static = &staticState{doc: d}
	d.applyCapture(capture)
	if capture.Root >= 0 {
		d.body = d.nodeAt(capture.Root)
		d.root = d.body
	}
	d.static.frozen = true
	return d
}

func (lb *liveBinding) run(m mutation) (*Capture, error) {
	out, err := lb.runner.Evaluate(lb.ctx, captureScript, m.args())
	if err != nil {
		return nil, err
	}
	raw, ok := out.(string)
	if !ok {
		return nil, fmt.Errorf("capture script returned %T, want string", out)
	}
	var capture Capture
	if err := json.Unmarshal([]byte(raw), &capture); err != nil {
		return nil, fmt.Errorf("failed to decode capture: %w", err)
	}
	return &capture, nil
}

// mutate forwards m to the page. Display and class changes can hide or
// reveal descendants, so their whole subtree comes back re-described.
func (lb *liveBinding) mutate(n *node, m mutation) error {
	m.Index = n.index
	m.Deep = m.Op == opSetDisplay || m.Op == opRemoveClass
	capture, err := lb.run(m)
	if err != nil {
		return fmt.Errorf("%s on %s: %w", m.Op, n, err)
	}
	lb.doc.applyCapture(capture)
	if m.Op == opClick || m.Op == opKey {
		lb.dirty = true
	}
	return nil
}

func (lb *liveBinding) refreshByID(id string) error {
	capture, err := lb.run(mutation{Op: opCapture, ID: id})
	if err != nil {
		return err
	}
	lb.doc.applyCapture(capture)
	lb.dirty = false
	return nil
}

func (lb *liveBinding) release() error {
	_, err := lb.run(mutation{Op: opRelease})
	return err
}

func (lb *liveBinding) logf(format string, args ...interface{}) {
	if lb.logger != nil {
		lb.logger.Debugf(format, args...)
	}
}

func (m mutation) args() map[string]interface{} {
	args := map[string]interface{}{
		"op": string(m.Op),
		"i":  m.Index,
	}
	if m.Name != "" {
		args["name"] = m.Name
	}
	if m.Value != "" {
		args["value"] = m.Value
	}
	if m.ID != "" {
		args["id"] = m.ID
	}
	if m.Reset {
		args["reset"] = true
	}
	if m.Deep {
		args["deep"] = true
	}
	return args
}

func (d *Document) nodeAt(i int) *node {
	if i < 0 || i >= len(d.nodes) {
		return nil
	}
	return d.nodes[i]
}

func (d *Document) ensureNode(i int) *node {
	for len(d.nodes) <= i {
		d.nodes = append(d.nodes, nil)
	}
	if d.nodes[i] == nil {
		d.nodes[i] = &node{doc: d, index: i}
	}
	return d.nodes[i]
}

// applyCapture merges captured records into the node table
func (d *Document) applyCapture(c *Capture) {
	if c.Viewport.Width > 0 {
		d.width, d.height = c.Viewport.Width, c.Viewport.Height
		d.scrollX, d.scrollY = c.Scroll.X, c.Scroll.Y
	}

	described := make(map[int]bool, len(c.Nodes))
	for _, rec := range c.Nodes {
		described[rec.Index] = true
		d.ensureNode(rec.Index)
	}

	for _, rec := range c.Nodes {
		n := d.nodes[rec.Index]
		n.kind = interfaces.NodeKind(rec.Kind)
		if n.kind == interfaces.TextNodeKind {
			n.data = rec.Data
		} else {
			n.applyRecord(rec)
		}
		if rec.Parent >= 0 && (described[rec.Parent] || d.nodeAt(rec.Parent) != nil) {
			n.parent = d.ensureNode(rec.Parent)
		}
	}

	for _, rec := range c.Nodes {
		if rec.Kind != int(interfaces.ElementNodeKind) {
			continue
		}
		n := d.nodes[rec.Index]
		n.children = n.children[:0]
		for _, ci := range rec.Children {
			child := d.nodeAt(ci)
			if child == nil || child.kind == 0 {
				continue
			}
			child.parent = n
			n.children = append(n.children, child)
		}
		n.control = nil
		if n.tag != "label" {
			continue
		}
		if ctl := d.nodeAt(rec.Control); ctl != nil && ctl.kind == interfaces.ElementNodeKind {
			n.control = ctl
		}
	}
}

func (n *node) applyRecord(rec NodeRecord) {
	n.tag = rec.Tag
	n.attrs = n.attrs[:0]
	for _, a := range rec.Attrs {
		n.attrs = append(n.attrs, interfaces.Attr{Name: a[0], Value: a[1]})
	}
	n.hasStyle = rec.Style != nil
	if rec.Style != nil {
		n.style = interfaces.Style{
			Display:    rec.Style.Display,
			Visibility: rec.Style.Visibility,
			Cursor:     rec.Style.Cursor,
			Float:      rec.Style.Float,
			Position:   rec.Style.Position,
			FontSize:   rec.Style.FontSize,
		}
	}
	n.after = rec.After
	n.rects = n.rects[:0]
	for _, r := range rec.Rects {
		n.rects = append(n.rects, entities.NewRect(r[0], r[1], r[2], r[3]))
	}
	n.bbox = entities.NewRect(rec.Box[0], rec.Box[1], rec.Box[2], rec.Box[3])
	n.visible = rec.Visible
	n.hidden = rec.Hidden
	n.disabled = rec.Disabled
	n.editable = rec.Editable
	n.href = rec.Href
	n.value = rec.Value
	n.inline = rec.Inline
}
