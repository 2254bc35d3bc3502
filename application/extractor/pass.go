package extractor

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
)

// MarkerAttribute is written on every captured element while a pass runs.
// Nothing carrying it survives the pass.
const MarkerAttribute = "unique_id"

type entry struct {
	node     *entities.ElementNode
	element  interfaces.Element
	category category
	locator  string
}

type styleResult struct {
	style interfaces.Style
	err   error
}

type undoFunc struct {
	what string
	fn   func() error
}

// pass holds everything one extraction pass needs. It is created per call and
// thrown away afterwards, so nothing leaks into the next pass.
type pass struct {
	doc      interfaces.Document
	extended bool
	logger   *logrus.Logger

	entries []*entry
	forest  []*entities.ElementNode

	styles     map[interfaces.Element]styleResult
	inlineZero map[interfaces.Element]bool
	marked     map[interfaces.Element]int

	journal []undoFunc
}

func newPass(doc interfaces.Document, extended bool, logger *logrus.Logger) *pass {
	return &pass{
		doc:        doc,
		extended:   extended,
		logger:     logger,
		styles:     make(map[interfaces.Element]styleResult),
		inlineZero: make(map[interfaces.Element]bool),
		marked:     make(map[interfaces.Element]int),
	}
}

// style memoizes computed style lookups for the pass
func (p *pass) style(el interfaces.Element) (interfaces.Style, error) {
	if r, ok := p.styles[el]; ok {
		return r.style, r.err
	}
	s, err := el.ComputedStyle()
	p.styles[el] = styleResult{style: s, err: err}
	return s, err
}

// invalidate drops memoized style facts. Called after simulated input, which
// may restyle any part of the page.
func (p *pass) invalidate() {
	p.styles = make(map[interfaces.Element]styleResult)
	p.inlineZero = make(map[interfaces.Element]bool)
}

func (p *pass) mark(el interfaces.Element, id int) {
	p.marked[el] = id
	if err := el.SetAttribute(MarkerAttribute, strconv.Itoa(id)); err != nil {
		p.logger.Debugf("failed to mark element %d: %v", id, err)
	}
}

func (p *pass) isMarked(el interfaces.Element) bool {
	_, ok := p.marked[el]
	return ok
}

// record adds an undo step for a page mutation
func (p *pass) record(what string, fn func() error) {
	p.journal = append(p.journal, undoFunc{what: what, fn: fn})
}

// sweepMarkers clears markers left behind by an interrupted earlier pass
func (p *pass) sweepMarkers() {
	stale := p.doc.Find(func(el interfaces.Element) bool {
		_, ok := el.Attribute(MarkerAttribute)
		return ok
	})
	for _, el := range stale {
		if err := el.RemoveAttribute(MarkerAttribute); err != nil {
			p.logger.Debugf("failed to clear stale marker: %v", err)
		}
	}
	if len(stale) > 0 {
		p.logger.Debugf("cleared %d stale markers", len(stale))
	}
}

// release undoes every page mutation of the pass in reverse order and
// removes the markers. It runs on every exit path.
func (p *pass) release() {
	for i := len(p.journal) - 1; i >= 0; i-- {
		u := p.journal[i]
		if err := u.fn(); err != nil {
			p.logger.Debugf("failed to revert %s: %v", u.what, err)
		}
	}
	p.journal = nil

	for el, id := range p.marked {
		if err := el.RemoveAttribute(MarkerAttribute); err != nil {
			p.logger.Debugf("failed to remove marker %d: %v", id, err)
		}
	}
	p.marked = make(map[interfaces.Element]int)
}

func (p *pass) registry() []*entities.ElementNode {
	out := make([]*entities.ElementNode, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.node
	}
	return out
}
