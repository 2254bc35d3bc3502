package extractor

import (
	"strings"

	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
)

const (
	// contextLimit drops assembled contexts longer than this many characters
	contextLimit = 5000

	// ancestorDepth bounds the walk looking for a labelling ancestor
	ancestorDepth = 10
)

// fieldClassHints mark wrapper classes used as field labels in extended mode
var fieldClassHints = []string{"field", "entry"}

// resolveContexts attaches context to every registry entry. Strategies run
// in a fixed order: linked labels, labelling ancestor, table cells.
func (p *pass) resolveContexts() {
	for _, e := range p.entries {
		var candidates []string
		for _, strategy := range []func(*entry) string{
			p.linkedContext,
			p.ancestorContext,
			p.tableContext,
		} {
			if ctx := strategy(e); ctx != "" {
				candidates = append(candidates, ctx)
			}
		}
		context := strings.Join(candidates, ";")
		applyContext(e.node, context)

		if p.extended && hasRequiredMarker(context) &&
			!e.node.Attributes.Truthy("required") && !e.node.Attributes.Truthy("aria-required") {
			e.node.Attributes["required"] = entities.BoolAttr(true)
		}
	}
}

// applyContext keeps context only when it is non-empty and within the limit
func applyContext(node *entities.ElementNode, context string) {
	if context == "" || textLen(context) > contextLimit {
		node.Context = ""
		node.CapturedContext = ""
		return
	}
	node.Context = context
	node.CapturedContext = context
}

// linkedContext reads labels pointing at the element through for=,
// aria-labelledby or aria-describedby
func (p *pass) linkedContext(e *entry) string {
	el := e.element
	var linked []interfaces.Element
	if id, ok := el.Attribute("id"); ok && id != "" {
		linked = append(linked, p.doc.Find(func(candidate interfaces.Element) bool {
			if candidate.TagName() != "label" {
				return false
			}
			target, ok := candidate.Attribute("for")
			return ok && target == id
		})...)
	}
	for _, relation := range []string{"aria-labelledby", "aria-describedby"} {
		refs, _ := el.Attribute(relation)
		for _, ref := range strings.Fields(refs) {
			if target := p.doc.ElementByID(ref); target != nil {
				linked = append(linked, target)
			}
		}
	}

	var parts []string
	for _, l := range linked {
		if content := elementContent(l, el); content != "" {
			parts = append(parts, content)
		}
	}
	return strings.Join(parts, ";")
}

// ancestorContext uses the nearest label, fieldset or, in extended mode,
// field-like wrapper. A fieldset contributes its parent's context.
func (p *pass) ancestorContext(e *entry) string {
	var target interfaces.Element
	cur := e.element
	for i := 0; i < ancestorDepth; i++ {
		cur = cur.Parent()
		if cur == nil {
			break
		}
		if p.isContextualAncestor(cur) {
			target = cur
			break
		}
	}
	if target == nil {
		return ""
	}

	if target.TagName() == "fieldset" {
		target = target.Parent()
		if target == nil {
			return ""
		}
	}
	return p.elementContext(target)
}

func (p *pass) isContextualAncestor(el interfaces.Element) bool {
	switch el.TagName() {
	case "label", "fieldset":
		return true
	}
	if !p.extended {
		return false
	}
	class := strings.ToLower(el.ClassName())
	for _, hint := range fieldClassHints {
		if strings.Contains(class, hint) {
			return true
		}
	}
	return false
}

// tableContext gives links inside a table cell or row the context of the
// row and of the cell
func (p *pass) tableContext(e *entry) string {
	if !e.category.tableContext() {
		return ""
	}
	parent := e.element.Parent()
	if parent == nil {
		return ""
	}
	switch parent.TagName() {
	case "td", "th", "tr":
	default:
		return ""
	}

	var parts []string
	if grandparent := parent.Parent(); grandparent != nil {
		if ctx := p.elementContext(grandparent); ctx != "" {
			parts = append(parts, ctx)
		}
	}
	if ctx := p.elementContext(parent); ctx != "" {
		parts = append(parts, ctx)
	}
	return strings.Join(parts, ";")
}
