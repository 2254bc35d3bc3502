package extractor

import (
	"strings"

	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
)

// category is the closed set of element kinds the builder treats
// differently. Every kind implements every hook, so adding a hook forces a
// decision for each kind.
type category interface {
	// capture adds the kind-specific parts of a freshly materialized node
	capture(p *pass, el interfaces.Element, node *entities.ElementNode)

	// tableContext reports whether the tabular context strategy applies
	tableContext() bool

	// textEntry reports whether the element holds a typed value
	textEntry() bool

	name() string
}

type genericCategory struct{}
type selectableCategory struct{}
type textEntryCategory struct{}
type anchorCategory struct{}

// categorize picks the kind once per element. Selectable wins over text
// entry so a combobox input is treated as a dropdown.
func categorize(el interfaces.Element) category {
	tag := el.TagName()
	switch {
	case tag == "select", roleOf(el) == "listbox", isComboboxTrigger(el):
		return selectableCategory{}
	case tag == "input", tag == "textarea":
		return textEntryCategory{}
	case tag == "a":
		return anchorCategory{}
	default:
		return genericCategory{}
	}
}

// isComboboxTrigger matches a read-only input that opens a listbox it controls
func isComboboxTrigger(el interfaces.Element) bool {
	if el.TagName() != "input" {
		return false
	}
	role, _ := el.Attribute("role")
	popup, _ := el.Attribute("aria-haspopup")
	readonly, isReadonly := el.Attribute("readonly")
	return strings.TrimSpace(role) != "" &&
		strings.TrimSpace(popup) != "" &&
		hasAttribute(el, "aria-controls") &&
		isReadonly && !strings.EqualFold(readonly, "false")
}

func (genericCategory) capture(*pass, interfaces.Element, *entities.ElementNode) {}
func (genericCategory) tableContext() bool { return false }
func (genericCategory) textEntry() bool { return false }
func (genericCategory) name() string { return "generic" }

func (selectableCategory) capture(p *pass, el interfaces.Element, node *entities.ElementNode) {
	switch {
	case el.TagName() == "select":
		node.Options = selectOptions(el)
	case roleOf(el) == "listbox":
		node.Options = listboxOptions(el)
	default:
		textEntryCategory{}.capture(p, el, node)
		node.Options = p.comboboxOptions(el)
	}
}
func (selectableCategory) tableContext() bool { return false }
func (selectableCategory) textEntry() bool { return false }
func (selectableCategory) name() string { return "selectable" }

func (textEntryCategory) capture(_ *pass, el interfaces.Element, node *entities.ElementNode) {
	value := el.Value()
	node.Value = &value
	node.Attributes["value"] = entities.StringAttr(value)
}
func (textEntryCategory) tableContext() bool { return false }
func (textEntryCategory) textEntry() bool { return true }
func (textEntryCategory) name() string { return "text-entry" }

// Links opening a new tab are reported without their target so an agent
// following them stays on the same page.
func (anchorCategory) capture(_ *pass, _ interfaces.Element, node *entities.ElementNode) {
	if node.Attributes.Str("target") == "_blank" {
		delete(node.Attributes, "target")
	}
}
func (anchorCategory) tableContext() bool { return true }
func (anchorCategory) textEntry() bool { return false }
func (anchorCategory) name() string { return "anchor" }
