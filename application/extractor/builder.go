package extractor

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
)

// booleanAttributes are reported as bools: "false" means false, anything
// else means true
var booleanAttributes = map[string]bool{
	"required":      true,
	"aria-required": true,
	"checked":       true,
	"aria-checked":  true,
	"selected":      true,
	"aria-selected": true,
	"readonly":      true,
	"aria-readonly": true,
}

// normalizeSelect2 reveals native selects hidden behind a select2 widget and
// hides the widget instead. Failures are ignored; everything done here is
// undone when the pass is released.
func (p *pass) normalizeSelect2() {
	containers := p.doc.Find(func(el interfaces.Element) bool {
		return hasClass(el, "select2-container")
	})
	for _, container := range containers {
		revealed := false
		for sib := container.PreviousElementSibling(); sib != nil && !revealed; sib = sib.PreviousElementSibling() {
			revealed = sib.TagName() == "select" && p.reveal(sib)
		}
		for sib := container.NextElementSibling(); sib != nil && !revealed; sib = sib.NextElementSibling() {
			revealed = sib.TagName() == "select" && p.reveal(sib)
		}
		if revealed {
			p.setDisplay(container, "none")
		}
	}
}

// reveal un-hides el when it is hidden by an inline display or a class
// name containing "hidden"
func (p *pass) reveal(el interfaces.Element) bool {
	if el.InlineDisplay() == "none" {
		return p.setDisplay(el, "")
	}

	original := el.ClassName()
	var hiddenClasses []string
	for _, c := range strings.Fields(original) {
		if strings.Contains(c, "hidden") {
			hiddenClasses = append(hiddenClasses, c)
		}
	}
	if len(hiddenClasses) == 0 {
		return false
	}
	p.record("class of "+el.TagName(), func() error {
		return el.SetAttribute("class", original)
	})
	for _, c := range hiddenClasses {
		if err := el.RemoveClass(c); err != nil {
			p.logger.Debugf("failed to remove class %q: %v", c, err)
			return false
		}
	}
	return true
}

func (p *pass) setDisplay(el interfaces.Element, value string) bool {
	previous := el.InlineDisplay()
	if err := el.SetInlineDisplay(value); err != nil {
		p.logger.Debugf("failed to set display of %s: %v", el.TagName(), err)
		return false
	}
	p.record("display of "+el.TagName(), func() error {
		return el.SetInlineDisplay(previous)
	})
	return true
}

func hasClass(el interfaces.Element, name string) bool {
	for _, c := range strings.Fields(el.ClassName()) {
		if c == name {
			return true
		}
	}
	return false
}

// traverse walks el depth first. Interactable elements are attached to the
// nearest interactable ancestor, or to the forest when there is none.
func (p *pass) traverse(el interfaces.Element, parent *entities.ElementNode, locator string) {
	if p.isInteractable(el) {
		node := p.materialize(el, locator)
		if parent == nil {
			p.forest = append(p.forest, node)
		} else {
			parent.Children = append(parent.Children, node)
		}
		if p.extended && len(node.Options) > 0 {
			return
		}
		parent = node
	}

	counts := make(map[string]int)
	for _, child := range el.Children() {
		tag := child.TagName()
		counts[tag]++
		p.traverse(child, parent, locator+"/"+tag+"["+strconv.Itoa(counts[tag])+"]")
	}
}

// materialize turns el into a registry entry
func (p *pass) materialize(el interfaces.Element, locator string) *entities.ElementNode {
	id := len(p.entries)
	cat := categorize(el)
	p.mark(el, id)

	node := &entities.ElementNode{
		ID:         id,
		TagName:    el.TagName(),
		Attributes: captureAttributes(el),
	}
	if p.extended &&
		!node.Attributes.Truthy("required") && !node.Attributes.Truthy("aria-required") &&
		requiredFromStyle(el) {
		node.Attributes["required"] = entities.BoolAttr(true)
	}

	node.Text = elementContent(el, nil)
	node.CapturedText = node.Text
	node.Rect = p.visibleClientRect(el, true)
	cat.capture(p, el, node)

	p.entries = append(p.entries, &entry{
		node:     node,
		element:  el,
		category: cat,
		locator:  locator,
	})
	return node
}

func captureAttributes(el interfaces.Element) entities.Attributes {
	attrs := make(entities.Attributes)
	for _, a := range el.Attributes() {
		if a.Name == MarkerAttribute {
			continue
		}
		if booleanAttributes[a.Name] {
			attrs[a.Name] = entities.BoolAttr(!strings.EqualFold(a.Value, "false"))
			continue
		}
		attrs[a.Name] = entities.StringAttr(a.Value)
	}
	return attrs
}

// requiredFromStyle looks for a required marker drawn by ::after or a class
// name mentioning "require"
func requiredFromStyle(el interfaces.Element) bool {
	if after, err := el.PseudoContent("::after"); err == nil {
		if hasRequiredMarker(strings.ReplaceAll(after, `"`, "")) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(el.ClassName()), "require")
}

// selectOptions lists every option of a native select in index order
func selectOptions(el interfaces.Element) []entities.SelectOption {
	var options []entities.SelectOption
	for _, opt := range descendants(el, func(e interfaces.Element) bool {
		return e.TagName() == "option"
	}) {
		options = append(options, entities.SelectOption{
			OptionIndex: len(options),
			Text:        collapseSpaces(textContent(opt)),
		})
	}
	return options
}

// listboxOptions lists the role=option descendants of a listbox
func listboxOptions(el interfaces.Element) []entities.SelectOption {
	var options []entities.SelectOption
	for _, opt := range descendants(el, func(e interfaces.Element) bool {
		role, _ := e.Attribute("role")
		return role == "option"
	}) {
		options = append(options, entities.SelectOption{
			OptionIndex: len(options),
			Text:        collapseSpaces(textContent(opt)),
		})
	}
	return options
}

// comboboxOptions opens the dropdown, reads the listbox it controls and
// closes it again with Tab
func (p *pass) comboboxOptions(el interfaces.Element) []entities.SelectOption {
	if err := el.Click(); err != nil {
		p.logger.Debugf("failed to open combobox: %v", err)
		return nil
	}
	p.invalidate()
	defer func() {
		if err := el.DispatchKey("Tab"); err != nil {
			p.logger.Debugf("failed to close combobox: %v", err)
		}
		p.invalidate()
	}()

	controls, _ := el.Attribute("aria-controls")
	listbox := p.doc.ElementByID(strings.TrimSpace(controls))
	if listbox == nil {
		return nil
	}
	return listboxOptions(listbox)
}

func descendants(el interfaces.Element, match func(interfaces.Element) bool) []interfaces.Element {
	var out []interfaces.Element
	for _, child := range el.Children() {
		if match(child) {
			out = append(out, child)
		}
		out = append(out, descendants(child, match)...)
	}
	return out
}

// checkRequiredValues logs required text inputs that are still empty
func (p *pass) checkRequiredValues() {
	for _, e := range p.entries {
		node := e.node
		if !e.category.textEntry() {
			continue
		}
		inputType := node.Attributes.Str("type")
		textType := node.TagName == "textarea" ||
			(node.TagName == "input" && (inputType == "" || strings.EqualFold(inputType, "text")))
		required := node.Attributes.Truthy("required") || node.Attributes.Truthy("aria-required")
		if textType && required && node.Value != nil && *node.Value == "" {
			p.logger.WithFields(logrus.Fields{
				"id":   node.ID,
				"tag":  node.TagName,
				"name": node.Attributes.Str("name"),
			}).Warn("required input has no value")
		}
	}
}

// locatorOf builds the structural xpath of el
func locatorOf(el interfaces.Element) string {
	var steps []string
	for cur := el; cur != nil; cur = cur.Parent() {
		tag := cur.TagName()
		if tag == "html" || tag == "body" {
			steps = append(steps, tag)
			continue
		}
		n := 1
		for sib := cur.PreviousElementSibling(); sib != nil; sib = sib.PreviousElementSibling() {
			if sib.TagName() == tag {
				n++
			}
		}
		steps = append(steps, tag+"["+strconv.Itoa(n)+"]")
	}
	if len(steps) == 0 || steps[len(steps)-1] != "html" {
		steps = append(steps, "html")
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return "/" + strings.Join(steps, "/")
}
