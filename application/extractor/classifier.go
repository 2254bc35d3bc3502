package extractor

import (
	"strings"

	"page_structure/domain/interfaces"
)

var widgetRoles = map[string]bool{
	"button":           true,
	"link":             true,
	"checkbox":         true,
	"menuitem":         true,
	"menuitemcheckbox": true,
	"menuitemradio":    true,
	"radio":            true,
	"tab":              true,
	"combobox":         true,
	"textbox":          true,
	"searchbox":        true,
	"slider":           true,
	"spinbutton":       true,
	"switch":           true,
	"gridcell":         true,
}

var clickableInputTypes = map[string]bool{
	"button":         true,
	"checkbox":       true,
	"date":           true,
	"datetime-local": true,
	"email":          true,
	"file":           true,
	"image":          true,
	"month":          true,
	"number":         true,
	"password":       true,
	"radio":          true,
	"range":          true,
	"reset":          true,
	"search":         true,
	"submit":         true,
	"tel":            true,
	"text":           true,
	"time":           true,
	"url":            true,
	"week":           true,
}

func roleOf(el interfaces.Element) string {
	role, _ := el.Attribute("role")
	return strings.ToLower(strings.TrimSpace(role))
}

func hasAttribute(el interfaces.Element, name string) bool {
	_, ok := el.Attribute(name)
	return ok
}

// isInteractable decides whether el becomes a tree entry.
// Any failure to read style or geometry counts as not interactable.
func (p *pass) isInteractable(el interfaces.Element) bool {
	if !p.isVisible(el) {
		return false
	}
	if p.isHiddenOrDisabled(el) {
		return false
	}

	tag := el.TagName()
	if tag == "script" || tag == "style" {
		return false
	}

	if widgetRoles[roleOf(el)] {
		return true
	}

	if tag == "input" {
		t, ok := el.Attribute("type")
		if !ok {
			t = "text"
		}
		if clickableInputTypes[strings.ToLower(strings.TrimSpace(t))] {
			return true
		}
	}

	switch tag {
	case "a":
		if el.Href() != "" {
			return true
		}
	case "button", "select", "option", "textarea":
		return true
	case "label":
		if control := el.Control(); control != nil && !control.Disabled() {
			return true
		}
	}

	if hasAttribute(el, "onclick") || hasAttribute(el, "jsaction") || el.ContentEditable() {
		return true
	}

	// div, img and span are decided by their cursor alone
	if tag == "div" || tag == "img" || tag == "span" {
		style, err := p.style(el)
		return err == nil && style.Cursor == "pointer"
	}

	role, hasRole := el.Attribute("role")
	role = strings.ToLower(role)
	if hasRole {
		if tag == "ul" && role == "listbox" {
			return true
		}
		if tag == "li" && role == "option" {
			return true
		}
	}
	return false
}

// isVisible: options follow their parent, display:contents follows its
// children, everything else needs the native visibility check, a visible
// computed visibility and a non-empty bounding box.
func (p *pass) isVisible(el interfaces.Element) bool {
	if el.TagName() == "option" {
		parent := el.Parent()
		return parent != nil && p.isVisible(parent)
	}

	style, err := p.style(el)
	if err != nil {
		return false
	}
	if style.Display == "contents" {
		for _, child := range el.Children() {
			if p.isVisible(child) {
				return true
			}
		}
		return false
	}

	if !el.CheckVisibility() || style.Visibility != "visible" {
		return false
	}
	box, err := el.BoundingClientRect()
	if err != nil {
		return false
	}
	return box.Width > 0 && box.Height > 0
}

func (p *pass) isHiddenOrDisabled(el interfaces.Element) bool {
	style, err := p.style(el)
	if err != nil {
		return true
	}
	return style.Display == "none" || el.Hidden() || el.Disabled()
}
