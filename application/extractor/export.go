package extractor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"page_structure/domain/entities"
)

// exportedAttributes may leave the process when their value is truthy
var exportedAttributes = map[string]bool{
	"accept":              true,
	"alt":                 true,
	"aria-checked":        true,
	"aria-current":        true,
	"aria-label":          true,
	"aria-required":       true,
	"aria-role":           true,
	"aria-selected":       true,
	"checked":             true,
	"data-original-title": true,
	"data-ui":             true,
	"for":                 true,
	"href":                true,
	"maxlength":           true,
	"name":                true,
	"pattern":             true,
	"placeholder":         true,
	"readonly":            true,
	"required":            true,
	"selected":            true,
	"src":                 true,
	"text-value":          true,
	"title":               true,
	"type":                true,
	"value":               true,
}

var voidTags = map[string]bool{
	"img":   true,
	"input": true,
	"br":    true,
	"hr":    true,
	"meta":  true,
	"link":  true,
}

// ExportAttributes reduces attrs to the exported allow-list. Form controls
// keep their id and listbox parts keep their role.
func ExportAttributes(tag string, attrs entities.Attributes) entities.Attributes {
	out := make(entities.Attributes)
	for name, value := range attrs {
		switch {
		case name == "id" && (tag == "input" || tag == "textarea" || tag == "select"):
			out[name] = value
		case name == "role" && (value.Str == "listbox" || value.Str == "option"):
			out[name] = value
		case exportedAttributes[name] && value.Truthy():
			out[name] = value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ExportTree returns a trimmed deep copy of the forest: no rects, reduced
// attributes, no blank text
func ExportTree(forest []*entities.ElementNode) []*entities.ElementNode {
	out := make([]*entities.ElementNode, 0, len(forest))
	for _, node := range forest {
		out = append(out, exportNode(node))
	}
	return out
}

func exportNode(node *entities.ElementNode) *entities.ElementNode {
	cp := &entities.ElementNode{
		ID:              node.ID,
		TagName:         node.TagName,
		Attributes:      ExportAttributes(node.TagName, node.Attributes),
		Text:            node.Text,
		Context:         node.Context,
		CapturedText:    node.CapturedText,
		CapturedContext: node.CapturedContext,
	}
	if strings.TrimSpace(cp.Text) == "" {
		cp.Text = ""
	}
	if len(node.Options) > 0 {
		cp.Options = append([]entities.SelectOption(nil), node.Options...)
	}
	if node.LinkedElement != nil {
		cp.LinkTo(*node.LinkedElement)
	}
	if node.Value != nil {
		v := *node.Value
		cp.Value = &v
	}
	for _, child := range node.Children {
		cp.Children = append(cp.Children, exportNode(child))
	}
	return cp
}

// RenderTree serializes an exported forest in the requested format
func RenderTree(forest []*entities.ElementNode, format entities.TreeFormat) (string, error) {
	switch format {
	case entities.TreeFormatJSON, "":
		data, err := json.Marshal(forest)
		if err != nil {
			return "", fmt.Errorf("failed to encode element tree: %w", err)
		}
		return string(data), nil
	case entities.TreeFormatHTML:
		return RenderHTML(forest), nil
	default:
		return "", fmt.Errorf("unknown element tree format: %s", format)
	}
}

// RenderHTML rebuilds markup from the tree. Options are rendered as
// <option index="i"> children after the element's own children.
func RenderHTML(forest []*entities.ElementNode) string {
	var b strings.Builder
	for _, node := range forest {
		writeHTML(&b, node)
	}
	return b.String()
}

func writeHTML(b *strings.Builder, node *entities.ElementNode) {
	b.WriteString("<" + node.TagName)
	for _, name := range node.Attributes.Names() {
		b.WriteString(" " + renderAttribute(name, node.Attributes[name]))
	}
	b.WriteString(">")
	if voidTags[node.TagName] {
		return
	}

	b.WriteString(html.EscapeString(node.Text))
	for _, child := range node.Children {
		writeHTML(b, child)
	}
	for _, opt := range node.Options {
		b.WriteString(`<option index="` + strconv.Itoa(opt.OptionIndex) + `">`)
		b.WriteString(html.EscapeString(opt.Text))
		b.WriteString("</option>")
	}
	b.WriteString("</" + node.TagName + ">")
}

func renderAttribute(name string, value entities.AttributeValue) string {
	if !value.IsBool && value.Str == "" {
		return name
	}
	return name + `="` + html.EscapeString(value.String()) + `"`
}
