package document

import (
	"strconv"
	"strings"
)

type declaration struct {
	prop  string
	value string
}

// inlineStyle is the parsed content of a style attribute
type inlineStyle []declaration

func parseInlineStyle(s string) inlineStyle {
	var out inlineStyle
	for _, part := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		if prop == "" {
			continue
		}
		out = out.set(prop, value)
	}
	return out
}

func (s inlineStyle) get(prop string) string {
	for _, d := range s {
		if d.prop == prop {
			return d.value
		}
	}
	return ""
}

func (s inlineStyle) set(prop, value string) inlineStyle {
	for i := range s {
		if s[i].prop == prop {
			if value == "" {
				return append(s[:i], s[i+1:]...)
			}
			s[i].value = value
			return s
		}
	}
	if value == "" {
		return s
	}
	return append(s, declaration{prop: prop, value: value})
}

func (s inlineStyle) String() string {
	parts := make([]string, 0, len(s))
	for _, d := range s {
		parts = append(parts, d.prop+": "+d.value)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "; ") + ";"
}

// px parses a pixel length such as "12px" or "12"
func px(value string) (float64, bool) {
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "px"))
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var blockTags = map[string]bool{
	"html": true, "body": true, "div": true, "p": true, "ul": true, "ol": true,
	"form": true, "fieldset": true, "section": true, "article": true, "header": true,
	"footer": true, "nav": true, "main": true, "aside": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "table": true, "legend": true,
}

var hiddenTags = map[string]bool{
	"head": true, "script": true, "style": true, "template": true, "title": true,
	"meta": true, "link": true,
}

func defaultDisplay(tag string) string {
	switch {
	case hiddenTags[tag]:
		return "none"
	case blockTags[tag]:
		return "block"
	case tag == "li":
		return "list-item"
	case tag == "tr":
		return "table-row"
	case tag == "td" || tag == "th":
		return "table-cell"
	case tag == "input" || tag == "select" || tag == "button" || tag == "textarea" || tag == "img":
		return "inline-block"
	default:
		return "inline"
	}
}
