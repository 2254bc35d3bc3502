package extractor

import (
	"strings"
	"unicode"
	"unicode/utf16"

	"page_structure/domain/interfaces"
)

const (
	// contentLimit caps the text captured for one element
	contentLimit = 5000

	// svgFallback is the placeholder some sites put inside inline svg
	svgFallback = "SVGs not supported by this browser."
)

// collapseSpaces replaces every run of whitespace with a single space
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

func cleanupText(s string) string {
	s = strings.Replace(s, svgFallback, "", 1)
	return strings.TrimSpace(collapseSpaces(s))
}

// textLen measures s in UTF-16 code units, the unit page scripts count in.
// Characters outside the basic plane count twice.
func textLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// elementContent joins the trimmed text of el's subtree with ";". The
// excluded element contributes nothing wherever it appears. Content over
// contentLimit falls back to el's own text nodes, or to "".
func elementContent(el, excluded interfaces.Element) string {
	if excluded != nil && el == excluded {
		return ""
	}

	var all, own []string
	for _, child := range el.ChildNodes() {
		var text string
		switch child.Kind() {
		case interfaces.TextNodeKind:
			text = strings.TrimSpace(child.Data())
			if text != "" {
				own = append(own, text)
			}
		case interfaces.ElementNodeKind:
			if childEl, ok := child.AsElement(); ok {
				text = elementContent(childEl, excluded)
			}
		}
		if text != "" {
			all = append(all, text)
		}
	}

	content := cleanupText(strings.Join(all, ";"))
	if textLen(content) <= contentLimit {
		return content
	}
	ownContent := cleanupText(strings.Join(own, ";"))
	if textLen(ownContent) <= contentLimit {
		return ownContent
	}
	return ""
}

// elementContext gathers the descriptive text around captured elements:
// a required marker drawn by ::after, then the text of the subtree, leaving
// out anything that was captured itself.
func (p *pass) elementContext(el interfaces.Element) string {
	var parts []string
	if after, err := el.PseudoContent("::after"); err == nil {
		after = strings.ReplaceAll(after, `"`, "")
		if hasRequiredMarker(after) {
			parts = append(parts, after)
		}
	}

	marked := p.isMarked(el)
	for _, child := range el.ChildNodes() {
		var text string
		switch child.Kind() {
		case interfaces.TextNodeKind:
			if !marked {
				text = strings.TrimSpace(child.Data())
			}
		case interfaces.ElementNodeKind:
			if childEl, ok := child.AsElement(); ok && !p.isMarked(childEl) {
				text = p.elementContext(childEl)
			}
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, ";")
}

// textContent concatenates every text node below el, untrimmed
func textContent(el interfaces.Element) string {
	var b strings.Builder
	var walk func(interfaces.Element)
	walk = func(e interfaces.Element) {
		for _, child := range e.ChildNodes() {
			if child.Kind() == interfaces.TextNodeKind {
				b.WriteString(child.Data())
			} else if childEl, ok := child.AsElement(); ok {
				walk(childEl)
			}
		}
	}
	walk(el)
	return b.String()
}

// hasRequiredMarker matches an asterisk, the heavy asterisk glyph or any
// spelling of "require"
func hasRequiredMarker(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "*") ||
		strings.Contains(lower, "✱") ||
		strings.Contains(lower, "require")
}
