package extractor

import (
	"math"
	"strings"

	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
)

const (
	// minRectSize is the smallest width or height worth pointing at
	minRectSize = 3

	// viewportMargin rejects rects starting this close to the viewport's
	// bottom or right edge
	viewportMargin = 4
)

// cropToViewport clamps the rect's top-left corner to the viewport origin
func (p *pass) cropToViewport(r entities.Rect) (entities.Rect, bool) {
	cropped := entities.NewRect(math.Max(r.Left, 0), math.Max(r.Top, 0), r.Right, r.Bottom)
	width, height := p.doc.Viewport()
	if cropped.Top >= height-viewportMargin || cropped.Left >= width-viewportMargin {
		return entities.Rect{}, false
	}
	return cropped, true
}

// visibleClientRect returns the first client rect of el that is on screen,
// at least minRectSize in both directions and not styled invisible. With
// testChildren set, a degenerate rect may be stood in for by a floated or
// absolutely positioned child.
func (p *pass) visibleClientRect(el interfaces.Element, testChildren bool) *entities.Rect {
	rects, err := el.ClientRects()
	if err != nil {
		return nil
	}

	for _, r := range rects {
		if (r.Width == 0 || r.Height == 0) && testChildren {
			for _, child := range el.Children() {
				style, err := p.style(child)
				if err != nil {
					continue
				}
				if style.Float == "none" &&
					style.Position != "absolute" && style.Position != "fixed" &&
					!(r.Height == 0 && p.isInlineZeroFontSize(el) && strings.HasPrefix(style.Display, "inline")) {
					continue
				}
				childRect := p.visibleClientRect(child, true)
				if childRect == nil || childRect.Width < minRectSize || childRect.Height < minRectSize {
					continue
				}
				return childRect
			}
			continue
		}

		cropped, ok := p.cropToViewport(r)
		if !ok || cropped.Width < minRectSize || cropped.Height < minRectSize {
			continue
		}
		style, err := p.style(el)
		if err != nil || style.Visibility != "visible" {
			continue
		}
		return &cropped
	}
	return nil
}

// isInlineZeroFontSize detects inline wrappers with font-size 0, which report
// a zero height even when their children show text
func (p *pass) isInlineZeroFontSize(el interfaces.Element) bool {
	if v, ok := p.inlineZero[el]; ok {
		return v
	}
	v := false
	if style, err := p.style(el); err == nil {
		v = strings.HasPrefix(style.Display, "inline") && style.FontSize == "0px"
	}
	p.inlineZero[el] = v
	return v
}
