// Package hints groups captured elements by overlapping geometry and labels
// each group with a short string an overlay can draw.
package hints

import (
	"sort"

	"page_structure/domain/entities"
)

// HintCharacters is the alphabet hint labels are built from
const HintCharacters = "sadfjklewcmpgh"

// DefaultBaseZIndex is where an overlay starts stacking its markers
const DefaultBaseZIndex = 2147483000

// GroupElementsVisually puts every element with a rect into the first group
// that already has an overlapping member, or into a new group. Groups are
// never merged afterwards, so the result depends on element order.
func GroupElementsVisually(elements []*entities.ElementNode) []*entities.Group {
	var groups []*entities.Group
	for _, el := range elements {
		if el.Rect == nil {
			continue
		}
		var target *entities.Group
		for _, g := range groups {
			if overlapsAny(g, *el.Rect) {
				target = g
				break
			}
		}
		if target == nil {
			target = &entities.Group{}
			groups = append(groups, target)
		}
		target.Elements = append(target.Elements, el)
	}

	for _, g := range groups {
		rects := make([]entities.Rect, 0, len(g.Elements))
		for _, el := range g.Elements {
			rects = append(rects, *el.Rect)
		}
		g.Rect = entities.BoundingRect(rects...)
	}
	return groups
}

func overlapsAny(g *entities.Group, r entities.Rect) bool {
	for _, member := range g.Elements {
		if member.Rect.Intersects(r) {
			return true
		}
	}
	return false
}

// GenerateHintStrings returns count distinct labels, as short as the
// alphabet allows, sorted. Labels are generated breadth first: each
// expanded label is replaced by every alphabet character prefixed to it.
func GenerateHintStrings(count int) []string {
	if count <= 0 {
		return []string{}
	}
	hints := []string{""}
	offset := 0
	for len(hints)-offset < count || len(hints) == 1 {
		hint := hints[offset]
		offset++
		for _, ch := range HintCharacters {
			hints = append(hints, string(ch)+hint)
		}
	}
	out := append([]string(nil), hints[offset:offset+count]...)
	sort.Strings(out)
	return out
}

// Overlay turns groups into hint markers for one pass. Its z-index counter
// starts over with every new overlay.
type Overlay struct {
	zIndex  int
	scrollX float64
	scrollY float64
}

// NewOverlay creates an overlay for a page scrolled to (scrollX, scrollY)
func NewOverlay(scrollX, scrollY float64) *Overlay {
	return &Overlay{
		zIndex:  DefaultBaseZIndex,
		scrollX: scrollX,
		scrollY: scrollY,
	}
}

// CreateHintMarkers labels each group. Marker i gets the i-th sorted label.
func (o *Overlay) CreateHintMarkers(groups []*entities.Group) []entities.HintMarker {
	if len(groups) == 0 {
		return []entities.HintMarker{}
	}
	labels := GenerateHintStrings(len(groups))
	markers := make([]entities.HintMarker, 0, len(groups))
	for i, g := range groups {
		markers = append(markers, entities.HintMarker{
			Label:      labels[i],
			Rect:       g.Rect,
			PageRect:   g.Rect.Translate(o.scrollX, o.scrollY),
			ZIndex:     o.zIndex,
			ElementIDs: g.ElementIDs(),
			Group:      g,
		})
		o.zIndex++
	}
	return markers
}
