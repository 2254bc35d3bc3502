package entities

// Group is a cluster of captured elements whose rects overlap.
// It only exists while hint markers are being created.
type Group struct {
	Elements []*ElementNode
	Rect     Rect
}

// ElementIDs lists member ids in insertion order.
func (g *Group) ElementIDs() []int {
	ids := make([]int, 0, len(g.Elements))
	for _, el := range g.Elements {
		ids = append(ids, el.ID)
	}
	return ids
}

// HintMarker is the data the overlay needs to draw one labelled box.
type HintMarker struct {
	Label      string `json:"label"`
	Rect       Rect   `json:"rect"`
	PageRect   Rect   `json:"page_rect"`
	ZIndex     int    `json:"z_index"`
	ElementIDs []int  `json:"element_ids"`
	Group      *Group `json:"-"`
}
