package entities

// PageStructure is the result of one extraction pass over a document.
type PageStructure struct {
	Registry    []*ElementNode `json:"registry"`
	Forest      []*ElementNode `json:"forest"`
	HintMarkers []HintMarker   `json:"hint_markers"`
	Locators    map[int]string `json:"locators"`
}

// ByID returns the registry entry with the given id.
func (p *PageStructure) ByID(id int) (*ElementNode, bool) {
	if id < 0 || id >= len(p.Registry) {
		return nil, false
	}
	el := p.Registry[id]
	return el, el != nil && el.ID == id
}
