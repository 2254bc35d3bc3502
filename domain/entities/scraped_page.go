package entities

import "time"

// TreeFormat selects how the trimmed element tree is serialized.
type TreeFormat string

const (
	TreeFormatJSON TreeFormat = "json"
	TreeFormatHTML TreeFormat = "html"
)

// ScrapedPage contains everything collected for one URL.
type ScrapedPage struct {
	ID                 string         `json:"id"`
	URL                string         `json:"url"`
	Elements           []*ElementNode `json:"elements"`
	Locators           map[int]string `json:"id_to_xpath"`
	ElementTree        []*ElementNode `json:"element_tree"`
	ElementTreeTrimmed []*ElementNode `json:"element_tree_trimmed"`
	HintMarkers        []HintMarker   `json:"hint_markers"`
	Screenshots        [][]byte       `json:"-"`
	HTML               string         `json:"html"`
	ExtractedText      string         `json:"extracted_text,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}
