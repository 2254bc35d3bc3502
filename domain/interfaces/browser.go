package interfaces

import (
	"context"

	"page_structure/domain/entities"
)

// ScriptRunner evaluates a JavaScript function expression in the current page
// with a single argument
type ScriptRunner interface {
	Evaluate(ctx context.Context, fn string, arg interface{}) (interface{}, error)
}

// BrowserController defines the interface for browser automation
type BrowserController interface {
	ScriptRunner

	// Navigate navigates to a URL and waits for the network to settle
	Navigate(ctx context.Context, url string) error

	// Document captures the current page for one extraction pass
	Document(ctx context.Context) (Document, error)

	// ScrollTo scrolls to an absolute position and returns the new scrollY
	ScrollTo(ctx context.Context, x, y float64) (float64, error)

	// ScrollBy scrolls relatively and returns the new scrollY
	ScrollBy(ctx context.Context, dx, dy float64) (float64, error)

	// ViewportHeight returns window.innerHeight
	ViewportHeight(ctx context.Context) (float64, error)

	// DrawHintMarkers renders bounding boxes for the markers
	DrawHintMarkers(ctx context.Context, markers []entities.HintMarker) error

	// RemoveHintMarkers removes anything DrawHintMarkers added
	RemoveHintMarkers(ctx context.Context) error

	// TakeScreenshot captures the viewport
	TakeScreenshot(ctx context.Context) ([]byte, error)

	// GetCurrentURL returns the current page URL
	GetCurrentURL(ctx context.Context) (string, error)

	// PageContent returns the serialized page markup
	PageContent(ctx context.Context) (string, error)

	// VisibleText returns the body text of the page and its frames
	VisibleText(ctx context.Context) (string, error)

	// Close closes the browser
	Close() error
}
