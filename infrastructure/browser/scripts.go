package browser

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
	"page_structure/infrastructure/document"
)

// overlayContainerID is the id of the element holding drawn hint markers
const overlayContainerID = "boundingBoxContainer"

const removeMarkersScript = `() => {
  const container = document.getElementById("` + overlayContainerID + `");
  if (container) {
    container.remove();
  }
  return true;
}`

const drawMarkersScript = `(markers) => {
  const old = document.getElementById("` + overlayContainerID + `");
  if (old) {
    old.remove();
  }
  const parent = document.createElement("div");
  parent.id = "` + overlayContainerID + `";
  for (const m of markers || []) {
    const box = document.createElement("div");
    box.style.position = "absolute";
    box.style.left = m.left + "px";
    box.style.top = m.top + "px";
    box.style.width = m.width + "px";
    box.style.height = m.height + "px";
    box.style.border = "2px solid blue";
    box.style.pointerEvents = "none";
    box.style.zIndex = String(m.zIndex);
    const label = document.createElement("span");
    label.textContent = m.label.toUpperCase();
    label.style.position = "absolute";
    label.style.left = "0";
    label.style.top = "0";
    label.style.background = "yellow";
    label.style.font = "bold 11px monospace";
    box.appendChild(label);
    parent.appendChild(box);
  }
  document.documentElement.appendChild(parent);
  return markers ? markers.length : 0;
}`

// scroll scripts nudge the page by one pixel so sticky select2 dropdowns
// re-evaluate their position, dropping select2-drop-above first each time
const scrollHelpers = `
  const removeDropAbove = () => {
    for (const el of Array.from(document.getElementsByClassName("select2-drop-above"))) {
      el.classList.remove("select2-drop-above");
    }
  };
  const container = document.getElementById("` + overlayContainerID + `");
  if (container) {
    container.remove();
  }
`

const scrollToScript = `(pos) => {` + scrollHelpers + `
  window.scrollTo(pos.x, pos.y);
  removeDropAbove();
  window.scrollBy(0, 1);
  removeDropAbove();
  window.scrollBy(0, -1);
  return window.scrollY;
}`

const scrollByScript = `(delta) => {` + scrollHelpers + `
  window.scrollBy(delta.x, delta.y);
  removeDropAbove();
  window.scrollBy(0, -1);
  removeDropAbove();
  window.scrollBy(0, 1);
  return window.scrollY;
}`

const viewportHeightScript = `() => window.innerHeight`

const bodyTextScript = `() => document.body ? document.body.innerText : ""`

// scriptPage implements the script-driven parts of a controller on top of
// any ScriptRunner
type scriptPage struct {
	runner interfaces.ScriptRunner
	logger *logrus.Logger
}

func (p scriptPage) Document(ctx context.Context) (interfaces.Document, error) {
	return document.NewLive(ctx, p.runner, p.logger)
}

func (p scriptPage) ScrollTo(ctx context.Context, x, y float64) (float64, error) {
	out, err := p.runner.Evaluate(ctx, scrollToScript, map[string]interface{}{"x": x, "y": y})
	if err != nil {
		return 0, fmt.Errorf("failed to scroll to %v,%v: %w", x, y, err)
	}
	return toFloat(out)
}

func (p scriptPage) ScrollBy(ctx context.Context, dx, dy float64) (float64, error) {
	out, err := p.runner.Evaluate(ctx, scrollByScript, map[string]interface{}{"x": dx, "y": dy})
	if err != nil {
		return 0, fmt.Errorf("failed to scroll by %v,%v: %w", dx, dy, err)
	}
	return toFloat(out)
}

func (p scriptPage) ViewportHeight(ctx context.Context) (float64, error) {
	out, err := p.runner.Evaluate(ctx, viewportHeightScript, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to read viewport height: %w", err)
	}
	return toFloat(out)
}

func (p scriptPage) DrawHintMarkers(ctx context.Context, markers []entities.HintMarker) error {
	if _, err := p.runner.Evaluate(ctx, drawMarkersScript, markerArgs(markers)); err != nil {
		return fmt.Errorf("failed to draw hint markers: %w", err)
	}
	return nil
}

func (p scriptPage) RemoveHintMarkers(ctx context.Context) error {
	if _, err := p.runner.Evaluate(ctx, removeMarkersScript, nil); err != nil {
		return fmt.Errorf("failed to remove hint markers: %w", err)
	}
	return nil
}

// markerArgs flattens markers into what the draw script reads. Boxes are
// positioned in page coordinates so they scroll with the content.
func markerArgs(markers []entities.HintMarker) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(markers))
	for _, m := range markers {
		out = append(out, map[string]interface{}{
			"label":  m.Label,
			"left":   m.PageRect.Left,
			"top":    m.PageRect.Top,
			"width":  m.PageRect.Width,
			"height": m.PageRect.Height,
			"zIndex": m.ZIndex,
		})
	}
	return out
}

// toFloat converts a script result number
func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("script returned %T, want a number", v)
	}
}
