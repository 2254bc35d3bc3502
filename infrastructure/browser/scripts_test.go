package browser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"page_structure/domain/entities"
)

type recordingRunner struct {
	scripts []string
	args    []interface{}
	result  interface{}
	err     error
}

func (r *recordingRunner) Evaluate(ctx context.Context, fn string, arg interface{}) (interface{}, error) {
	r.scripts = append(r.scripts, fn)
	r.args = append(r.args, arg)
	return r.result, r.err
}

func newScriptPage(r *recordingRunner) scriptPage {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return scriptPage{runner: r, logger: logger}
}

func TestScrollBy(t *testing.T) {
	r := &recordingRunner{result: float64(520)}
	p := newScriptPage(r)

	got, err := p.ScrollBy(context.Background(), 0, 520)
	if err != nil || got != 520 {
		t.Fatalf("ScrollBy() = %v, %v, want 520", got, err)
	}
	args := r.args[0].(map[string]interface{})
	if args["y"] != float64(520) {
		t.Errorf("ScrollBy() arg = %v", args)
	}
	if !strings.Contains(r.scripts[0], "select2-drop-above") {
		t.Error("scroll script should strip select2-drop-above")
	}
	if !strings.Contains(r.scripts[0], overlayContainerID) {
		t.Error("scroll script should remove the overlay")
	}
}

func TestScrollTo_Errors(t *testing.T) {
	tests := []struct {
		name   string
		runner *recordingRunner
	}{
		{"script error", &recordingRunner{err: errors.New("detached")}},
		{"not a number", &recordingRunner{result: "top"}},
	}
	for _, tt := range tests {
		if _, err := newScriptPage(tt.runner).ScrollTo(context.Background(), 0, 0); err == nil {
			t.Errorf("%s: ScrollTo() error = nil", tt.name)
		}
	}
}

func TestViewportHeight(t *testing.T) {
	r := &recordingRunner{result: int64(720)}
	got, err := newScriptPage(r).ViewportHeight(context.Background())
	if err != nil || got != 720 {
		t.Errorf("ViewportHeight() = %v, %v, want 720", got, err)
	}
}

func TestDrawHintMarkers(t *testing.T) {
	r := &recordingRunner{result: float64(1)}
	markers := []entities.HintMarker{{
		Label:    "a",
		Rect:     entities.NewRect(0, 0, 10, 10),
		PageRect: entities.NewRect(0, 300, 10, 310),
		ZIndex:   2147483000,
	}}

	if err := newScriptPage(r).DrawHintMarkers(context.Background(), markers); err != nil {
		t.Fatalf("DrawHintMarkers() error = %v", err)
	}
	args := r.args[0].([]map[string]interface{})
	if len(args) != 1 || args[0]["top"] != float64(300) || args[0]["zIndex"] != 2147483000 || args[0]["label"] != "a" {
		t.Errorf("draw args = %v", args)
	}
}

func TestRemoveHintMarkers(t *testing.T) {
	r := &recordingRunner{}
	if err := newScriptPage(r).RemoveHintMarkers(context.Background()); err != nil {
		t.Fatalf("RemoveHintMarkers() error = %v", err)
	}
	if r.args[0] != nil || !strings.Contains(r.scripts[0], overlayContainerID) {
		t.Errorf("RemoveHintMarkers() ran %q with %v", r.scripts[0], r.args[0])
	}
}

func TestDocument_UsesCaptureScript(t *testing.T) {
	r := &recordingRunner{result: `{"root":-1,"nodes":[]}`}
	doc, err := newScriptPage(r).Document(context.Background())
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if doc.Body() != nil {
		t.Error("Body() should be nil for an empty capture")
	}
	args := r.args[0].(map[string]interface{})
	if args["op"] != "capture" {
		t.Errorf("first op = %v, want capture", args["op"])
	}
}

func TestWrapScript(t *testing.T) {
	got := wrapScript("() => window.innerHeight")
	want := "return (() => window.innerHeight)(arguments[0]);"
	if got != want {
		t.Errorf("wrapScript() = %q, want %q", got, want)
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in      interface{}
		want    float64
		wantErr bool
	}{
		{float64(1.5), 1.5, false},
		{int(3), 3, false},
		{int64(4), 4, false},
		{float32(2), 2, false},
		{nil, 0, true},
		{"5", 0, true},
	}
	for _, tt := range tests {
		got, err := toFloat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("toFloat(%v) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
}
