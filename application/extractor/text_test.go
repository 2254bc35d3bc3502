package extractor

import (
	"strings"
	"testing"
)

func TestCleanupText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Hello \n\t world  ", "Hello world"},
		{"SVGs not supported by this browser.Icon", "Icon"},
		{"a  b", "a b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := cleanupText(tt.in); got != tt.want {
			t.Errorf("cleanupText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextLen(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"café", 4},
		{"日本", 2},
		{"a😀", 3},
	}
	for _, tt := range tests {
		if got := textLen(tt.in); got != tt.want {
			t.Errorf("textLen(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCollapseSpacesKeepsEdges(t *testing.T) {
	if got := collapseSpaces("  New \n York "); got != " New York " {
		t.Errorf("collapseSpaces() = %q, want %q", got, " New York ")
	}
}

func TestElementContent(t *testing.T) {
	doc := parse(t, `<html><body><div id="root">Intro <span>inner <b>bold</b></span>  <i id="skip">skipped</i> tail</div></body></html>`)
	root := doc.ElementByID("root")

	if got, want := elementContent(root, nil), "Intro;inner;bold;skipped;tail"; got != want {
		t.Errorf("elementContent() = %q, want %q", got, want)
	}
	if got, want := elementContent(root, doc.ElementByID("skip")), "Intro;inner;bold;tail"; got != want {
		t.Errorf("elementContent(excluded) = %q, want %q", got, want)
	}
	if got := elementContent(root, root); got != "" {
		t.Errorf("elementContent(self excluded) = %q, want empty", got)
	}
}

func TestElementContent_Limit(t *testing.T) {
	long := strings.Repeat("y", 4990)
	doc := parse(t, `<html><body>`+
		`<div id="fallback">own<p>`+long+`</p><p>`+long+`</p></div>`+
		`<div id="dropped">`+long+`<p>x</p>`+long+`</div>`+
		`</body></html>`)

	if got := elementContent(doc.ElementByID("fallback"), nil); got != "own" {
		t.Errorf("elementContent() = %.20q, want own text only", got)
	}
	if got := elementContent(doc.ElementByID("dropped"), nil); got != "" {
		t.Errorf("elementContent() has %d chars, want empty", len(got))
	}
}

func TestElementContext_SkipsMarked(t *testing.T) {
	doc := parse(t, `<html><body><div id="wrap">Billing<span>Card</span><button id="pay">Pay</button></div></body></html>`)
	p := newPass(doc, true, quietLogger())
	p.marked[doc.ElementByID("pay")] = 0

	if got, want := p.elementContext(doc.ElementByID("wrap")), "Billing;Card"; got != want {
		t.Errorf("elementContext() = %q, want %q", got, want)
	}

	p.marked[doc.ElementByID("wrap")] = 1
	if got, want := p.elementContext(doc.ElementByID("wrap")), "Card"; got != want {
		t.Errorf("elementContext(marked) = %q, want %q", got, want)
	}
}

func TestHasRequiredMarker(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Name *", true},
		{"Name ✱", true},
		{"This field is REQUIRED", true},
		{"Name", false},
	}
	for _, tt := range tests {
		if got := hasRequiredMarker(tt.in); got != tt.want {
			t.Errorf("hasRequiredMarker(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
