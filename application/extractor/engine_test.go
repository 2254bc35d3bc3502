package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
	"page_structure/infrastructure/document"
)

const box = "left:0px;top:0px;width:100px;height:20px"

func at(x, y, w, h int) string {
	return fmt.Sprintf("left:%dpx;top:%dpx;width:%dpx;height:%dpx", x, y, w, h)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func parse(t *testing.T, markup string) *document.Document {
	t.Helper()
	doc, err := document.ParseHTMLString(markup, document.Options{})
	if err != nil {
		t.Fatalf("ParseHTMLString() error = %v", err)
	}
	return doc
}

func extract(t *testing.T, doc interfaces.Document, extended bool) *entities.PageStructure {
	t.Helper()
	result, err := New(quietLogger(), Options{Extended: extended}).Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	return result
}

func byTag(nodes []*entities.ElementNode, tag string) *entities.ElementNode {
	for _, n := range nodes {
		if n.TagName == tag {
			return n
		}
	}
	return nil
}

// shape renders the forest without ids
func shape(nodes []*entities.ElementNode) string {
	var b strings.Builder
	for _, n := range nodes {
		fmt.Fprintf(&b, "<%s text=%q ctx=%q opts=%v>", n.TagName, n.Text, n.Context, n.Options)
		b.WriteString(shape(n.Children))
		b.WriteString("</" + n.TagName + ">")
	}
	return b.String()
}

func TestExtract_SelectOptions(t *testing.T) {
	doc := parse(t, `<html><body><select name="letter" style="`+box+`"><option>A</option><option>B</option></select></body></html>`)

	result := extract(t, doc, true)

	if len(result.Forest) != 1 {
		t.Fatalf("len(Forest) = %d, want 1", len(result.Forest))
	}
	sel := result.Forest[0]
	want := []entities.SelectOption{{OptionIndex: 0, Text: "A"}, {OptionIndex: 1, Text: "B"}}
	if fmt.Sprint(sel.Options) != fmt.Sprint(want) {
		t.Errorf("Options = %v, want %v", sel.Options, want)
	}
	if len(sel.Children) != 0 {
		t.Errorf("len(Children) = %d, want 0", len(sel.Children))
	}
	if len(result.Registry) != 1 {
		t.Errorf("len(Registry) = %d, want 1", len(result.Registry))
	}
	if sel.Text != "" {
		t.Errorf("Text = %q, want option text removed", sel.Text)
	}
}

func TestExtract_SelectOptionsWithoutExtendedMode(t *testing.T) {
	doc := parse(t, `<html><body><select style="`+box+`"><option>A</option><option>B</option></select></body></html>`)

	result := extract(t, doc, false)

	if len(result.Registry) != 3 {
		t.Fatalf("len(Registry) = %d, want select and both options", len(result.Registry))
	}
	if got := len(result.Forest[0].Children); got != 2 {
		t.Errorf("len(Children) = %d, want 2", got)
	}
}

func TestExtract_CursorPointerDiv(t *testing.T) {
	tests := []struct {
		name  string
		style string
		want  int
	}{
		{"pointer cursor", "cursor:pointer;" + box, 1},
		{"default cursor", box, 0},
		{"pointer but no size", "cursor:pointer", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, `<html><body><div style="`+tt.style+`">Go</div></body></html>`)
			result := extract(t, doc, true)
			if len(result.Registry) != tt.want {
				t.Errorf("len(Registry) = %d, want %d", len(result.Registry), tt.want)
			}
		})
	}
}

func TestExtract_LabelWrappingDisabledControlIsPruned(t *testing.T) {
	doc := parse(t, `<html><body><label style="`+box+`">Name <input disabled style="`+box+`"></label></body></html>`)

	result := extract(t, doc, true)

	if len(result.Forest) != 0 {
		t.Errorf("Forest = %s, want empty", shape(result.Forest))
	}
}

func TestExtract_OrphanLabelPrunedButRegistered(t *testing.T) {
	doc := parse(t, `<html><body>`+
		`<label for="email" style="`+box+`">Email</label>`+
		`<input id="email" name="email" style="`+at(0, 30, 100, 20)+`">`+
		`</body></html>`)

	result := extract(t, doc, true)

	if byTag(result.Forest, "label") != nil {
		t.Error("label without children should be pruned from the forest")
	}
	if byTag(result.Registry, "label") == nil {
		t.Error("label should stay in the registry")
	}
	input := byTag(result.Forest, "input")
	if input == nil {
		t.Fatal("input missing from forest")
	}
	if input.Context != "Email" {
		t.Errorf("Context = %q, want %q", input.Context, "Email")
	}
	if input.Value == nil || *input.Value != "" {
		t.Errorf("Value = %v, want empty string", input.Value)
	}
}

func TestExtract_WrappingLabelKeepsControlAsChild(t *testing.T) {
	doc := parse(t, `<html><body><label style="`+box+`">Email <input name="email" style="`+box+`"></label></body></html>`)

	result := extract(t, doc, true)

	if len(result.Forest) != 1 || result.Forest[0].TagName != "label" {
		t.Fatalf("Forest = %s, want one label", shape(result.Forest))
	}
	label := result.Forest[0]
	if label.Text != "Email" {
		t.Errorf("label Text = %q, want Email", label.Text)
	}
	if len(label.Children) != 1 || label.Children[0].TagName != "input" {
		t.Errorf("label children = %s, want the input", shape(label.Children))
	}
}

func TestExtract_ForestIDsAreRegistered(t *testing.T) {
	doc := parse(t, `<html><body>
		<div onclick="go()" style="`+box+`">
			<button style="`+box+`">One</button>
			<span><a href="/two" style="`+box+`">Two</a></span>
		</div>
		<input type="checkbox" style="`+box+`">
	</body></html>`)

	result := extract(t, doc, true)

	seen := make(map[int]int)
	for _, root := range result.Forest {
		root.Walk(func(n *entities.ElementNode) {
			seen[n.ID]++
			if reg, ok := result.ByID(n.ID); !ok || reg != n {
				t.Errorf("node %d is not registered under its id", n.ID)
			}
		})
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("node %d reachable %d times", id, count)
		}
	}
	for i, n := range result.Registry {
		if n.ID != i {
			t.Errorf("Registry[%d].ID = %d", i, n.ID)
		}
	}
	if len(result.Registry) != 4 {
		t.Errorf("len(Registry) = %d, want 4", len(result.Registry))
	}
}

func TestExtract_Idempotent(t *testing.T) {
	doc := parse(t, `<html><body>
		<form>
			<fieldset><legend>Shipping</legend>
				<label for="city">City</label><input id="city" name="city" style="`+box+`">
			</fieldset>
			<div class="field">Country *<select name="country" style="`+box+`"><option>FR</option><option>ES</option></select></div>
			<button type="submit" style="`+box+`">Send</button>
		</form>
	</body></html>`)

	first := extract(t, doc, true)
	second := extract(t, doc, true)

	if shape(first.Forest) != shape(second.Forest) {
		t.Errorf("second pass differs:\n%s\n%s", shape(first.Forest), shape(second.Forest))
	}
	if len(first.Registry) != len(second.Registry) {
		t.Errorf("registry sizes differ: %d vs %d", len(first.Registry), len(second.Registry))
	}
}

func TestExtract_RemovesMarkersAndRevertsSelect2(t *testing.T) {
	doc := parse(t, `<html><body>
		<select id="native" class="select2-hidden-accessible" style="`+box+`"><option>One</option></select>
		<span id="widget" class="select2-container" style="cursor:pointer;`+at(200, 0, 100, 20)+`">One</span>
	</body></html>`)

	result := extract(t, doc, true)

	if byTag(result.Registry, "select") == nil {
		t.Error("native select should be captured")
	}
	if byTag(result.Registry, "span") != nil {
		t.Error("select2 container should be hidden during the pass")
	}

	marked := doc.Find(func(el interfaces.Element) bool {
		_, ok := el.Attribute(MarkerAttribute)
		return ok
	})
	if len(marked) != 0 {
		t.Errorf("%d elements still carry %s", len(marked), MarkerAttribute)
	}
	if got := doc.ElementByID("native").ClassName(); got != "select2-hidden-accessible" {
		t.Errorf("select class = %q, want it restored", got)
	}
	if got := doc.ElementByID("widget").InlineDisplay(); got != "" {
		t.Errorf("container display = %q, want it restored", got)
	}
}

func TestExtract_SweepsStaleMarkers(t *testing.T) {
	doc := parse(t, `<html><body><p unique_id="7">left over</p><button style="`+box+`">Ok</button></body></html>`)

	extract(t, doc, true)

	marked := doc.Find(func(el interfaces.Element) bool {
		_, ok := el.Attribute(MarkerAttribute)
		return ok
	})
	if len(marked) != 0 {
		t.Errorf("%d elements still carry %s", len(marked), MarkerAttribute)
	}
}

func TestExtract_ComboboxOpenedAndClosedOnce(t *testing.T) {
	doc := parse(t, `<html><body>
		<input id="country" role="combobox" aria-haspopup="listbox" aria-controls="country-list" readonly style="`+box+`">
		<ul id="country-list" role="listbox" style="`+at(0, 30, 100, 40)+`">
			<li role="option">France</li>
			<li role="option">Spain</li>
		</ul>
	</body></html>`)

	result := extract(t, doc, true)

	events := doc.Events()
	if len(events) != 2 {
		t.Fatalf("len(Events()) = %d, want 2", len(events))
	}
	input := doc.ElementByID("country")
	if events[0].Type != document.EventClick || events[0].Element != input {
		t.Errorf("first event = %+v, want click on the input", events[0])
	}
	if events[1].Type != document.EventKey || events[1].Key != "Tab" || events[1].Element != input {
		t.Errorf("second event = %+v, want Tab on the input", events[1])
	}

	combo := byTag(result.Registry, "input")
	want := []entities.SelectOption{{OptionIndex: 0, Text: "France"}, {OptionIndex: 1, Text: "Spain"}}
	if combo == nil || fmt.Sprint(combo.Options) != fmt.Sprint(want) {
		t.Errorf("combobox options = %v, want %v", combo, want)
	}
}

func TestExtract_ContextLimit(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		want    bool
	}{
		{"at limit", strings.Repeat("x", 5000), true},
		{"over limit", strings.Repeat("x", 5001), false},
		{"astral character counts twice", strings.Repeat("x", 4998) + "😀", true},
		{"astral character over limit", strings.Repeat("x", 4999) + "😀", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caption := tt.caption
			doc := parse(t, `<html><body><div>`+caption+`<fieldset><input name="q" style="`+box+`"></fieldset></div></body></html>`)

			result := extract(t, doc, true)

			input := byTag(result.Registry, "input")
			if input == nil {
				t.Fatal("input not captured")
			}
			if tt.want && input.Context != caption {
				t.Errorf("textLen(Context) = %d, want %d", textLen(input.Context), textLen(caption))
			}
			if !tt.want && input.Context != "" {
				t.Errorf("len(Context) = %d, want no context", len(input.Context))
			}
		})
	}
}

func TestExtract_TableContextForLinks(t *testing.T) {
	doc := parse(t, `<html><body><table><tr><td>Invoice 42</td><td><a href="/pay" style="`+box+`">Pay</a></td></tr></table></body></html>`)

	result := extract(t, doc, true)

	link := byTag(result.Registry, "a")
	if link == nil {
		t.Fatal("link not captured")
	}
	if link.Context != "Invoice 42" {
		t.Errorf("Context = %q, want %q", link.Context, "Invoice 42")
	}
	if got := link.Attributes.Str("href"); got != "/pay" {
		t.Errorf("href attribute = %q, want /pay", got)
	}
}

func TestExtract_NearestLabellingAncestorWins(t *testing.T) {
	doc := parse(t, `<html><body><div class="entry">Shipping<div class="field">Street <input name="street" style="`+box+`"></div></div></body></html>`)

	result := extract(t, doc, true)

	input := byTag(result.Registry, "input")
	if input == nil {
		t.Fatal("input not captured")
	}
	if input.Context != "Street" {
		t.Errorf("Context = %q, want the inner wrapper text only", input.Context)
	}
}

func TestExtract_RequiredInference(t *testing.T) {
	markup := `<html><body><div class="field">Name *<input name="name" style="` + box + `"></div></body></html>`

	extended := extract(t, parse(t, markup), true)
	if !byTag(extended.Registry, "input").Attributes.Truthy("required") {
		t.Error("extended mode should infer required from the context")
	}

	plain := extract(t, parse(t, markup), false)
	if byTag(plain.Registry, "input").Attributes.Truthy("required") {
		t.Error("required should not be inferred outside extended mode")
	}
}

func TestExtract_BooleanAttributes(t *testing.T) {
	doc := parse(t, `<html><body><input type="checkbox" checked aria-checked="false" style="`+box+`"></body></html>`)

	result := extract(t, doc, true)

	attrs := result.Registry[0].Attributes
	if v := attrs["checked"]; !v.IsBool || !v.Bool {
		t.Errorf("checked = %+v, want true", v)
	}
	if v := attrs["aria-checked"]; !v.IsBool || v.Bool {
		t.Errorf("aria-checked = %+v, want false", v)
	}
	if _, ok := attrs[MarkerAttribute]; ok {
		t.Errorf("%s must not be captured", MarkerAttribute)
	}
}

func TestExtract_LogsRequiredEmptyInputs(t *testing.T) {
	logger, hook := test.NewNullLogger()
	doc := parse(t, `<html><body><input type="text" name="email" required style="`+box+`"></body></html>`)

	if _, err := New(logger, Options{Extended: true}).Extract(context.Background(), doc); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["name"] == "email" {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a warning for the empty required input")
	}
}

func TestExtract_LocatorsResolve(t *testing.T) {
	doc := parse(t, `<html><body><div><p>intro</p></div><div><input name="a" style="`+box+`"><input name="b" style="`+box+`"></div></body></html>`)

	result := extract(t, doc, true)

	b := result.Registry[1]
	if got, want := result.Locators[b.ID], "/html/body/div[2]/input[2]"; got != want {
		t.Errorf("Locators[%d] = %q, want %q", b.ID, got, want)
	}
	el, err := doc.QueryXPath(result.Locators[b.ID])
	if err != nil || el == nil {
		t.Fatalf("QueryXPath() = %v, %v", el, err)
	}
	if name, _ := el.Attribute("name"); name != "b" {
		t.Errorf("locator resolved to name=%q, want b", name)
	}
}

func TestExtract_HintMarkers(t *testing.T) {
	doc, err := document.ParseHTMLString(`<html><body>
		<button style="`+at(0, 0, 10, 10)+`">a</button>
		<button style="`+at(5, 5, 10, 10)+`">b</button>
		<button style="`+at(100, 100, 10, 10)+`">c</button>
	</body></html>`, document.Options{ScrollY: 50})
	if err != nil {
		t.Fatalf("ParseHTMLString() error = %v", err)
	}

	result := extract(t, doc, true)

	if len(result.HintMarkers) != 2 {
		t.Fatalf("len(HintMarkers) = %d, want 2", len(result.HintMarkers))
	}
	first := result.HintMarkers[0]
	if !first.Rect.Equal(entities.NewRect(0, 0, 15, 15)) {
		t.Errorf("first marker rect = %+v", first.Rect)
	}
	if first.PageRect.Top != 50 {
		t.Errorf("PageRect.Top = %v, want 50", first.PageRect.Top)
	}
	if first.Label == result.HintMarkers[1].Label {
		t.Error("markers share a label")
	}
}

func TestExtract_NoBody(t *testing.T) {
	doc := document.FromCapture(&document.Capture{Root: -1})

	_, err := New(quietLogger(), Options{}).Extract(context.Background(), doc)
	if !errors.Is(err, ErrNoBody) {
		t.Errorf("Extract() error = %v, want ErrNoBody", err)
	}
}

func TestExtract_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(quietLogger(), Options{}).Extract(ctx, parse(t, `<html><body></body></html>`))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Extract() error = %v, want context.Canceled", err)
	}
}

// brokenDocument panics once the walk reaches the body's children
type brokenDocument struct {
	*document.Document
}

type brokenBody struct {
	interfaces.Element
}

func (d brokenDocument) Body() interfaces.Element {
	return brokenBody{d.Document.Body()}
}

func (brokenBody) Children() []interfaces.Element {
	panic("node detached")
}

func TestExtract_PanicAbortsPassAndReverts(t *testing.T) {
	doc := parse(t, `<html><body>
		<select id="native" class="select2-hidden-accessible" style="`+box+`"><option>One</option></select>
		<span id="widget" class="select2-container">One</span>
	</body></html>`)

	result, err := New(quietLogger(), Options{Extended: true}).Extract(context.Background(), brokenDocument{doc})

	if !errors.Is(err, ErrPassAborted) {
		t.Fatalf("Extract() error = %v, want ErrPassAborted", err)
	}
	if result != nil {
		t.Error("aborted pass returned a result")
	}
	if got := doc.ElementByID("native").ClassName(); got != "select2-hidden-accessible" {
		t.Errorf("select class = %q, want it restored", got)
	}
	if got := doc.ElementByID("widget").InlineDisplay(); got != "" {
		t.Errorf("container display = %q, want it restored", got)
	}
}
