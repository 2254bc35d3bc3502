package extractor

import (
	"encoding/json"
	"strings"
	"testing"

	"page_structure/domain/entities"
)

func TestExportAttributes(t *testing.T) {
	attrs := entities.Attributes{
		"id":          entities.StringAttr("email"),
		"class":       entities.StringAttr("form-control"),
		"name":        entities.StringAttr("email"),
		"placeholder": entities.StringAttr(""),
		"required":    entities.BoolAttr(true),
		"checked":     entities.BoolAttr(false),
		"role":        entities.StringAttr("textbox"),
		"style":       entities.StringAttr("color:red"),
	}

	got := ExportAttributes("input", attrs)

	want := []string{"id", "name", "required"}
	if names := got.Names(); strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("ExportAttributes() names = %v, want %v", names, want)
	}

	if got := ExportAttributes("div", entities.Attributes{"id": entities.StringAttr("x")}); got != nil {
		t.Errorf("ExportAttributes(div) = %v, want nil", got)
	}
	listbox := ExportAttributes("ul", entities.Attributes{"role": entities.StringAttr("listbox")})
	if listbox.Str("role") != "listbox" {
		t.Errorf("listbox role dropped: %v", listbox)
	}
}

func TestExportTree(t *testing.T) {
	value := "secret"
	rect := entities.NewRect(0, 0, 10, 10)
	child := &entities.ElementNode{ID: 1, TagName: "input", Attributes: entities.Attributes{"name": entities.StringAttr("q")}, Value: &value, Rect: &rect}
	root := &entities.ElementNode{ID: 0, TagName: "form", Text: "  ", Rect: &rect, Children: []*entities.ElementNode{child}}

	out := ExportTree([]*entities.ElementNode{root})

	if out[0] == root {
		t.Fatal("ExportTree() must copy")
	}
	if out[0].Rect != nil || out[0].Children[0].Rect != nil {
		t.Error("rects should be dropped")
	}
	if out[0].Text != "" {
		t.Errorf("blank Text = %q, want empty", out[0].Text)
	}
	if out[0].Attributes != nil {
		t.Errorf("Attributes = %v, want nil", out[0].Attributes)
	}
	*out[0].Children[0].Value = "changed"
	if value != "secret" {
		t.Error("exported value aliases the original")
	}
	if root.Rect == nil {
		t.Error("original tree was modified")
	}

	data, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if strings.Contains(string(data), `"rect"`) || strings.Contains(string(data), `"text"`) {
		t.Errorf("unexpected fields in %s", data)
	}
}

func TestRenderHTML(t *testing.T) {
	forest := []*entities.ElementNode{
		{
			ID:      0,
			TagName: "label",
			Text:    "Size <M>",
			Children: []*entities.ElementNode{
				{ID: 1, TagName: "input", Attributes: entities.Attributes{"required": entities.BoolAttr(true), "type": entities.StringAttr("text")}},
				{
					ID:         2,
					TagName:    "select",
					Attributes: entities.Attributes{"name": entities.StringAttr("size")},
					Options:    []entities.SelectOption{{OptionIndex: 0, Text: "S"}, {OptionIndex: 1, Text: "M"}},
				},
			},
		},
	}

	got := RenderHTML(forest)
	want := `<label>Size &lt;M&gt;<input required="true" type="text">` +
		`<select name="size"><option index="0">S</option><option index="1">M</option></select></label>`
	if got != want {
		t.Errorf("RenderHTML() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderTree(t *testing.T) {
	forest := []*entities.ElementNode{{ID: 0, TagName: "button", Text: "Go"}}

	tests := []struct {
		format  entities.TreeFormat
		want    string
		wantErr bool
	}{
		{entities.TreeFormatJSON, `[{"id":0,"tagName":"button","text":"Go"}]`, false},
		{entities.TreeFormatHTML, `<button>Go</button>`, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := RenderTree(forest, tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("RenderTree(%s) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("RenderTree(%s) = %s, want %s", tt.format, got, tt.want)
		}
	}
}
