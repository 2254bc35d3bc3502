package security

import (
	"testing"

	"page_structure/domain/entities"
)

func input(attrs entities.Attributes, value string) *entities.ElementNode {
	return &entities.ElementNode{TagName: "input", Attributes: attrs, Value: &value}
}

func TestIsSensitive(t *testing.T) {
	s := NewSecurityLayer(nil)
	tests := []struct {
		name string
		node *entities.ElementNode
		want bool
	}{
		{"password type", input(entities.Attributes{"type": entities.StringAttr("Password")}, "x"), true},
		{"otp autocomplete", input(entities.Attributes{"autocomplete": entities.StringAttr("one-time-code")}, "1"), true},
		{"card name", input(entities.Attributes{"name": entities.StringAttr("billing_card_number")}, "4111"), true},
		{"plain text", input(entities.Attributes{"name": entities.StringAttr("email")}, "a@b.c"), false},
		{"textarea", &entities.ElementNode{TagName: "textarea", Attributes: entities.Attributes{"name": entities.StringAttr("password")}}, false},
	}
	for _, tt := range tests {
		if got := s.IsSensitive(tt.node); got != tt.want {
			t.Errorf("%s: IsSensitive() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRedact(t *testing.T) {
	s := NewSecurityLayer(nil)
	password := input(entities.Attributes{
		"type":  entities.StringAttr("password"),
		"value": entities.StringAttr("hunter2"),
	}, "hunter2")
	empty := input(entities.Attributes{"type": entities.StringAttr("password")}, "")
	email := input(entities.Attributes{"name": entities.StringAttr("email")}, "a@b.c")
	link := &entities.ElementNode{TagName: "a", Attributes: entities.Attributes{"href": entities.StringAttr(" JavaScript:void(0)")}}
	real := &entities.ElementNode{TagName: "a", Attributes: entities.Attributes{"href": entities.StringAttr("https://example.com/")}}
	form := &entities.ElementNode{TagName: "form", Children: []*entities.ElementNode{password, empty, email, link, real}}

	s.Redact([]*entities.ElementNode{form})

	if *password.Value != RedactedValue || password.Attributes.Str("value") != RedactedValue {
		t.Errorf("password = %q / %q", *password.Value, password.Attributes.Str("value"))
	}
	if *empty.Value != "" {
		t.Errorf("empty password value = %q, want empty", *empty.Value)
	}
	if *email.Value != "a@b.c" {
		t.Errorf("email value = %q, want unchanged", *email.Value)
	}
	if link.Attributes != nil {
		t.Errorf("javascript href kept: %v", link.Attributes)
	}
	if real.Attributes.Str("href") != "https://example.com/" {
		t.Error("regular href should be kept")
	}
}
