package security

import (
	"strings"

	"github.com/sirupsen/logrus"

	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
)

// RedactedValue replaces sensitive values in exported trees
const RedactedValue = "[redacted]"

// SecurityLayer scrubs exported element trees before they leave the process
type SecurityLayer struct {
	logger *logrus.Logger
}

func NewSecurityLayer(logger *logrus.Logger) *SecurityLayer {
	return &SecurityLayer{
		logger: logger,
	}
}

// IsSensitive reports whether an element holds a secret the user typed or
// the page prefilled
func (s *SecurityLayer) IsSensitive(node *entities.ElementNode) bool {
	if node.TagName != "input" {
		return false
	}
	if strings.EqualFold(node.Attributes.Str("type"), "password") {
		return true
	}

	autocomplete := strings.ToLower(node.Attributes.Str("autocomplete"))
	sensitiveAutocomplete := []string{
		"current-password", "new-password", "one-time-code",
		"cc-number", "cc-csc", "cc-exp",
	}
	for _, keyword := range sensitiveAutocomplete {
		if strings.Contains(autocomplete, keyword) {
			return true
		}
	}

	name := strings.ToLower(node.Attributes.Str("name"))
	sensitiveNames := []string{
		"password", "passwd", "cvv", "cvc", "card_number", "cardnumber", "ssn", "otp",
	}
	for _, keyword := range sensitiveNames {
		if strings.Contains(name, keyword) {
			return true
		}
	}

	return false
}

// Redact masks sensitive values and drops script hrefs in place
func (s *SecurityLayer) Redact(forest []*entities.ElementNode) {
	redacted := 0
	for _, root := range forest {
		root.Walk(func(node *entities.ElementNode) {
			if s.IsSensitive(node) {
				if s.maskValue(node) {
					redacted++
				}
			}
			if isScriptHref(node.Attributes.Str("href")) {
				delete(node.Attributes, "href")
				if len(node.Attributes) == 0 {
					node.Attributes = nil
				}
				redacted++
			}
		})
	}
	if redacted > 0 && s.logger != nil {
		s.logger.WithField("count", redacted).Debug("redacted exported values")
	}
}

func (s *SecurityLayer) maskValue(node *entities.ElementNode) bool {
	changed := false
	if node.Value != nil && *node.Value != "" {
		masked := RedactedValue
		node.Value = &masked
		changed = true
	}
	if v, ok := node.Attributes["value"]; ok && v.Truthy() {
		node.Attributes["value"] = entities.StringAttr(RedactedValue)
		changed = true
	}
	return changed
}

func isScriptHref(href string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(href)), "javascript:")
}

var _ interfaces.ExportPolicy = (*SecurityLayer)(nil)
