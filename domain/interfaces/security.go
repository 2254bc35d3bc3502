package interfaces

import "page_structure/domain/entities"

// ExportPolicy decides what of an extracted tree may leave the process
type ExportPolicy interface {
	// Redact scrubs sensitive values from an exported forest in place
	Redact(forest []*entities.ElementNode)

	// IsSensitive reports whether an element's value must not be exported
	IsSensitive(node *entities.ElementNode) bool
}
