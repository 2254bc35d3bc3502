package interfaces

import (
	"context"

	"page_structure/domain/entities"
)

// ResultStore persists scraped pages
type ResultStore interface {
	// Save stores the page and returns the key it was written under
	Save(ctx context.Context, page *entities.ScrapedPage) (string, error)

	// Load reads a page back by key
	Load(ctx context.Context, key string) (*entities.ScrapedPage, error)
}
