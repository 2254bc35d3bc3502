package interfaces

import (
	"context"

	"page_structure/domain/entities"
)

// PageScraper is what the presentation layers drive
type PageScraper interface {
	Scrape(ctx context.Context, url string) (*entities.ScrapedPage, error)
	Status() []entities.ScrapeTask
}
