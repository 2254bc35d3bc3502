package storage

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"page_structure/domain/entities"
)

// pageKey names a stored page after its host and capture time,
// e.g. example.com-2024-05-01T10-00-00Z-<uuid>.json
func pageKey(page *entities.ScrapedPage) string {
	host := "page"
	if u, err := url.Parse(page.URL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	created := page.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	timestamp := strings.ReplaceAll(created.UTC().Format(time.RFC3339), ":", "-")
	id := page.ID
	if id == "" {
		id = uuid.NewString()
	}
	return fmt.Sprintf("%s-%s-%s.json", host, timestamp, id)
}

// screenshotKey names the i-th screenshot stored next to a page
func screenshotKey(key string, i int) string {
	return fmt.Sprintf("%s-%d.png", strings.TrimSuffix(key, ".json"), i)
}
