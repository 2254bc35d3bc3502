package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"page_structure/domain/entities"
	"page_structure/domain/interfaces"
)

type fileStore struct {
	dir    string
	logger *logrus.Logger
}

// NewFileStore - creates a result store writing JSON files under dir
func NewFileStore(dir string, logger *logrus.Logger) (interfaces.ResultStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create result directory: %w", err)
	}
	return &fileStore{dir: dir, logger: logger}, nil
}

// Save - writes the page as indented JSON plus one PNG per screenshot
func (s *fileStore) Save(ctx context.Context, page *entities.ScrapedPage) (string, error) {
	key := pageKey(page)
	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode page: %w", err)
	}
	path := filepath.Join(s.dir, key)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	for i, shot := range page.Screenshots {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		shotPath := filepath.Join(s.dir, screenshotKey(key, i))
		if err := os.WriteFile(shotPath, shot, 0644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", shotPath, err)
		}
	}
	if s.logger != nil {
		s.logger.Infof("Data saved to %s", path)
	}
	return key, nil
}

// Load - reads a page back, screenshots included
func (s *fileStore) Load(ctx context.Context, key string) (*entities.ScrapedPage, error) {
	if filepath.Base(key) != key {
		return nil, fmt.Errorf("invalid key %q", key)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		return nil, err
	}

	var page entities.ScrapedPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}

	for i := 0; ; i++ {
		shot, err := os.ReadFile(filepath.Join(s.dir, screenshotKey(key, i)))
		if err != nil {
			if os.IsNotExist(err) {
				break
			}
			return nil, err
		}
		page.Screenshots = append(page.Screenshots, shot)
	}
	return &page, nil
}
