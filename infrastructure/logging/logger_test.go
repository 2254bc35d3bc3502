package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_Level(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{" warn ", logrus.WarnLevel},
		{"", logrus.InfoLevel},
		{"loud", logrus.InfoLevel},
	}
	for _, tt := range tests {
		logger, _, err := New(Options{Level: tt.level}, &bytes.Buffer{})
		if err != nil {
			t.Fatalf("New(%q) error = %v", tt.level, err)
		}
		if logger.GetLevel() != tt.want {
			t.Errorf("New(%q) level = %v, want %v", tt.level, logger.GetLevel(), tt.want)
		}
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Format: "JSON"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.WithField("url", "https://example.com").Info("Navigating to URL")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not json: %q", buf.String())
	}
	if entry["msg"] != "Navigating to URL" || entry["url"] != "https://example.com" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNew_File(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "scraper.log")

	logger, closer, err := New(Options{File: path, MaxSizeMB: 1}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("written twice")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "written twice") || !strings.Contains(buf.String(), "written twice") {
		t.Errorf("file = %q, out = %q", data, buf.String())
	}
}
