// Package testdata provides test fixtures for management API tests.
// The JSON files follow the reply shapes of Check Point management servers.
package testdata

import (
	"embed"
	"testing"
)

// FS embeds all JSON fixture files.
//
//go:embed **/*.json
var FS embed.FS

// LoadFixture reads and returns fixture content as string.
// The path should be relative to testdata directory (e.g., "tasks/publish_succeeded.json").
func LoadFixture(t *testing.T, path string) string {
	t.Helper()

	data, err := FS.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", path, err)
	}

	return string(data)
}
