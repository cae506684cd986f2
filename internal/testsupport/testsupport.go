// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"lessonlink/internal/config"
	"lessonlink/internal/dataset"
)

// NewConfig returns a config rooted in a per-test temp directory.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	return &config.Config{
		Paths: config.Paths{
			DataDir:    filepath.Join(base, "data"),
			LogDir:     filepath.Join(base, "log"),
			SocketPath: filepath.Join(base, "lessonlinkd.sock"),
		},
		Matching: config.Matching{
			IrrelevantWords: []string{"online", "per", "virtual", "zoom", "class", "clase", "meeting"},
		},
	}
}

// MustOpenStore opens the snapshot store for cfg and closes it on cleanup.
func MustOpenStore(t *testing.T, cfg *config.Config) *dataset.Store {
	t.Helper()
	store, err := dataset.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
