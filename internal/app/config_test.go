package app

import (
	"path/filepath"
	"testing"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nesgo.json")

	original := NewConfig()
	original.Window.Scale = 3
	original.Window.Fullscreen = true
	original.Video.Backend = "headless"
	original.Paths.ROMs = "/tmp/roms"

	if err := original.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	reloaded := NewConfig()
	if err := reloaded.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if reloaded.Window.Scale != 3 {
		t.Fatalf("Window.Scale = %d, want 3", reloaded.Window.Scale)
	}
	if !reloaded.Window.Fullscreen {
		t.Fatalf("Window.Fullscreen = false, want true")
	}
	if reloaded.Video.Backend != "headless" {
		t.Fatalf("Video.Backend = %q, want headless", reloaded.Video.Backend)
	}
	if reloaded.Paths.ROMs != "/tmp/roms" {
		t.Fatalf("Paths.ROMs = %q, want /tmp/roms", reloaded.Paths.ROMs)
	}
	if !reloaded.IsLoaded() {
		t.Fatalf("expected IsLoaded() to report true after LoadFromFile")
	}
}

func TestLoadFromFileWritesDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing", "nesgo.json")

	c := NewConfig()
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	reloaded := NewConfig()
	if err := reloaded.LoadFromFile(path); err != nil {
		t.Fatalf("second LoadFromFile: %v", err)
	}
	if reloaded.Window.Scale != c.Window.Scale {
		t.Fatalf("Window.Scale = %d, want %d", reloaded.Window.Scale, c.Window.Scale)
	}
}

func TestValidateClampsInvalidScale(t *testing.T) {
	c := NewConfig()
	c.Window.Scale = 0
	c.validate()
	if c.Window.Scale != 1 {
		t.Fatalf("Window.Scale = %d, want 1 after validate", c.Window.Scale)
	}
}

func TestGetWindowResolutionScalesNESResolution(t *testing.T) {
	c := NewConfig()
	c.Window.Scale = 4
	w, h := c.GetWindowResolution()
	if w != 1024 || h != 960 {
		t.Fatalf("GetWindowResolution() = (%d, %d), want (1024, 960)", w, h)
	}
}
