package pkg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "domly" {
		t.Errorf("Expected Name to be %q, got %q", "domly", Name)
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	want := strings.TrimSpace(string(buf))
	if want == "" {
		t.Fatal("VERSION file is empty")
	}

	if Version != want {
		t.Errorf("Version = %q, want %q", Version, want)
	}
}

func TestPaths(t *testing.T) {
	if got := filepath.Base(ConfigDir()); got != Prefix() {
		t.Errorf("ConfigDir() base = %q, want %q", got, Prefix())
	}

	if got := filepath.Base(CacheDir()); got != Prefix() {
		t.Errorf("CacheDir() base = %q, want %q", got, Prefix())
	}

	if got, want := ConfigPath("config.yaml"), filepath.Join(ConfigDir(), "config.yaml"); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
}
