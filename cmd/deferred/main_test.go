package main

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestRun(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.png")
	if err := run(context.Background(), "../../config/testdata/scene.toml", out, 1); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Errorf("image size = %dx%d, want 64x48", cfg.Width, cfg.Height)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name        string
		scene       string
		supersample int
	}{
		{"missing scene", filepath.Join(dir, "missing.toml"), 0},
		{"supersample out of range", "../../config/testdata/scene.toml", 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := run(context.Background(), tt.scene, filepath.Join(dir, "out.png"), tt.supersample); err == nil {
				t.Error("run() error = nil, want error")
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := run(ctx, "../../config/testdata/scene.toml", filepath.Join(t.TempDir(), "out.png"), 1); err == nil {
		t.Error("run() with cancelled context error = nil, want error")
	}
}
