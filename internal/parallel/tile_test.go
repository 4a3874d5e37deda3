package parallel

import (
	"context"
	"image"
	"sync/atomic"
	"testing"
)

func TestNewGrid(t *testing.T) {
	tests := []struct {
		name           string
		w, h           int
		tilesX, tilesY int
	}{
		{"exact", 128, 64, 2, 1},
		{"partial", 100, 130, 2, 3},
		{"single pixel", 1, 1, 1, 1},
		{"empty", 0, 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(tt.w, tt.h)
			if g.TilesX != tt.tilesX || g.TilesY != tt.tilesY {
				t.Errorf("tiles = %dx%d, want %dx%d", g.TilesX, g.TilesY, tt.tilesX, tt.tilesY)
			}
			if len(g.Tiles) != tt.tilesX*tt.tilesY {
				t.Errorf("len(Tiles) = %d, want %d", len(g.Tiles), tt.tilesX*tt.tilesY)
			}
			area := 0
			for _, tile := range g.Tiles {
				area += tile.Bounds.Dx() * tile.Bounds.Dy()
			}
			if area != max(tt.w, 0)*max(tt.h, 0) && len(g.Tiles) > 0 {
				t.Errorf("tiles cover %d pixels, want %d", area, tt.w*tt.h)
			}
		})
	}
}

func TestGridEdgeTile(t *testing.T) {
	g := NewGrid(100, 70)
	last := g.Tiles[len(g.Tiles)-1]
	if want := image.Rect(64, 64, 100, 70); last.Bounds != want {
		t.Errorf("edge tile bounds = %v, want %v", last.Bounds, want)
	}
}

func TestTilesIn(t *testing.T) {
	g := NewGrid(256, 256)
	tests := []struct {
		name string
		r    image.Rectangle
		want int
	}{
		{"inside one", image.Rect(10, 10, 20, 20), 1},
		{"straddle", image.Rect(60, 60, 70, 70), 4},
		{"row", image.Rect(0, 0, 256, 1), 4},
		{"outside", image.Rect(300, 300, 310, 310), 0},
		{"clipped", image.Rect(-50, -50, 10, 10), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(g.TilesIn(tt.r)); got != tt.want {
				t.Errorf("len(TilesIn(%v)) = %d, want %d", tt.r, got, tt.want)
			}
		})
	}
}

func TestForEachPixel(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	const w, h = 150, 97
	var counts [w * h]atomic.Int32
	err := ForEachPixel(context.Background(), pool, w, h, func(x, y int) {
		counts[y*w+x].Add(1)
	})
	if err != nil {
		t.Fatalf("ForEachPixel() error = %v", err)
	}
	for i := range counts {
		if got := counts[i].Load(); got != 1 {
			t.Fatalf("pixel %d visited %d times, want 1", i, got)
		}
	}
}
