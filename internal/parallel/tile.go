// Package parallel schedules per-pixel render passes over screen tiles.
//
// The screen is divided into 64x64 pixel tiles. A pass runs one work item
// per tile on a [WorkerPool]; since tiles do not overlap, fragment code may
// write to its own pixels without synchronization.
package parallel

import (
	"context"
	"image"
)

// Tile size in pixels.
const (
	TileWidth  = 64
	TileHeight = 64
)

// Tile is a rectangular pixel region. Edge tiles may be smaller than
// TileWidth x TileHeight.
type Tile struct {
	// Index is the position of the tile in Grid.Tiles.
	Index int
	// Bounds is the pixel rectangle covered by the tile.
	Bounds image.Rectangle
}

// Grid partitions a width x height surface into tiles.
type Grid struct {
	Width, Height  int
	TilesX, TilesY int
	Tiles          []Tile
}

// NewGrid creates a grid covering a width x height surface. Non-positive
// sizes give an empty grid.
func NewGrid(width, height int) *Grid {
	g := &Grid{Width: max(width, 0), Height: max(height, 0)}
	if width <= 0 || height <= 0 {
		return g
	}
	g.TilesX = (width + TileWidth - 1) / TileWidth
	g.TilesY = (height + TileHeight - 1) / TileHeight
	g.Tiles = make([]Tile, 0, g.TilesX*g.TilesY)
	for ty := range g.TilesY {
		for tx := range g.TilesX {
			r := image.Rect(tx*TileWidth, ty*TileHeight, (tx+1)*TileWidth, (ty+1)*TileHeight)
			g.Tiles = append(g.Tiles, Tile{
				Index:  len(g.Tiles),
				Bounds: r.Intersect(image.Rect(0, 0, width, height)),
			})
		}
	}
	return g
}

// TilesIn returns the indices of tiles overlapping r.
func (g *Grid) TilesIn(r image.Rectangle) []int {
	r = r.Intersect(image.Rect(0, 0, g.Width, g.Height))
	if r.Empty() {
		return nil
	}
	tx0, ty0 := r.Min.X/TileWidth, r.Min.Y/TileHeight
	tx1, ty1 := (r.Max.X-1)/TileWidth, (r.Max.Y-1)/TileHeight
	out := make([]int, 0, (tx1-tx0+1)*(ty1-ty0+1))
	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			out = append(out, ty*g.TilesX+tx)
		}
	}
	return out
}

// ForEachTile runs fn once per tile of g on pool.
func (g *Grid) ForEachTile(ctx context.Context, pool *WorkerPool, fn func(t Tile)) error {
	return pool.Run(ctx, len(g.Tiles), func(i int) {
		fn(g.Tiles[i])
	})
}

// ForEachPixel runs fn for every pixel of a width x height surface, one
// tile per work item.
func ForEachPixel(ctx context.Context, pool *WorkerPool, width, height int, fn func(x, y int)) error {
	return NewGrid(width, height).ForEachTile(ctx, pool, func(t Tile) {
		for y := t.Bounds.Min.Y; y < t.Bounds.Max.Y; y++ {
			for x := t.Bounds.Min.X; x < t.Bounds.Max.X; x++ {
				fn(x, y)
			}
		}
	})
}
