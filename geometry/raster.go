package geometry

import (
	"context"
	"image"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/deferred/depth"
	"github.com/gogpu/deferred/internal/parallel"
)

// Fragment is a covered pixel with perspective-correct interpolated
// attributes. Window coordinates have their origin at the bottom-left
// corner, so row 0 is the bottom of the image.
type Fragment struct {
	X, Y int
	// Window is the pixel center in window coordinates.
	Window mgl32.Vec2
	// Clip is the interpolated clip-space position.
	Clip mgl32.Vec4
	// Eye is the eye-space position with w = 1.
	Eye mgl32.Vec4
	// PositiveEyeZ is depth.PrepareEyeZ of the eye-space Z, ready for
	// depth.EncodePartial.
	PositiveEyeZ float32
	UV           mgl32.Vec2
	// Normal, Tangent and Bitangent are in eye space and unnormalized.
	Normal      mgl32.Vec3
	Tangent     mgl32.Vec3
	Bitangent   mgl32.Vec3
	FrontFacing bool
}

// Draw is one mesh submitted to the rasterizer.
type Draw struct {
	Mesh  *Mesh
	Model mgl32.Mat4
	// CullBackFaces drops clockwise triangles.
	CullBackFaces bool
}

// Stats counts triangles and fragments processed by a rasterization.
type Stats struct {
	Triangles int
	Culled    int
	Clipped   int
	Fragments int64
}

// Rasterizer converts triangles into fragments using a tile-parallel
// scan. Triangles are binned into screen tiles; each tile is processed by
// one worker in submission order, so a fragment callback owns the pixels it
// is called for.
type Rasterizer struct {
	width  int
	height int
	pool   *parallel.WorkerPool
	grid   *parallel.Grid
}

// NewRasterizer creates a rasterizer for a width x height target.
func NewRasterizer(width, height int, pool *parallel.WorkerPool) *Rasterizer {
	return &Rasterizer{
		width:  width,
		height: height,
		pool:   pool,
		grid:   parallel.NewGrid(width, height),
	}
}

// Width returns the target width in pixels.
func (r *Rasterizer) Width() int { return r.width }

// Height returns the target height in pixels.
func (r *Rasterizer) Height() int { return r.height }

// attributes are the per-vertex values interpolated across a triangle.
type attributes struct {
	eye       mgl32.Vec3
	prepared  float32
	normal    mgl32.Vec3
	tangent   mgl32.Vec3
	bitangent mgl32.Vec3
	uv        mgl32.Vec2
}

func (a attributes) scale(k float32) attributes {
	return attributes{
		eye:       a.eye.Mul(k),
		prepared:  a.prepared * k,
		normal:    a.normal.Mul(k),
		tangent:   a.tangent.Mul(k),
		bitangent: a.bitangent.Mul(k),
		uv:        a.uv.Mul(k),
	}
}

func (a attributes) add(b attributes) attributes {
	return attributes{
		eye:       a.eye.Add(b.eye),
		prepared:  a.prepared + b.prepared,
		normal:    a.normal.Add(b.normal),
		tangent:   a.tangent.Add(b.tangent),
		bitangent: a.bitangent.Add(b.bitangent),
		uv:        a.uv.Add(b.uv),
	}
}

type clipVertex struct {
	clip mgl32.Vec4
	attr attributes
}

func lerpVertex(a, b clipVertex, t float32) clipVertex {
	return clipVertex{
		clip: a.clip.Add(b.clip.Sub(a.clip).Mul(t)),
		attr: a.attr.scale(1 - t).add(b.attr.scale(t)),
	}
}

// screenTriangle is a clipped triangle ready for scan conversion.
type screenTriangle struct {
	draw   int
	win    [3]mgl32.Vec2
	invW   [3]float32
	clip   [3]mgl32.Vec4
	attr   [3]attributes
	area   float32
	front  bool
	bounds image.Rectangle
	// owns[i] is set when pixel centers exactly on the edge opposite
	// vertex i belong to this triangle.
	owns [3]bool
}

// Rasterize scan converts every draw and calls fn for each covered pixel
// with the index of the draw that produced it. fn is called concurrently
// for pixels of different tiles and never concurrently for the same pixel.
func (r *Rasterizer) Rasterize(ctx context.Context, view, projection mgl32.Mat4, draws []Draw, fn func(draw int, f *Fragment)) (Stats, error) {
	var stats Stats
	var tris []screenTriangle
	for i, d := range draws {
		if d.Mesh == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		tris = r.setup(tris, i, d, view, projection, &stats)
	}

	bins := make([][]int32, len(r.grid.Tiles))
	for i := range tris {
		for _, tile := range r.grid.TilesIn(tris[i].bounds) {
			bins[tile] = append(bins[tile], int32(i)) //nolint:gosec // triangle count fits int32
		}
	}

	var fragments atomic.Int64
	err := r.grid.ForEachTile(ctx, r.pool, func(t parallel.Tile) {
		var f Fragment
		var n int64
		for _, ti := range bins[t.Index] {
			n += scan(&tris[ti], t.Bounds, &f, fn)
		}
		fragments.Add(n)
	})
	stats.Fragments = fragments.Load()
	return stats, err
}

func (r *Rasterizer) setup(out []screenTriangle, index int, d Draw, view, projection mgl32.Mat4, stats *Stats) []screenTriangle {
	modelView := view.Mul4(d.Model)
	mvp := projection.Mul4(modelView)
	normalMatrix := mgl32.Mat4Normal(modelView)
	tangentMatrix := modelView.Mat3()

	verts := make([]clipVertex, len(d.Mesh.Vertices))
	for i, v := range d.Mesh.Vertices {
		eye := modelView.Mul4x1(v.Position.Vec4(1)).Vec3()
		verts[i] = clipVertex{
			clip: mvp.Mul4x1(v.Position.Vec4(1)),
			attr: attributes{
				eye:       eye,
				prepared:  depth.PrepareEyeZ(depth.EyeZ(eye[2])),
				normal:    normalMatrix.Mul3x1(v.Normal),
				tangent:   tangentMatrix.Mul3x1(v.Tangent),
				bitangent: tangentMatrix.Mul3x1(v.Bitangent),
				uv:        v.UV,
			},
		}
	}

	idx := d.Mesh.Indices
	for i := 0; i+2 < len(idx); i += 3 {
		if int(idx[i]) >= len(verts) || int(idx[i+1]) >= len(verts) || int(idx[i+2]) >= len(verts) {
			continue
		}
		stats.Triangles++
		poly, clipped := clipNear([3]clipVertex{verts[idx[i]], verts[idx[i+1]], verts[idx[i+2]]})
		if clipped {
			stats.Clipped++
		}
		for k := 1; k+1 < len(poly); k++ {
			t, ok := r.project(index, poly[0], poly[k], poly[k+1])
			if !ok {
				continue
			}
			if d.CullBackFaces && !t.front {
				stats.Culled++
				continue
			}
			out = append(out, t)
		}
	}
	return out
}

// clipNear clips a triangle against the near plane z >= -w and returns
// the resulting convex polygon of 0, 3 or 4 vertices.
func clipNear(tri [3]clipVertex) ([]clipVertex, bool) {
	var dist [3]float32
	inside := 0
	for i, v := range tri {
		dist[i] = v.clip[2] + v.clip[3]
		if dist[i] >= 0 {
			inside++
		}
	}
	switch inside {
	case 3:
		return tri[:], false
	case 0:
		return nil, true
	}
	out := make([]clipVertex, 0, 4)
	for i := range 3 {
		j := (i + 1) % 3
		a, b := tri[i], tri[j]
		da, db := dist[i], dist[j]
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, lerpVertex(a, b, da/(da-db)))
		}
	}
	return out, true
}

func (r *Rasterizer) project(draw int, a, b, c clipVertex) (screenTriangle, bool) {
	t := screenTriangle{draw: draw}
	vs := [3]clipVertex{a, b, c}
	for i, v := range vs {
		w := v.clip[3]
		if !(w > 1e-7) {
			return t, false
		}
		inv := 1 / w
		t.invW[i] = inv
		t.clip[i] = v.clip
		t.attr[i] = v.attr
		t.win[i] = mgl32.Vec2{
			(v.clip[0]*inv + 1) * 0.5 * float32(r.width),
			(v.clip[1]*inv + 1) * 0.5 * float32(r.height),
		}
	}
	t.area = edge(t.win[0], t.win[1], t.win[2])
	if t.area == 0 || math32.IsNaN(t.area) || math32.IsInf(t.area, 0) {
		return t, false
	}
	t.front = t.area > 0
	for i := range 3 {
		t.owns[i] = ownsEdge(t.win[(i+1)%3], t.win[(i+2)%3], t.front)
	}

	minX := math32.Min(t.win[0][0], math32.Min(t.win[1][0], t.win[2][0]))
	maxX := math32.Max(t.win[0][0], math32.Max(t.win[1][0], t.win[2][0]))
	minY := math32.Min(t.win[0][1], math32.Min(t.win[1][1], t.win[2][1]))
	maxY := math32.Max(t.win[0][1], math32.Max(t.win[1][1], t.win[2][1]))
	w, h := float32(r.width), float32(r.height)
	if maxX < 0 || maxY < 0 || minX > w || minY > h {
		return t, false
	}
	t.bounds = image.Rect(
		int(math32.Floor(mgl32.Clamp(minX, 0, w))),
		int(math32.Floor(mgl32.Clamp(minY, 0, h))),
		int(math32.Ceil(mgl32.Clamp(maxX, 0, w)))+1,
		int(math32.Ceil(mgl32.Clamp(maxY, 0, h)))+1,
	).Intersect(image.Rect(0, 0, r.width, r.height))
	return t, !t.bounds.Empty()
}

// edge returns twice the signed area of (a, b, p); positive when the
// three points wind counter-clockwise.
func edge(a, b, p mgl32.Vec2) float32 {
	return (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
}

// sharedEdge is edge evaluated with its endpoints in a fixed order, so the
// two triangles on either side of an edge see exactly negated values.
func sharedEdge(a, b, p mgl32.Vec2) float32 {
	if a[0] < b[0] || (a[0] == b[0] && a[1] < b[1]) {
		return edge(a, b, p)
	}
	return -edge(b, a, p)
}

// ownsEdge applies the top-left rule to the edge a->b: ties go to left
// edges and to top edges, with window y pointing up. ccw tells which side
// of the edge the triangle lies on.
func ownsEdge(a, b mgl32.Vec2, ccw bool) bool {
	d := b.Sub(a)
	// Inward normal.
	n := mgl32.Vec2{-d[1], d[0]}
	if !ccw {
		n = n.Mul(-1)
	}
	return n[0] > 0 || (n[0] == 0 && n[1] < 0)
}

func covers(b float32, owns bool) bool {
	return b > 0 || (b == 0 && owns)
}

func scan(t *screenTriangle, tile image.Rectangle, f *Fragment, fn func(int, *Fragment)) int64 {
	r := t.bounds.Intersect(tile)
	var n int64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p := mgl32.Vec2{float32(x) + 0.5, float32(y) + 0.5}
			b0 := sharedEdge(t.win[1], t.win[2], p) / t.area
			b1 := sharedEdge(t.win[2], t.win[0], p) / t.area
			b2 := sharedEdge(t.win[0], t.win[1], p) / t.area
			if !covers(b0, t.owns[0]) || !covers(b1, t.owns[1]) || !covers(b2, t.owns[2]) {
				continue
			}
			w0, w1, w2 := b0*t.invW[0], b1*t.invW[1], b2*t.invW[2]
			k := 1 / (w0 + w1 + w2)
			w0, w1, w2 = w0*k, w1*k, w2*k

			a := t.attr[0].scale(w0).add(t.attr[1].scale(w1)).add(t.attr[2].scale(w2))
			*f = Fragment{
				X:            x,
				Y:            y,
				Window:       p,
				Clip:         t.clip[0].Mul(w0).Add(t.clip[1].Mul(w1)).Add(t.clip[2].Mul(w2)),
				Eye:          a.eye.Vec4(1),
				PositiveEyeZ: a.prepared,
				UV:           a.uv,
				Normal:       a.normal,
				Tangent:      a.tangent,
				Bitangent:    a.bitangent,
				FrontFacing:  t.front,
			}
			fn(t.draw, f)
			n++
		}
	}
	return n
}
