// Package spatial provides a uniform grid for repeated neighbor queries.
package spatial

import "math"

// Grid buckets items by integer cell coordinates. It is rebuilt each tick
// with Clear and Insert; queries over-approximate and callers filter by exact
// distance and liveness.
type Grid[T any] struct {
	cellSize float64
	cells    map[uint64][]T
	count    int
}

// NewGrid creates an empty grid. Non-positive cell sizes fall back to 1.
func NewGrid[T any](cellSize float64) *Grid[T] {
	if !(cellSize > 0) {
		cellSize = 1
	}
	return &Grid[T]{
		cellSize: cellSize,
		cells:    make(map[uint64][]T),
	}
}

// key packs a signed cell coordinate pair into one map key.
func key(cx, cy int32) uint64 {
	return uint64(uint32(cx))<<32 | uint64(uint32(cy))
}

func (g *Grid[T]) cell(x, y float64) (int32, int32) {
	return int32(math.Floor(x / g.cellSize)), int32(math.Floor(y / g.cellSize))
}

// CellSize returns the grid's cell edge length.
func (g *Grid[T]) CellSize() float64 { return g.cellSize }

// Len returns the number of inserted items.
func (g *Grid[T]) Len() int { return g.count }

// Clear removes all items while keeping bucket capacity for reuse.
func (g *Grid[T]) Clear() {
	for k, bucket := range g.cells {
		clear(bucket)
		g.cells[k] = bucket[:0]
	}
	g.count = 0
}

// Insert adds v to the cell containing (x, y).
func (g *Grid[T]) Insert(v T, x, y float64) {
	cx, cy := g.cell(x, y)
	k := key(cx, cy)
	g.cells[k] = append(g.cells[k], v)
	g.count++
}

// Nearby returns every item in the cells within ceil(radius/cellSize)+1
// rings of (x, y). The result is a superset of items within radius.
func (g *Grid[T]) Nearby(x, y, radius float64) []T {
	return g.NearbyInto(nil, x, y, radius)
}

// NearbyInto is Nearby appending into dst. Reuse dst across calls to avoid
// allocations.
func (g *Grid[T]) NearbyInto(dst []T, x, y, radius float64) []T {
	if radius < 0 || math.IsNaN(radius) {
		radius = 0
	}
	rings := int32(math.Ceil(radius/g.cellSize)) + 1
	cx, cy := g.cell(x, y)
	for dx := -rings; dx <= rings; dx++ {
		for dy := -rings; dy <= rings; dy++ {
			if bucket, ok := g.cells[key(cx+dx, cy+dy)]; ok {
				dst = append(dst, bucket...)
			}
		}
	}
	return dst
}
