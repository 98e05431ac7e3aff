package spatial

import (
	"math"
	"math/rand"
	"testing"
)

type point struct {
	id   int
	x, y float64
}

func TestGridNearbySuperset(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := NewGrid[int](25)

	pts := make([]point, 500)
	for i := range pts {
		pts[i] = point{id: i, x: rng.Float64()*1000 - 200, y: rng.Float64()*800 - 100}
		g.Insert(i, pts[i].x, pts[i].y)
	}

	tests := []struct {
		name   string
		x, y   float64
		radius float64
	}{
		{"small radius", 100, 100, 10},
		{"cell sized", 250, 300, 25},
		{"large radius", 400, 200, 180},
		{"negative coords", -150, -50, 60},
		{"zero radius", pts[3].x, pts[3].y, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := make(map[int]bool)
			for _, id := range g.Nearby(tt.x, tt.y, tt.radius) {
				found[id] = true
			}
			for _, p := range pts {
				if math.Hypot(p.x-tt.x, p.y-tt.y) <= tt.radius && !found[p.id] {
					t.Errorf("point %d at (%.1f, %.1f) within %.1f not returned", p.id, p.x, p.y, tt.radius)
				}
			}
		})
	}
}

func TestGridClear(t *testing.T) {
	g := NewGrid[string](10)
	g.Insert("a", 1, 1)
	g.Insert("b", 2, 2)
	if g.Len() != 2 {
		t.Errorf("Len = %d, want 2", g.Len())
	}

	g.Clear()
	if g.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", g.Len())
	}
	if got := g.Nearby(1, 1, 50); len(got) != 0 {
		t.Errorf("Nearby after Clear returned %v", got)
	}

	g.Insert("c", 1, 1)
	if got := g.Nearby(1, 1, 5); len(got) != 1 || got[0] != "c" {
		t.Errorf("Nearby after reinsert = %v, want [c]", got)
	}
}

func TestGridNearbyIntoReusesBuffer(t *testing.T) {
	g := NewGrid[int](10)
	for i := 0; i < 4; i++ {
		g.Insert(i, float64(i), 0)
	}
	buf := make([]int, 0, 16)
	buf = g.NearbyInto(buf[:0], 0, 0, 5)
	if len(buf) != 4 {
		t.Errorf("NearbyInto returned %d items, want 4", len(buf))
	}
}

func TestKeyDistinguishesSigns(t *testing.T) {
	seen := map[uint64]bool{}
	for _, c := range [][2]int32{{0, 0}, {-1, 0}, {0, -1}, {-1, -1}, {1, -1}, {-1, 1}} {
		k := key(c[0], c[1])
		if seen[k] {
			t.Errorf("key collision for %v", c)
		}
		seen[k] = true
	}
}
