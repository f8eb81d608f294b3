// pkg/hexmap/hex_test.go
package hexmap

import "testing"

func TestCoordinateSumInvariant(t *testing.T) {
	for _, h := range HexesInRange(Hex{}, 6) {
		if h.Q+h.R+h.S() != 0 {
			t.Errorf("hex %v: q+r+s = %d, want 0", h, h.Q+h.R+h.S())
		}
	}
}

func TestNeighbors(t *testing.T) {
	h := Hex{Q: 2, R: -1}
	neighbors := h.AllPossibleNeighbors()
	if len(neighbors) != 6 {
		t.Fatalf("got %d neighbors, want 6", len(neighbors))
	}
	seen := make(map[Hex]bool)
	for _, n := range neighbors {
		if h.Distance(n) != 1 {
			t.Errorf("neighbor %v at distance %d, want 1", n, h.Distance(n))
		}
		if seen[n] {
			t.Errorf("duplicate neighbor %v", n)
		}
		seen[n] = true
	}
}

func TestRing(t *testing.T) {
	center := Hex{Q: 1, R: 2}
	for radius := 0; radius <= 4; radius++ {
		ring := Ring(center, radius)
		wantLen := 6 * radius
		if radius == 0 {
			wantLen = 1
		}
		if len(ring) != wantLen {
			t.Fatalf("radius %d: got %d hexes, want %d", radius, len(ring), wantLen)
		}
		seen := make(map[Hex]bool)
		for _, h := range ring {
			if center.Distance(h) != radius {
				t.Errorf("radius %d: %v at distance %d", radius, h, center.Distance(h))
			}
			if seen[h] {
				t.Errorf("radius %d: duplicate %v", radius, h)
			}
			seen[h] = true
		}
	}
	if got := Ring(center, -1); got != nil {
		t.Errorf("negative radius: got %v, want nil", got)
	}
}

func TestRingDeterministic(t *testing.T) {
	a := Ring(Hex{}, 3)
	b := Ring(Hex{}, 3)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("ring enumeration not stable at index %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestPixelRoundTrip(t *testing.T) {
	layout := Layout{HexSize: 19.0, OriginX: 600, OriginY: 450}
	// Смещения строго внутри шестиугольной границы ячейки.
	offsets := [][2]float64{
		{0, 0}, {4, 0}, {-4, 0}, {0, 6}, {0, -6}, {5, 5}, {-5, -5}, {7, -3},
	}
	for _, h := range HexesInRange(Hex{}, 5) {
		cx, cy := layout.ToPixel(h)
		for _, off := range offsets {
			px, py := cx+off[0], cy+off[1]
			first := layout.ToHex(px, py)
			if first != h {
				t.Fatalf("point (%.1f, %.1f) resolved to %v, want %v", px, py, first, h)
			}
			// pixelToHex(hexToPixel(pixelToHex(p))) == pixelToHex(p)
			bx, by := layout.ToPixel(first)
			if again := layout.ToHex(bx, by); again != first {
				t.Fatalf("round trip drifted: %v -> %v", first, again)
			}
		}
	}
}

func TestOffsetColumns(t *testing.T) {
	tests := []struct {
		h   Hex
		col int
	}{
		{Hex{Q: 0, R: 0}, 0},
		{Hex{Q: 3, R: 0}, 3},
		{Hex{Q: 0, R: 2}, 1},
		{Hex{Q: -2, R: 4}, 0},
		{Hex{Q: 0, R: -2}, -1},
		{Hex{Q: 2, R: -3}, 0},
	}
	for _, tt := range tests {
		if got := tt.h.OffsetCol(); got != tt.col {
			t.Errorf("%v.OffsetCol() = %d, want %d", tt.h, got, tt.col)
		}
		if back := FromOffset(tt.col, tt.h.R); back != tt.h {
			t.Errorf("FromOffset(%d, %d) = %v, want %v", tt.col, tt.h.R, back, tt.h)
		}
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b Hex
		want int
	}{
		{Hex{}, Hex{}, 0},
		{Hex{}, Hex{Q: 1, R: 0}, 1},
		{Hex{}, Hex{Q: 3, R: -3}, 3},
		{Hex{Q: -2, R: 1}, Hex{Q: 2, R: 1}, 4},
		{Hex{}, Hex{Q: 2, R: 2}, 4},
	}
	for _, tt := range tests {
		if got := tt.a.Distance(tt.b); got != tt.want {
			t.Errorf("Distance(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
