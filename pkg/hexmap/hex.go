// pkg/hexmap/hex.go
package hexmap

import (
	"go-bubble-arena/pkg/utils"
)

// Hex представляет гекс в осевых координатах (Q, R).
// Третья кубическая координата S всегда выводится как -Q-R,
// поэтому инвариант Q+R+S=0 держится по построению.
type Hex struct {
	Q, R int
}

// Anchor — фиксированный центр арены. Сам гекс никогда не занят пузырём,
// но служит корнем достижимости для всей грозди.
var Anchor = Hex{Q: 0, R: 0}

// NeighborDirections defines the 6 possible directions from a hex in a fixed
// cyclic order, starting from East and going clockwise on screen (y down).
// The order is crucial: ring enumeration and BFS neighbor visits rely on it
// being stable run-to-run.
var NeighborDirections = []Hex{
	{Q: 1, R: 0}, {Q: 0, R: 1}, {Q: -1, R: 1},
	{Q: -1, R: 0}, {Q: 0, R: -1}, {Q: 1, R: -1},
}

// S возвращает производную кубическую координату.
func (h Hex) S() int {
	return -h.Q - h.R
}

// AllPossibleNeighbors возвращает всех шестерых соседей гекса
// в порядке NeighborDirections.
func (h Hex) AllPossibleNeighbors() []Hex {
	neighbors := make([]Hex, 6)
	for i, d := range NeighborDirections {
		neighbors[i] = Hex{h.Q + d.Q, h.R + d.R}
	}
	return neighbors
}

// Add возвращает сумму двух гексов
func (h Hex) Add(other Hex) Hex {
	return Hex{
		Q: h.Q + other.Q,
		R: h.R + other.R,
	}
}

// Subtract возвращает разность двух гексов
func (h Hex) Subtract(other Hex) Hex {
	return Hex{
		Q: h.Q - other.Q,
		R: h.R - other.R,
	}
}

// Distance вычисляет расстояние между гексами
func (h Hex) Distance(to Hex) int {
	dq := h.Q - to.Q
	dr := h.R - to.R
	return (utils.Abs(dq) + utils.Abs(dr) + utils.Abs(dq+dr)) / 2
}

// Scale multiplies a hex vector by a scalar.
func (h Hex) Scale(factor int) Hex {
	return Hex{h.Q * factor, h.R * factor}
}

// Ring enumerates exactly the hexes at the given distance from center,
// walking the six edges of the ring in NeighborDirections order. The
// sequence is deterministic and consistent run-to-run. Radius 0 yields
// the center itself; a negative radius yields nothing.
func Ring(center Hex, radius int) []Hex {
	if radius < 0 {
		return nil
	}
	if radius == 0 {
		return []Hex{center}
	}
	results := make([]Hex, 0, 6*radius)
	h := center.Add(NeighborDirections[4].Scale(radius))
	for i := 0; i < 6; i++ {
		for j := 0; j < radius; j++ {
			results = append(results, h)
			h = h.Add(NeighborDirections[i])
		}
	}
	return results
}

// HexesInRange возвращает все гексы на расстоянии не больше radius от center,
// включая сам center.
func HexesInRange(center Hex, radius int) []Hex {
	if radius < 0 {
		return nil
	}
	results := make([]Hex, 0, 1+3*radius*(radius+1))
	for q := -radius; q <= radius; q++ {
		r1 := maxInt(-radius, -q-radius)
		r2 := minInt(radius, -q+radius)
		for r := r1; r <= r2; r++ {
			results = append(results, center.Add(Hex{Q: q, R: r}))
		}
	}
	return results
}

// OffsetCol returns the odd-r offset column of the hex. Pressure frontier
// math works in columns because vertically stacked cells share a column
// even though their axial Q shifts row to row.
func (h Hex) OffsetCol() int {
	return h.Q + (h.R-(h.R&1))/2
}

// FromOffset строит гекс из offset-координат (odd-r): колонка и ряд.
func FromOffset(col, row int) Hex {
	return Hex{Q: col - (row-(row&1))/2, R: row}
}
