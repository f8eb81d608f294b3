// internal/types/types.go
package types

// EntityID — уникальный идентификатор сущности в ECS.
type EntityID uint64

// Side identifies the launcher a bubble belongs to and the direction
// pressure rows grow in. Top rows have negative R, bottom rows positive R.
type Side int

const (
	SideTop Side = iota
	SideBottom
)

// Sides enumerates both arena sides in a stable order, used wherever
// per-side work must be symmetric and deterministic.
var Sides = []Side{SideTop, SideBottom}

func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	}
	return "unknown"
}

// RowSign returns the direction rows grow toward this side's launcher:
// -1 for the top side, +1 for the bottom side.
func (s Side) RowSign() int {
	if s == SideTop {
		return -1
	}
	return 1
}
