// internal/event/types.go
package event

import (
	"go-bubble-arena/internal/component"
	"go-bubble-arena/internal/types"
	"go-bubble-arena/pkg/hexmap"
)

const (
	BubbleAttached    EventType = "BubbleAttached"    // Снаряд прилип к грозди
	MatchResolved     EventType = "MatchResolved"     // Компонента одного цвета лопнула
	BubblesOrphaned   EventType = "BubblesOrphaned"   // Осиротевшие пузыри отвалились
	DangerZoneWarning EventType = "DangerZoneWarning" // Ряд пересёк опасный порог
	RowSpawned        EventType = "RowSpawned"        // Генератор давления закоммитил ряд
	EmergencyRefill   EventType = "EmergencyRefill"   // Аварийное заполнение вокруг якоря
)

// AttachedPayload accompanies BubbleAttached: visual placement and
// shield-state recompute key off the snapped coordinate.
type AttachedPayload struct {
	ID    types.EntityID
	Coord hexmap.Hex
}

// MatchPayload accompanies MatchResolved. Revealed carries the concrete
// colors of popped mystery bubbles; Gems counts gem carriers in the match.
// Both are consumed by the external scoring collaborator.
type MatchPayload struct {
	Popped   []types.EntityID
	Size     int
	Origin   hexmap.Hex
	Gems     int
	Revealed map[types.EntityID]component.BubbleColor
}

// OrphanedPayload accompanies BubblesOrphaned, in deterministic ID order.
type OrphanedPayload struct {
	Dropped []types.EntityID
}

// DangerPayload accompanies DangerZoneWarning.
type DangerPayload struct {
	Side types.Side
	Row  int
}

// RowSpawnedPayload accompanies RowSpawned.
type RowSpawnedPayload struct {
	Committed int
}

// RefillPayload accompanies EmergencyRefill.
type RefillPayload struct {
	Count int
}
