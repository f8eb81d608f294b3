// internal/system/match.go
package system

import (
	"go-bubble-arena/internal/component"
	"go-bubble-arena/internal/config"
	"go-bubble-arena/internal/entity"
	"go-bubble-arena/internal/event"
	"go-bubble-arena/internal/types"
	"go-bubble-arena/pkg/hexmap"
)

// MatchSystem ищет одноцветную связную компоненту вокруг только что
// прилипшего пузыря и лопает её, если она не меньше порога.
type MatchSystem struct {
	ecs        *entity.ECS
	index      *AttachmentSystem
	dispatcher *event.Dispatcher
}

// MatchResult — результат разрешения матча. Пустой результат (Size 0) —
// это не ошибка, просто "матча нет".
type MatchResult struct {
	Popped   []types.EntityID
	Size     int
	Origin   hexmap.Hex
	Gems     int
	Revealed map[types.EntityID]component.BubbleColor
}

func NewMatchSystem(ecs *entity.ECS, index *AttachmentSystem, dispatcher *event.Dispatcher) *MatchSystem {
	return &MatchSystem{ecs: ecs, index: index, dispatcher: dispatcher}
}

// Resolve обходит в ширину соседей того же эффективного цвета, начиная с
// origin. Порядок обхода детерминирован: соседи перебираются в порядке
// NeighborDirections. Компонента размером от MatchMinSize лопается: все её
// члены снимаются с сетки, рассылается MatchResolved.
func (s *MatchSystem) Resolve(origin hexmap.Hex) MatchResult {
	originID, ok := s.index.At(origin)
	if !ok {
		// Пустая ячейка или пустая сетка — валидный no-op.
		return MatchResult{Origin: origin}
	}
	originBubble := s.ecs.Bubbles[originID]
	if originBubble == nil {
		return MatchResult{Origin: origin}
	}
	color := originBubble.EffectiveColor()

	visited := map[hexmap.Hex]bool{origin: true}
	queue := []hexmap.Hex{origin}
	componentIDs := []types.EntityID{originID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range current.AllPossibleNeighbors() {
			if visited[n] {
				continue
			}
			id, occupied := s.index.At(n)
			if !occupied {
				continue
			}
			b := s.ecs.Bubbles[id]
			if b == nil || b.EffectiveColor() != color {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
			componentIDs = append(componentIDs, id)
		}
	}

	if len(componentIDs) < config.MatchMinSize {
		return MatchResult{Origin: origin}
	}

	result := MatchResult{
		Popped: componentIDs,
		Size:   len(componentIDs),
		Origin: origin,
	}
	for _, id := range componentIDs {
		b := s.ecs.Bubbles[id]
		switch b.Variant {
		case component.VariantNormal:
			// Ничего дополнительного.
		case component.VariantMystery:
			// Скрытый цвет раскрывается внешнему скорингу только при попе.
			if result.Revealed == nil {
				result.Revealed = make(map[types.EntityID]component.BubbleColor)
			}
			result.Revealed[id] = b.Color
		case component.VariantGem:
			result.Gems++
		}
		s.index.Remove(id)
	}

	s.dispatcher.Dispatch(event.Event{
		Type: event.MatchResolved,
		Data: event.MatchPayload{
			Popped:   result.Popped,
			Size:     result.Size,
			Origin:   result.Origin,
			Gems:     result.Gems,
			Revealed: result.Revealed,
		},
	})
	return result
}
