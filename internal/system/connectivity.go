// internal/system/connectivity.go
package system

import (
	"sort"

	"go-bubble-arena/internal/entity"
	"go-bubble-arena/internal/event"
	"go-bubble-arena/internal/types"
	"go-bubble-arena/pkg/hexmap"
)

// ConnectivitySystem пересчитывает достижимость от якоря после каждой
// структурной мутации. Живой пузырь, не достижимый по цепочке занятых
// соседних ячеек от окружения якоря — сирота: он снимается с сетки и
// отдаётся внешним коллабораторам на анимацию падения.
type ConnectivitySystem struct {
	ecs        *entity.ECS
	index      *AttachmentSystem
	dispatcher *event.Dispatcher
}

func NewConnectivitySystem(ecs *entity.ECS, index *AttachmentSystem, dispatcher *event.Dispatcher) *ConnectivitySystem {
	return &ConnectivitySystem{ecs: ecs, index: index, dispatcher: dispatcher}
}

// Audit выполняет обход в ширину от занятых ячеек, прилегающих к якорю,
// и снимает всех недостижимых. Повторный вызов без промежуточных мутаций
// возвращает пустой результат. Пустая сетка — валидный no-op.
func (s *ConnectivitySystem) Audit() []types.EntityID {
	reached := make(map[hexmap.Hex]bool)
	var queue []hexmap.Hex

	for _, n := range hexmap.Anchor.AllPossibleNeighbors() {
		if s.index.Has(n) && !reached[n] {
			reached[n] = true
			queue = append(queue, n)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range current.AllPossibleNeighbors() {
			if reached[n] || !s.index.Has(n) {
				continue
			}
			reached[n] = true
			queue = append(queue, n)
		}
	}

	var orphans []types.EntityID
	s.index.Each(func(h hexmap.Hex, id types.EntityID) {
		if !reached[h] {
			orphans = append(orphans, id)
		}
	})
	if len(orphans) == 0 {
		return nil
	}

	// Порядок обхода карты случаен; фиксируем его для воспроизводимости.
	sort.Slice(orphans, func(i, j int) bool { return orphans[i] < orphans[j] })

	for _, id := range orphans {
		s.index.Remove(id)
	}
	s.dispatcher.Dispatch(event.Event{
		Type: event.BubblesOrphaned,
		Data: event.OrphanedPayload{Dropped: orphans},
	})
	return orphans
}
