// internal/system/attachment.go
package system

import (
	"fmt"
	"math"

	"go-bubble-arena/internal/component"
	"go-bubble-arena/internal/config"
	"go-bubble-arena/internal/entity"
	"go-bubble-arena/internal/event"
	"go-bubble-arena/internal/types"
	"go-bubble-arena/pkg/hexmap"
)

// AttachmentSystem — пространственный реестр занятых ячеек и единственный
// владелец времени жизни пузырей на сетке. Все остальные системы ссылаются
// на пузыри только по ID и никогда не кэшируют занятость через границу
// мутации.
type AttachmentSystem struct {
	ecs         *entity.ECS
	dispatcher  *event.Dispatcher
	layout      hexmap.Layout
	arenaRadius int

	byCoord map[hexmap.Hex]types.EntityID
	byID    map[types.EntityID]hexmap.Hex
}

func NewAttachmentSystem(ecs *entity.ECS, dispatcher *event.Dispatcher, layout hexmap.Layout, arenaRadius int) *AttachmentSystem {
	return &AttachmentSystem{
		ecs:         ecs,
		dispatcher:  dispatcher,
		layout:      layout,
		arenaRadius: arenaRadius,
		byCoord:     make(map[hexmap.Hex]types.EntityID),
		byID:        make(map[types.EntityID]hexmap.Hex),
	}
}

// Has проверяет занятость координаты.
func (s *AttachmentSystem) Has(h hexmap.Hex) bool {
	_, ok := s.byCoord[h]
	return ok
}

// At возвращает ID пузыря в ячейке.
func (s *AttachmentSystem) At(h hexmap.Hex) (types.EntityID, bool) {
	id, ok := s.byCoord[h]
	return id, ok
}

// CoordOf возвращает ячейку пузыря.
func (s *AttachmentSystem) CoordOf(id types.EntityID) (hexmap.Hex, bool) {
	h, ok := s.byID[id]
	return h, ok
}

// Len — количество занятых ячеек.
func (s *AttachmentSystem) Len() int {
	return len(s.byCoord)
}

// Each вызывает fn для каждой занятой ячейки. Порядок обхода не определён;
// вызывающий сам агрегирует детерминированно.
func (s *AttachmentSystem) Each(fn func(h hexmap.Hex, id types.EntityID)) {
	for h, id := range s.byCoord {
		fn(h, id)
	}
}

// Layout возвращает привязку сетки к пикселям.
func (s *AttachmentSystem) Layout() hexmap.Layout {
	return s.layout
}

// ArenaRadius возвращает радиус арены в гексах.
func (s *AttachmentSystem) ArenaRadius() int {
	return s.arenaRadius
}

// Insert записывает пузырь в ячейку и помечает его живым. Занятая ячейка,
// якорь или выход за арену — это ошибка: мутация отклоняется, сетка не
// меняется.
func (s *AttachmentSystem) Insert(id types.EntityID, h hexmap.Hex) error {
	if h == hexmap.Anchor {
		return fmt.Errorf("coordinate %v is the anchor", h)
	}
	if other, occupied := s.byCoord[h]; occupied {
		return fmt.Errorf("coordinate %v already occupied by entity %d", h, other)
	}
	if _, placed := s.byID[id]; placed {
		return fmt.Errorf("entity %d already placed", id)
	}
	if h.Distance(hexmap.Anchor) > s.arenaRadius {
		return fmt.Errorf("coordinate %v outside arena radius %d", h, s.arenaRadius)
	}
	b, ok := s.ecs.Bubbles[id]
	if !ok {
		return fmt.Errorf("entity %d has no bubble component", id)
	}
	s.byCoord[h] = id
	s.byID[id] = h
	b.Alive = true
	return nil
}

// Place создаёт сущность для пузыря и вставляет её в ячейку. Компонент
// остаётся в ECS и при неудаче не регистрируется.
func (s *AttachmentSystem) Place(b *component.Bubble, h hexmap.Hex) (types.EntityID, error) {
	id := s.ecs.NewEntity()
	s.ecs.Bubbles[id] = b
	if err := s.Insert(id, h); err != nil {
		delete(s.ecs.Bubbles, id)
		return 0, err
	}
	return id, nil
}

// Remove снимает пузырь с сетки. Память компонента не трогаем — пул и
// анимации падения принадлежат внешним коллабораторам; стирается только
// присутствие на сетке.
func (s *AttachmentSystem) Remove(id types.EntityID) {
	h, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byID, id)
	delete(s.byCoord, h)
	if b, ok := s.ecs.Bubbles[id]; ok {
		b.Alive = false
	}
}

// Attach разрешает точку контакта снаряда в ячейку, вставляет пузырь и
// рассылает BubbleAttached. Неразрешимый контакт — не ошибка: снаряд
// отбрасывается молча (false).
func (s *AttachmentSystem) Attach(b *component.Bubble, px, py, dirX, dirY float64) (types.EntityID, hexmap.Hex, bool) {
	h, ok := s.ResolveAttachment(px, py, dirX, dirY)
	if !ok {
		return 0, hexmap.Hex{}, false
	}
	id, err := s.Place(b, h)
	if err != nil {
		return 0, hexmap.Hex{}, false
	}
	s.dispatcher.Dispatch(event.Event{
		Type: event.BubbleAttached,
		Data: event.AttachedPayload{ID: id, Coord: h},
	})
	return id, h, true
}

// ResolveAttachment возвращает ближайшую к точке контакта свободную ячейку,
// у которой есть хотя бы один занятый сосед либо опора (стена арены или
// поверхность якоря). Никогда не возвращает занятую или "висящую" в пустоте
// ячейку. При равных расстояниях выигрывает ячейка по направлению полёта
// снаряда — так прилипание предсказуемо и для глаза, и для логики.
func (s *AttachmentSystem) ResolveAttachment(px, py, dirX, dirY float64) (hexmap.Hex, bool) {
	start := s.layout.ToHex(px, py)

	ndx, ndy := normalize(dirX, dirY)

	const eps = 1e-6
	var best hexmap.Hex
	bestDist := math.MaxFloat64
	bestAlign := math.Inf(-1)
	found := false

	for _, h := range hexmap.HexesInRange(start, config.AttachSearchRadius) {
		if h == hexmap.Anchor || s.Has(h) {
			continue
		}
		if h.Distance(hexmap.Anchor) > s.arenaRadius {
			continue
		}
		if !s.isSupported(h) {
			continue
		}
		cx, cy := s.layout.ToPixel(h)
		dist := math.Hypot(cx-px, cy-py)
		align := (cx-px)*ndx + (cy-py)*ndy
		if dist < bestDist-eps || (math.Abs(dist-bestDist) <= eps && align > bestAlign) {
			best = h
			bestDist = dist
			bestAlign = align
			found = true
		}
	}
	return best, found
}

// isSupported: ячейка годится для прилипания, если рядом занятая ячейка,
// стена арены или сам якорь (поверхность цели тоже держит пузырь).
func (s *AttachmentSystem) isSupported(h hexmap.Hex) bool {
	d := h.Distance(hexmap.Anchor)
	if d == 1 || d == s.arenaRadius {
		return true
	}
	for _, n := range h.AllPossibleNeighbors() {
		if s.Has(n) {
			return true
		}
	}
	return false
}

func normalize(x, y float64) (float64, float64) {
	l := math.Hypot(x, y)
	if l == 0 {
		return 0, 0
	}
	return x / l, y / l
}
