// internal/system/pressure.go
package system

import (
	"sort"

	"github.com/charmbracelet/log"

	"go-bubble-arena/internal/component"
	"go-bubble-arena/internal/config"
	"go-bubble-arena/internal/defs"
	"go-bubble-arena/internal/entity"
	"go-bubble-arena/internal/event"
	"go-bubble-arena/internal/schedule"
	"go-bubble-arena/internal/types"
	"go-bubble-arena/internal/utils"
	"go-bubble-arena/pkg/hexmap"
	pkgutils "go-bubble-arena/pkg/utils"
)

// PressureState — состояние таймера генератора давления.
type PressureState int

const (
	PressureStopped PressureState = iota
	PressureRunning
)

type candidateKind int

const (
	candCritical candidateKind = iota
	candFrontier
	candGapFill
)

func (k candidateKind) String() string {
	switch k {
	case candCritical:
		return "critical"
	case candFrontier:
		return "frontier"
	case candGapFill:
		return "gap-fill"
	}
	return "unknown"
}

// spawnCandidate — предложенная ячейка до коммита.
type spawnCandidate struct {
	coord   hexmap.Hex
	side    types.Side
	kind    candidateKind
	color   component.BubbleColor
	variant component.BubbleVariant
}

// PressureSystem периодически подсаживает новые пузыри у крайних рядов
// каждой стороны, наращивая давление. Обе стороны обрабатываются одним и
// тем же алгоритмом в фиксированном порядке — симметрия здесь и есть
// честность. Все инварианты сетки сохраняются на каждом коммите.
type PressureSystem struct {
	ecs        *entity.ECS
	index      *AttachmentSystem
	dispatcher *event.Dispatcher
	sched      *schedule.Scheduler
	rng        *utils.PRNGService
	log        *log.Logger
	theme      defs.ArenaThemeDefinition

	state        PressureState
	interval     float64
	task         *schedule.Task
	shotInFlight bool
	immune       bool
}

func NewPressureSystem(ecs *entity.ECS, index *AttachmentSystem, dispatcher *event.Dispatcher, sched *schedule.Scheduler, rng *utils.PRNGService, theme defs.ArenaThemeDefinition, logger *log.Logger) *PressureSystem {
	return &PressureSystem{
		ecs:        ecs,
		index:      index,
		dispatcher: dispatcher,
		sched:      sched,
		rng:        rng,
		log:        logger,
		theme:      theme,
		state:      PressureStopped,
		interval:   theme.BaseSpawnInterval,
	}
}

// State возвращает текущее состояние таймера.
func (s *PressureSystem) State() PressureState {
	return s.state
}

// Interval возвращает текущий интервал между циклами, секунды.
func (s *PressureSystem) Interval() float64 {
	return s.interval
}

// Start запускает таймер циклов. Повторный Start — no-op.
func (s *PressureSystem) Start() {
	if s.state == PressureRunning {
		return
	}
	s.state = PressureRunning
	s.scheduleNext(s.interval)
}

// Stop останавливает таймер. Идемпотентен: повторная остановка и остановка
// уже сработавшего таймера — no-op. Накопленный интервал не сбрасывается.
func (s *PressureSystem) Stop() {
	if s.task != nil {
		s.task.Cancel()
		s.task = nil
	}
	s.state = PressureStopped
}

// SetShotInFlight — сигнал "снаряд в полёте": цикл откладывается, но не
// пропускается.
func (s *PressureSystem) SetShotInFlight(active bool) {
	s.shotInFlight = active
}

// SetImmunity — сигнал окна неуязвимости: цикл пропускается целиком.
func (s *PressureSystem) SetImmunity(active bool) {
	s.immune = active
}

func (s *PressureSystem) scheduleNext(delay float64) {
	s.task = s.sched.Schedule(delay, s.onTimer)
}

func (s *PressureSystem) onTimer() {
	if s.state != PressureRunning {
		return
	}
	if s.shotInFlight {
		// Отложить, не пропустить: интервал не ускоряется, цикл не теряется.
		s.scheduleNext(config.ShotRetryDelay)
		return
	}
	if s.immune {
		s.log.Debug("pressure cycle skipped", "reason", "immunity window")
	} else {
		s.RunCycle()
	}
	s.accelerate()
	s.scheduleNext(s.interval)
}

// accelerate подтягивает интервал к полу после каждого срабатывания.
func (s *PressureSystem) accelerate() {
	if s.interval <= s.theme.MinSpawnInterval {
		return
	}
	s.interval *= s.theme.SpawnAccelFactor
	if s.interval < s.theme.MinSpawnInterval {
		s.interval = s.theme.MinSpawnInterval
	}
}

// RunCycle выполняет один цикл давления на устоявшейся сетке:
// критический спавн → фронтир → заполнение разрывов → валидация →
// упорядоченный коммит → пост-коммитная зачистка.
func (s *PressureSystem) RunCycle() {
	if s.index.Len() >= config.MaxBubbles {
		s.log.Warn("pressure cycle skipped", "reason", "arena at capacity", "occupied", s.index.Len())
		return
	}
	if s.index.Len() < s.theme.PopulationFloor {
		s.EmergencyRefill()
		return
	}

	candidates := s.proposeCandidates()
	accepted := s.validateBatch(candidates)
	accepted = s.assignColors(accepted)
	s.assignMystery(accepted)
	committed := s.commitBatch(accepted)
	s.postCommitSweep(committed)
	s.dangerWarnings(committed)

	if len(committed) > 0 {
		s.dispatcher.Dispatch(event.Event{
			Type: event.RowSpawned,
			Data: event.RowSpawnedPayload{Committed: len(committed)},
		})
	}
}

// proposeCandidates собирает кандидатов обеих сторон. Дубликаты координат
// отбрасываются при первом появлении — критический спавн имеет приоритет
// над фронтиром.
func (s *PressureSystem) proposeCandidates() []spawnCandidate {
	var out []spawnCandidate
	seen := make(map[hexmap.Hex]bool)
	add := func(h hexmap.Hex, side types.Side, kind candidateKind) {
		if seen[h] {
			return
		}
		seen[h] = true
		out = append(out, spawnCandidate{coord: h, side: side, kind: kind, color: component.ColorNone, variant: component.VariantNormal})
	}

	for _, side := range types.Sides {
		// 1. Критический спавн: давление обязано вырасти в самой опасной
		// точке стороны, независимо от любого рандома.
		if crit, ok := s.extremeOccupant(side); ok {
			if h, ok := s.outwardFree(crit, side); ok {
				add(h, side, candCritical)
			}
		}

		// 2. Фронтир: по кандидату на каждую колонку.
		frontier := s.frontier(side)
		cols := sortedCols(frontier)
		for _, col := range cols {
			if h, ok := s.outwardFree(frontier[col], side); ok {
				add(h, side, candFrontier)
			}
		}

		// 3. Разрывы фронтира: промежуточные пустые колонки заполняются на
		// усреднённом ряду. Правило стабильности (минимум два соседа)
		// проверит validateBatch.
		for i := 0; i+1 < len(cols); i++ {
			cl, cr := cols[i], cols[i+1]
			if cr-cl <= 1 {
				continue
			}
			rowL, rowR := frontier[cl].R, frontier[cr].R
			for c := cl + 1; c < cr; c++ {
				row := pkgutils.MidpointToward(rowL, rowR, side.RowSign())
				add(hexmap.FromOffset(c, row), side, candGapFill)
			}
		}
	}
	return out
}

// extremeOccupant находит единственный пузырь стороны с самым крайним рядом.
// Ничья разрешается детерминированно: ближе к центральной колонке, затем
// меньшая колонка.
func (s *PressureSystem) extremeOccupant(side types.Side) (hexmap.Hex, bool) {
	sign := side.RowSign()
	var best hexmap.Hex
	found := false
	s.index.Each(func(h hexmap.Hex, _ types.EntityID) {
		if !found {
			best = h
			found = true
			return
		}
		hr, br := sign*h.R, sign*best.R
		switch {
		case hr > br:
			best = h
		case hr == br:
			hc, bc := h.OffsetCol(), best.OffsetCol()
			if pkgutils.Abs(hc) < pkgutils.Abs(bc) || (pkgutils.Abs(hc) == pkgutils.Abs(bc) && hc < bc) {
				best = h
			}
		}
	})
	return best, found
}

// frontier возвращает самый крайний занятый гекс стороны в каждой колонке.
func (s *PressureSystem) frontier(side types.Side) map[int]hexmap.Hex {
	sign := side.RowSign()
	front := make(map[int]hexmap.Hex)
	s.index.Each(func(h hexmap.Hex, _ types.EntityID) {
		col := h.OffsetCol()
		cur, ok := front[col]
		if !ok || sign*h.R > sign*cur.R {
			front[col] = h
		}
	})
	return front
}

// outwardFree выбирает свободного соседа на один ряд дальше от центра.
// Из двух соседей внешнего ряда предпочитается тот, что остаётся в колонке
// исходного гекса.
func (s *PressureSystem) outwardFree(from hexmap.Hex, side types.Side) (hexmap.Hex, bool) {
	row := from.R + side.RowSign()
	var options [2]hexmap.Hex
	if side.RowSign() > 0 {
		options = [2]hexmap.Hex{{Q: from.Q, R: row}, {Q: from.Q - 1, R: row}}
	} else {
		options = [2]hexmap.Hex{{Q: from.Q, R: row}, {Q: from.Q + 1, R: row}}
	}
	if options[1].OffsetCol() == from.OffsetCol() {
		options[0], options[1] = options[1], options[0]
	}
	for _, h := range options {
		if s.index.Has(h) || h == hexmap.Anchor {
			continue
		}
		if h.Distance(hexmap.Anchor) > s.index.ArenaRadius() {
			continue
		}
		return h, true
	}
	return hexmap.Hex{}, false
}

// validateBatch отбирает кандидатов по правилу опоры, учитывая уже принятых
// в этой же партии. Отклонение — не ошибка: кандидат просто молча выпадает.
func (s *PressureSystem) validateBatch(candidates []spawnCandidate) []spawnCandidate {
	accepted := make([]spawnCandidate, 0, len(candidates))
	pending := make(map[hexmap.Hex]bool)
	for _, c := range candidates {
		if !s.validPlacement(c, pending) {
			s.log.Debug("pressure candidate rejected", "coord", c.coord, "kind", c.kind, "side", c.side)
			continue
		}
		pending[c.coord] = true
		accepted = append(accepted, c)
	}
	return accepted
}

// validPlacement — правило опоры (инвариант коммита): сосед в сторону якоря,
// либо минимум два соседа всего, либо защищённый радиус вокруг якоря.
// Для заполнения разрывов действует более строгое правило стабильности:
// два соседа обязательны всегда.
func (s *PressureSystem) validPlacement(c spawnCandidate, pending map[hexmap.Hex]bool) bool {
	h := c.coord
	if h == hexmap.Anchor || s.index.Has(h) || pending[h] {
		return false
	}
	dist := h.Distance(hexmap.Anchor)
	if dist > s.index.ArenaRadius() {
		return false
	}

	neighborCount := 0
	anchorward := false
	for _, n := range h.AllPossibleNeighbors() {
		if !s.index.Has(n) && !pending[n] {
			continue
		}
		neighborCount++
		if n.Distance(hexmap.Anchor) < dist {
			anchorward = true
		}
	}

	if c.kind == candGapFill && neighborCount < 2 {
		return false
	}
	if dist <= s.theme.ProtectedRadius {
		return true
	}
	return anchorward || neighborCount >= 2
}

// assignColors раскрашивает принятых кандидатов. Новый пузырь не имеет права
// сам образовать матч: цвет перекатывается, пока компонента с ним остаётся
// меньше порога. Кандидат, для которого безопасного цвета нет, выпадает.
func (s *PressureSystem) assignColors(accepted []spawnCandidate) []spawnCandidate {
	n := s.theme.ColorCount()
	colored := make(map[hexmap.Hex]component.BubbleColor)
	out := accepted[:0]
	for _, c := range accepted {
		color, ok := s.rollSafeColor(c.coord, n, colored)
		if !ok {
			s.log.Debug("pressure candidate rejected", "coord", c.coord, "reason", "no safe color")
			continue
		}
		c.color = color
		colored[c.coord] = color
		out = append(out, c)
	}
	return out
}

// rollSafeColor пробует случайный цвет и перебирает палитру по кругу,
// пока не найдёт цвет, не образующий матча.
func (s *PressureSystem) rollSafeColor(h hexmap.Hex, palette int, colored map[hexmap.Hex]component.BubbleColor) (component.BubbleColor, bool) {
	first := s.rng.Intn(palette)
	for i := 0; i < palette; i++ {
		color := component.BubbleColor((first + i) % palette)
		if s.componentSizeWith(h, color, colored) < config.MatchMinSize {
			return color, true
		}
	}
	return component.ColorNone, false
}

// componentSizeWith считает размер одноцветной компоненты, как если бы в h
// стоял пузырь цвета color. Учитываются и живые пузыри, и ещё не
// закоммиченные раскрашенные кандидаты этой партии.
func (s *PressureSystem) componentSizeWith(h hexmap.Hex, color component.BubbleColor, colored map[hexmap.Hex]component.BubbleColor) int {
	colorAt := func(x hexmap.Hex) (component.BubbleColor, bool) {
		if c, ok := colored[x]; ok {
			return c, true
		}
		if id, ok := s.index.At(x); ok {
			if b := s.ecs.Bubbles[id]; b != nil {
				return b.EffectiveColor(), true
			}
		}
		return component.ColorNone, false
	}

	visited := map[hexmap.Hex]bool{h: true}
	queue := []hexmap.Hex{h}
	size := 1
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range current.AllPossibleNeighbors() {
			if visited[n] {
				continue
			}
			c, occupied := colorAt(n)
			if !occupied || c != color {
				continue
			}
			visited[n] = true
			queue = append(queue, n)
			size++
		}
	}
	return size
}

// assignMystery подменяет не больше одного обычного кандидата на сторону
// на mystery-вариант. Скрытый цвет уже брошен — вариант прячет его только
// от игрока.
func (s *PressureSystem) assignMystery(accepted []spawnCandidate) {
	for _, side := range types.Sides {
		if s.rng.Float64() >= s.theme.MysteryChance {
			continue
		}
		var idxs []int
		for i, c := range accepted {
			if c.side == side && c.variant == component.VariantNormal {
				idxs = append(idxs, i)
			}
		}
		if len(idxs) == 0 {
			continue
		}
		accepted[idxs[s.rng.Intn(len(idxs))]].variant = component.VariantMystery
	}
}

// commitBatch вставляет принятых кандидатов от центральной колонки наружу.
// Перед каждым отдельным коммитом кандидат перепроверяется против самого
// свежего состояния индекса: принятый на шаге валидации кандидат мог
// потерять опору, если более ранний коммит этой же партии не прошёл.
func (s *PressureSystem) commitBatch(accepted []spawnCandidate) []spawnCandidate {
	sort.SliceStable(accepted, func(i, j int) bool {
		ci, cj := accepted[i].coord.OffsetCol(), accepted[j].coord.OffsetCol()
		if pkgutils.Abs(ci) != pkgutils.Abs(cj) {
			return pkgutils.Abs(ci) < pkgutils.Abs(cj)
		}
		if ci != cj {
			return ci < cj
		}
		return accepted[i].coord.R < accepted[j].coord.R
	})

	committed := make([]spawnCandidate, 0, len(accepted))
	for _, c := range accepted {
		// Закоммиченные ранее уже в индексе, pending пуст.
		if !s.validPlacement(c, nil) {
			s.log.Debug("pressure candidate invalidated at commit", "coord", c.coord, "kind", c.kind)
			continue
		}
		b := &component.Bubble{Color: c.color, Variant: c.variant, Side: c.side}
		if _, err := s.index.Place(b, c.coord); err != nil {
			s.log.Debug("pressure commit refused", "coord", c.coord, "err", err)
			continue
		}
		committed = append(committed, c)
	}
	return committed
}

// postCommitSweep — последний рубеж самопочинки: закоммиченный пузырь без
// единого соседа вне защищённого радиуса немедленно удаляется. Логируется,
// но не фатально.
func (s *PressureSystem) postCommitSweep(committed []spawnCandidate) {
	for _, c := range committed {
		if c.coord.Distance(hexmap.Anchor) <= s.theme.ProtectedRadius {
			continue
		}
		isolated := true
		for _, n := range c.coord.AllPossibleNeighbors() {
			if s.index.Has(n) {
				isolated = false
				break
			}
		}
		if !isolated {
			continue
		}
		if id, ok := s.index.At(c.coord); ok {
			s.index.Remove(id)
			s.log.Warn("isolated pressure bubble removed", "coord", c.coord, "side", c.side)
		}
	}
}

// dangerWarnings рассылает предупреждение, когда коммит пересёк опасный ряд.
// Не больше одного предупреждения на сторону за цикл, с самым крайним рядом.
func (s *PressureSystem) dangerWarnings(committed []spawnCandidate) {
	for _, side := range types.Sides {
		sign := side.RowSign()
		worst := 0
		crossed := false
		for _, c := range committed {
			if c.side != side {
				continue
			}
			if sign*c.coord.R >= s.theme.DangerRow && sign*c.coord.R > sign*worst {
				worst = c.coord.R
				crossed = true
			}
		}
		if crossed {
			s.dispatcher.Dispatch(event.Event{
				Type: event.DangerZoneWarning,
				Data: event.DangerPayload{Side: side, Row: worst},
			})
		}
	}
}

// EmergencyRefill напрямую заполняет фиксированный безопасный паттерн вокруг
// якоря (кольца 1..EmergencyRefillRings), минуя фронтирную логику, и
// рассылает EmergencyRefill. Возвращает число добавленных пузырей.
func (s *PressureSystem) EmergencyRefill() int {
	count := s.populateSafePattern()
	s.log.Info("emergency refill", "added", count, "occupied", s.index.Len())
	s.dispatcher.Dispatch(event.Event{
		Type: event.EmergencyRefill,
		Data: event.RefillPayload{Count: count},
	})
	return count
}

// SeedInitialCluster заполняет стартовую гроздь тем же безопасным паттерном,
// что и аварийный рефилл, но без события.
func (s *PressureSystem) SeedInitialCluster() int {
	return s.populateSafePattern()
}

func (s *PressureSystem) populateSafePattern() int {
	count := 0
	palette := s.theme.ColorCount()
	for r := 1; r <= config.EmergencyRefillRings; r++ {
		for _, h := range hexmap.Ring(hexmap.Anchor, r) {
			if s.index.Has(h) {
				continue
			}
			color, ok := s.rollSafeColor(h, palette, nil)
			if !ok {
				continue
			}
			side := types.SideBottom
			if h.R < 0 || (h.R == 0 && h.Q < 0) {
				side = types.SideTop
			}
			b := &component.Bubble{Color: color, Variant: component.VariantNormal, Side: side}
			if _, err := s.index.Place(b, h); err != nil {
				s.log.Warn("refill placement refused", "coord", h, "err", err)
				continue
			}
			count++
		}
	}
	return count
}

func sortedCols(front map[int]hexmap.Hex) []int {
	cols := make([]int, 0, len(front))
	for c := range front {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	return cols
}
