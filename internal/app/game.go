// internal/app/game.go
package app

import (
	"github.com/charmbracelet/log"

	"go-bubble-arena/internal/component"
	"go-bubble-arena/internal/config"
	"go-bubble-arena/internal/defs"
	"go-bubble-arena/internal/entity"
	"go-bubble-arena/internal/event"
	"go-bubble-arena/internal/schedule"
	"go-bubble-arena/internal/system"
	"go-bubble-arena/internal/types"
	"go-bubble-arena/internal/utils"
	"go-bubble-arena/pkg/hexmap"
)

// ProjectileContact — событие контакта снаряда от внешней баллистики.
// Ядро не знает о траекториях: только точка контакта и направление полёта.
type ProjectileContact struct {
	X, Y       float64
	DirX, DirY float64
	Color      component.BubbleColor
	Variant    component.BubbleVariant
	Side       types.Side
}

// ContactOutcome — итог одного устоявшегося тика после контакта.
type ContactOutcome struct {
	ID      types.EntityID
	Coord   hexmap.Hex
	Match   system.MatchResult
	Orphans []types.EntityID
}

// SideStats — сводка по стороне для внешних индикаторов опасности.
type SideStats struct {
	Population int
	DeepestRow int
}

// Game держит состояние матча и связывает системы воедино. Вся мутация
// сетки (прилипание, матч, аудит, коммит давления) выполняется синхронно
// внутри одного логического шага; параллелизма нет, блокировки не нужны.
type Game struct {
	ECS          *entity.ECS
	Dispatcher   *event.Dispatcher
	Scheduler    *schedule.Scheduler
	Attachment   *system.AttachmentSystem
	Match        *system.MatchSystem
	Connectivity *system.ConnectivitySystem
	Pressure     *system.PressureSystem
	Rng          *utils.PRNGService
	Theme        defs.ArenaThemeDefinition
	Log          *log.Logger

	gameTime float64
}

// NewGame initializes a new match. Difficulty comes in through the theme
// definition and the seed — nothing is persisted in module-level state.
func NewGame(theme defs.ArenaThemeDefinition, seed int64, logger *log.Logger) *Game {
	if logger == nil {
		logger = log.Default()
	}

	ecs := entity.NewECS()
	dispatcher := event.NewDispatcher()
	sched := schedule.NewScheduler()
	rng := utils.NewPRNGService(seed)
	layout := hexmap.Layout{
		HexSize: config.HexSize,
		OriginX: float64(config.ScreenWidth) / 2,
		OriginY: float64(config.ScreenHeight) / 2,
	}

	g := &Game{
		ECS:        ecs,
		Dispatcher: dispatcher,
		Scheduler:  sched,
		Rng:        rng,
		Theme:      theme,
		Log:        logger,
	}
	g.Attachment = system.NewAttachmentSystem(ecs, dispatcher, layout, theme.ArenaRadius)
	g.Match = system.NewMatchSystem(ecs, g.Attachment, dispatcher)
	g.Connectivity = system.NewConnectivitySystem(ecs, g.Attachment, dispatcher)
	g.Pressure = system.NewPressureSystem(ecs, g.Attachment, dispatcher, sched, rng, theme, logger)

	seeded := g.Pressure.SeedInitialCluster()
	logger.Info("match started", "theme", theme.ID, "seed", seed, "seeded", seeded)
	return g
}

// Update продвигает игровое время. Единственные точки возобновления —
// созревшие задачи планировщика (циклы давления); они выполняются здесь же,
// синхронно, и не могут вклиниться в идущую обработку контакта.
func (g *Game) Update(deltaTime float64) {
	if deltaTime > config.MaxDeltaTime {
		deltaTime = config.MaxDeltaTime
	}
	g.gameTime += deltaTime
	g.ECS.GameTime = g.gameTime
	g.Scheduler.Advance(deltaTime)
}

// HandleContact проводит контакт снаряда через полный конвейер мутации:
// прилипание → разрешение матча → аудит связности. Только после аудита
// сетка считается устоявшейся. Контакт, который не удалось разрешить в
// ячейку, отбрасывается молча — это не ошибка.
func (g *Game) HandleContact(c ProjectileContact) (ContactOutcome, bool) {
	color := c.Color
	if color == component.ColorNone {
		color = component.BubbleColor(g.Rng.Intn(g.Theme.ColorCount()))
	}
	b := &component.Bubble{Color: color, Variant: c.Variant, Side: c.Side}

	id, coord, ok := g.Attachment.Attach(b, c.X, c.Y, c.DirX, c.DirY)
	if !ok {
		g.Log.Debug("contact rejected", "x", c.X, "y", c.Y)
		return ContactOutcome{}, false
	}

	outcome := ContactOutcome{ID: id, Coord: coord}
	outcome.Match = g.Match.Resolve(coord)
	outcome.Orphans = g.Connectivity.Audit()
	return outcome, true
}

// SetShotInFlight транслирует внешний сигнал "снаряд в полёте".
func (g *Game) SetShotInFlight(active bool) {
	g.Pressure.SetShotInFlight(active)
}

// SetImmunity транслирует внешний сигнал окна неуязвимости.
func (g *Game) SetImmunity(active bool) {
	g.Pressure.SetImmunity(active)
}

// GameTime возвращает накопленное игровое время, секунды.
func (g *Game) GameTime() float64 {
	return g.gameTime
}

// SideStats собирает население и самый глубокий ряд каждой стороны.
// Сторона считается геометрически: по знаку ряда относительно якоря.
func (g *Game) SideStats() map[types.Side]SideStats {
	stats := map[types.Side]SideStats{
		types.SideTop:    {},
		types.SideBottom: {},
	}
	g.Attachment.Each(func(h hexmap.Hex, _ types.EntityID) {
		side := types.SideBottom
		if h.R < 0 {
			side = types.SideTop
		}
		st := stats[side]
		st.Population++
		if side.RowSign()*h.R > side.RowSign()*st.DeepestRow {
			st.DeepestRow = h.R
		}
		stats[side] = st
	})
	return stats
}

// Reset начинает матч заново с новым сидом, сохраняя тему. Старое состояние
// просто отбрасывается: всё живёт в памяти и умирает вместе с матчем.
func (g *Game) Reset(seed int64) {
	g.Pressure.Stop()
	fresh := NewGame(g.Theme, seed, g.Log)
	*g = *fresh
}
