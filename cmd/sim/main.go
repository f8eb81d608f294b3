// cmd/sim/main.go
package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"go-bubble-arena/internal/app"
	"go-bubble-arena/internal/component"
	"go-bubble-arena/internal/defs"
	"go-bubble-arena/internal/event"
	"go-bubble-arena/internal/types"
	"go-bubble-arena/internal/utils"
	"go-bubble-arena/pkg/hexmap"
)

var (
	flagSeed    int64
	flagSeconds float64
	flagTheme   string
	flagThemes  string
	flagShotGap float64
	flagDebug   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bubblesim",
		Short: "Headless simulation of the hex bubble arena core",
		Long: "bubblesim runs a deterministic scripted match against the gameplay core:\n" +
			"two virtual launchers fire colored projectiles at the cluster while the\n" +
			"pressure generator escalates, and every core event is logged.",
		RunE: runSim,
	}
	rootCmd.Flags().Int64Var(&flagSeed, "seed", 1, "PRNG seed (0 = time-based)")
	rootCmd.Flags().Float64Var(&flagSeconds, "seconds", 120, "simulated match duration")
	rootCmd.Flags().StringVar(&flagTheme, "theme", "classic", "arena theme id")
	rootCmd.Flags().StringVar(&flagThemes, "themes-file", "", "optional YAML file with theme definitions")
	rootCmd.Flags().Float64Var(&flagShotGap, "shot-gap", 1.4, "seconds between scripted shots")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "log rejected candidates and repairs")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// eventLogger — подписчик, печатающий каждое событие ядра.
type eventLogger struct {
	log *log.Logger
}

func (l *eventLogger) OnEvent(e event.Event) {
	switch data := e.Data.(type) {
	case event.AttachedPayload:
		l.log.Info("attached", "id", data.ID, "coord", data.Coord)
	case event.MatchPayload:
		l.log.Info("match", "size", data.Size, "origin", data.Origin, "gems", data.Gems)
	case event.OrphanedPayload:
		l.log.Info("orphaned", "count", len(data.Dropped))
	case event.DangerPayload:
		l.log.Warn("danger zone", "side", data.Side, "row", data.Row)
	case event.RowSpawnedPayload:
		l.log.Info("row spawned", "committed", data.Committed)
	case event.RefillPayload:
		l.log.Warn("emergency refill", "count", data.Count)
	default:
		l.log.Info(string(e.Type))
	}
}

func runSim(cmd *cobra.Command, args []string) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "bubblesim",
	})
	if flagDebug {
		logger.SetLevel(log.DebugLevel)
	}
	if flagSeed == 0 {
		flagSeed = time.Now().UnixNano()
	}

	if err := defs.LoadThemeDefinitions(flagThemes); err != nil {
		return err
	}
	theme, err := defs.Theme(flagTheme)
	if err != nil {
		return err
	}

	game := app.NewGame(theme, flagSeed, logger)
	sink := &eventLogger{log: logger}
	for _, t := range []event.EventType{
		event.BubbleAttached, event.MatchResolved, event.BubblesOrphaned,
		event.DangerZoneWarning, event.RowSpawned, event.EmergencyRefill,
	} {
		game.Dispatcher.Subscribe(t, sink)
	}

	game.Pressure.Start()

	// Отдельный генератор для скрипта стрельбы, чтобы выстрелы не влияли
	// на воспроизводимость самого ядра.
	script := utils.NewPRNGService(flagSeed + 1)

	const dt = 1.0 / 60.0
	nextShot := flagShotGap
	shots, landed := 0, 0
	for t := 0.0; t < flagSeconds; t += dt {
		game.Update(dt)
		if t >= nextShot {
			nextShot += flagShotGap
			shots++
			if fireScriptedShot(game, script) {
				landed++
			}
		}
	}

	stats := game.SideStats()
	top, bottom := stats[types.SideTop], stats[types.SideBottom]
	logger.Info("match finished",
		"time", fmt.Sprintf("%.0fs", flagSeconds),
		"shots", shots, "landed", landed,
		"occupied", game.Attachment.Len(),
		"top_pop", top.Population, "top_row", top.DeepestRow,
		"bottom_pop", bottom.Population, "bottom_row", bottom.DeepestRow,
		"interval", fmt.Sprintf("%.2fs", game.Pressure.Interval()),
	)
	return nil
}

// fireScriptedShot целится в случайную занятую ячейку со стороны её
// лаунчера и проводит контакт через ядро. Цвета взвешены в пользу начала
// палитры — так скрипт чаще собирает матчи, как сделал бы игрок.
func fireScriptedShot(game *app.Game, script *utils.PRNGService) bool {
	target, ok := randomOccupied(game, script)
	if !ok {
		return false
	}

	side := types.SideTop
	if target.R >= 0 {
		side = types.SideBottom
	}

	weights := make([]int, game.Theme.ColorCount())
	for i := range weights {
		weights[i] = game.Theme.ColorCount() - i
	}
	color := component.BubbleColor(script.ChooseWeighted(weights))

	variant := component.VariantNormal
	if script.Float64() < 0.05 {
		variant = component.VariantGem
	}

	// Контакт чуть снаружи целевой ячейки, полёт — к центру арены.
	layout := game.Attachment.Layout()
	tx, ty := layout.ToPixel(target)
	ox, oy := layout.ToPixel(hexmap.Anchor)
	dx, dy := ox-tx, oy-ty
	l := math.Hypot(dx, dy)
	if l == 0 {
		return false
	}
	dx, dy = dx/l, dy/l
	px := tx - dx*layout.HexSize*1.2
	py := ty - dy*layout.HexSize*1.2

	game.SetShotInFlight(true)
	_, landed := game.HandleContact(app.ProjectileContact{
		X: px, Y: py, DirX: dx, DirY: dy,
		Color: color, Variant: variant, Side: side,
	})
	game.SetShotInFlight(false)
	return landed
}

func randomOccupied(game *app.Game, script *utils.PRNGService) (hexmap.Hex, bool) {
	n := game.Attachment.Len()
	if n == 0 {
		return hexmap.Hex{}, false
	}
	coords := make([]hexmap.Hex, 0, n)
	game.Attachment.Each(func(h hexmap.Hex, _ types.EntityID) {
		coords = append(coords, h)
	})
	// Порядок обхода карты случаен; сортируем, чтобы выбор зависел только
	// от сида скрипта.
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].R != coords[j].R {
			return coords[i].R < coords[j].R
		}
		return coords[i].Q < coords[j].Q
	})
	return coords[script.Intn(n)], true
}
