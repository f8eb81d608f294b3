// internal/system/testutil_test.go
package system

import (
	"io"
	"testing"

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
)

func testTheme() defs.ArenaThemeDefinition {
	return defs.ArenaThemeDefinition{
		ID:                "test",
		Colors:            []string{"red", "yellow", "green", "blue", "purple"},
		BaseSpawnInterval: 1.0,
		MinSpawnInterval:  0.25,
		SpawnAccelFactor:  0.5,
		MysteryChance:     0, // детерминизм в тестах
		DangerRow:         5,
		ArenaRadius:       9,
		PopulationFloor:   10,
		ProtectedRadius:   2,
	}
}

type rig struct {
	ecs        *entity.ECS
	dispatcher *event.Dispatcher
	sched      *schedule.Scheduler
	index      *AttachmentSystem
	match      *MatchSystem
	conn       *ConnectivitySystem
	pressure   *PressureSystem
	theme      defs.ArenaThemeDefinition
	events     *eventRecorder
}

// eventRecorder копит все события в порядке рассылки.
type eventRecorder struct {
	events []event.Event
}

func (r *eventRecorder) OnEvent(e event.Event) {
	r.events = append(r.events, e)
}

func (r *eventRecorder) ofType(t event.EventType) []event.Event {
	var out []event.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func newRig(t *testing.T, seed int64, theme defs.ArenaThemeDefinition) *rig {
	t.Helper()
	ecs := entity.NewECS()
	dispatcher := event.NewDispatcher()
	sched := schedule.NewScheduler()
	layout := hexmap.Layout{
		HexSize: config.HexSize,
		OriginX: float64(config.ScreenWidth) / 2,
		OriginY: float64(config.ScreenHeight) / 2,
	}
	index := NewAttachmentSystem(ecs, dispatcher, layout, theme.ArenaRadius)
	logger := log.New(io.Discard)

	r := &rig{
		ecs:        ecs,
		dispatcher: dispatcher,
		sched:      sched,
		index:      index,
		match:      NewMatchSystem(ecs, index, dispatcher),
		conn:       NewConnectivitySystem(ecs, index, dispatcher),
		pressure:   NewPressureSystem(ecs, index, dispatcher, sched, utils.NewPRNGService(seed), theme, logger),
		theme:      theme,
		events:     &eventRecorder{},
	}
	for _, et := range []event.EventType{
		event.BubbleAttached, event.MatchResolved, event.BubblesOrphaned,
		event.DangerZoneWarning, event.RowSpawned, event.EmergencyRefill,
	} {
		dispatcher.Subscribe(et, r.events)
	}
	return r
}

// place вставляет обычный пузырь и падает при ошибке.
func (r *rig) place(t *testing.T, h hexmap.Hex, color component.BubbleColor) types.EntityID {
	t.Helper()
	side := types.SideBottom
	if h.R < 0 {
		side = types.SideTop
	}
	id, err := r.index.Place(&component.Bubble{Color: color, Variant: component.VariantNormal, Side: side}, h)
	if err != nil {
		t.Fatalf("place %v: %v", h, err)
	}
	return id
}

// occupiedSet снимает слепок занятых координат.
func (r *rig) occupiedSet() map[hexmap.Hex]bool {
	set := make(map[hexmap.Hex]bool)
	r.index.Each(func(h hexmap.Hex, _ types.EntityID) {
		set[h] = true
	})
	return set
}

// checkGridInvariants проверяет базовые инварианты устоявшейся сетки.
func (r *rig) checkGridInvariants(t *testing.T) {
	t.Helper()
	seen := make(map[hexmap.Hex]types.EntityID)
	r.index.Each(func(h hexmap.Hex, id types.EntityID) {
		if h.Q+h.R+h.S() != 0 {
			t.Errorf("coordinate %v violates q+r+s=0", h)
		}
		if other, dup := seen[h]; dup {
			t.Errorf("coordinate %v occupied by both %d and %d", h, other, id)
		}
		seen[h] = id
		back, ok := r.index.CoordOf(id)
		if !ok || back != h {
			t.Errorf("entity %d: reverse mapping %v, want %v", id, back, h)
		}
		b := r.ecs.Bubbles[id]
		if b == nil || !b.Alive {
			t.Errorf("entity %d at %v is not a live bubble", id, h)
		}
	})
}
