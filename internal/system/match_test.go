// internal/system/match_test.go
package system

import (
	"testing"

	"go-bubble-arena/internal/component"
	"go-bubble-arena/internal/event"
	"go-bubble-arena/internal/types"
	"go-bubble-arena/pkg/hexmap"
)

// Три взаимно соседних одноцветных пузыря — матч размера 3, все лопаются.
func TestThreeAdjacentSameColorPop(t *testing.T) {
	r := newRig(t, 1, testTheme())
	a := hexmap.Hex{Q: 1, R: 0}
	b := hexmap.Hex{Q: 0, R: 1}
	c := hexmap.Hex{Q: 1, R: 1}
	idA := r.place(t, a, 2)
	idB := r.place(t, b, 2)
	idC := r.place(t, c, 2)

	res := r.match.Resolve(c)
	if res.Size != 3 {
		t.Fatalf("match size = %d, want 3", res.Size)
	}
	popped := map[types.EntityID]bool{}
	for _, id := range res.Popped {
		popped[id] = true
	}
	for _, id := range []types.EntityID{idA, idB, idC} {
		if !popped[id] {
			t.Errorf("entity %d not reported popped", id)
		}
	}
	for _, h := range []hexmap.Hex{a, b, c} {
		if r.index.Has(h) {
			t.Errorf("coordinate %v still occupied after pop", h)
		}
	}
	if got := r.events.ofType(event.MatchResolved); len(got) != 1 {
		t.Fatalf("got %d MatchResolved events, want 1", len(got))
	}
}

// Компонента из двух — не матч и не ошибка.
func TestPairIsNoMatch(t *testing.T) {
	r := newRig(t, 1, testTheme())
	a := hexmap.Hex{Q: 1, R: 0}
	b := hexmap.Hex{Q: 2, R: 0}
	r.place(t, a, 4)
	r.place(t, b, 4)

	res := r.match.Resolve(b)
	if res.Size != 0 || len(res.Popped) != 0 {
		t.Fatalf("pair produced match result %+v", res)
	}
	if !r.index.Has(a) || !r.index.Has(b) {
		t.Fatal("no-match must not mutate the grid")
	}
	if got := r.events.ofType(event.MatchResolved); len(got) != 0 {
		t.Fatalf("no-match dispatched %d MatchResolved events", len(got))
	}
}

// Разные цвета обрывают обход: лопается только одноцветная компонента.
func TestDifferentColorBlocksFlood(t *testing.T) {
	r := newRig(t, 1, testTheme())
	r.place(t, hexmap.Hex{Q: 1, R: 0}, 0)
	r.place(t, hexmap.Hex{Q: 2, R: 0}, 1) // другой цвет посередине
	r.place(t, hexmap.Hex{Q: 3, R: 0}, 0)
	r.place(t, hexmap.Hex{Q: 4, R: 0}, 0)

	res := r.match.Resolve(hexmap.Hex{Q: 1, R: 0})
	if res.Size != 0 {
		t.Fatalf("blocked flood produced size %d, want 0", res.Size)
	}
}

// Mystery участвует в матче по эффективному (скрытому) цвету и
// раскрывается в payload; gem считается.
func TestVariantsInMatch(t *testing.T) {
	r := newRig(t, 1, testTheme())
	a := hexmap.Hex{Q: 1, R: 0}
	b := hexmap.Hex{Q: 2, R: 0}
	c := hexmap.Hex{Q: 3, R: 0}
	idA := r.place(t, a, 3)
	idMystery, err := r.index.Place(&component.Bubble{Color: 3, Variant: component.VariantMystery}, b)
	if err != nil {
		t.Fatal(err)
	}
	idGem, err := r.index.Place(&component.Bubble{Color: 3, Variant: component.VariantGem}, c)
	if err != nil {
		t.Fatal(err)
	}

	res := r.match.Resolve(a)
	if res.Size != 3 {
		t.Fatalf("match size = %d, want 3", res.Size)
	}
	if res.Gems != 1 {
		t.Fatalf("gems = %d, want 1", res.Gems)
	}
	if revealed, ok := res.Revealed[idMystery]; !ok || revealed != 3 {
		t.Fatalf("mystery %d not revealed correctly: %v", idMystery, res.Revealed)
	}
	_ = idA
	_ = idGem
}

// Матч против пустой ячейки или пустой сетки — валидный no-op.
func TestResolveEmptyGrid(t *testing.T) {
	r := newRig(t, 1, testTheme())
	res := r.match.Resolve(hexmap.Hex{Q: 1, R: 0})
	if res.Size != 0 || len(res.Popped) != 0 {
		t.Fatalf("empty grid produced %+v", res)
	}
}
