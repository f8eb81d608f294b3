// internal/component/bubble.go
package component

import (
	"go-bubble-arena/internal/types"
)

// BubbleColor индексирует цвет в палитре текущей темы арены (5–6 цветов).
type BubbleColor int

// ColorNone marks a bubble whose color has not been assigned yet.
const ColorNone BubbleColor = -1

// BubbleVariant — вариант пузыря. Дискриминант размеченного объединения:
// везде, где вариант имеет значение, он матчится исчерпывающим switch.
type BubbleVariant int

const (
	VariantNormal BubbleVariant = iota
	VariantMystery
	VariantGem
)

func (v BubbleVariant) String() string {
	switch v {
	case VariantNormal:
		return "normal"
	case VariantMystery:
		return "mystery"
	case VariantGem:
		return "gem"
	}
	return "unknown"
}

// Bubble — пузырь, занимающий ровно одну ячейку сетки. Сетка хранит только
// отображения координата→ID и ID→состояние, никаких графов ссылок.
type Bubble struct {
	Color   BubbleColor
	Variant BubbleVariant
	Side    types.Side
	Alive   bool
}

// EffectiveColor is the color match resolution compares on. A mystery
// bubble hides its rolled color from the player, not from the grid; a gem
// carrier matches like a normal bubble of its color.
func (b *Bubble) EffectiveColor() BubbleColor {
	switch b.Variant {
	case VariantNormal, VariantMystery, VariantGem:
		return b.Color
	}
	return ColorNone
}
