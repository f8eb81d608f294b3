// pkg/hexmap/layout.go
package hexmap

// Layout привязывает гексагональную сетку к пиксельным координатам арены:
// фиксированный размер ячейки и пиксельный центр (origin). Ориентация
// pointy-top. Сам Layout неизменяем и не имеет побочных эффектов.
type Layout struct {
	HexSize float64
	OriginX float64
	OriginY float64
}

// ToPixel конвертирует гекс в пиксельные координаты центра его ячейки.
func (l Layout) ToPixel(h Hex) (x, y float64) {
	x = l.HexSize*(Sqrt3*float64(h.Q)+Sqrt3/2*float64(h.R)) + l.OriginX
	y = l.HexSize*(3.0/2.0*float64(h.R)) + l.OriginY
	return
}

// ToHex конвертирует пиксельные координаты в гекс. Для точек строго внутри
// шестиугольной границы ячейки ToHex и ToPixel — взаимно обратные.
func (l Layout) ToHex(x, y float64) Hex {
	x -= l.OriginX
	y -= l.OriginY
	q := (Sqrt3/3*x - 1.0/3*y) / l.HexSize
	r := (2.0 / 3 * y) / l.HexSize
	return axialRound(q, r)
}
