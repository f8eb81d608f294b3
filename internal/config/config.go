// internal/config/config.go
package config

const (
	ScreenWidth  = 1200
	ScreenHeight = 900
	HexSize      = 19.0

	// MatchMinSize — минимальный размер компоненты одного цвета для попа.
	MatchMinSize = 3

	// AttachSearchRadius bounds the neighborhood searched around a
	// projectile's contact cell when snapping it to the grid.
	AttachSearchRadius = 2

	// MaxDeltaTime clamps a single update step so a stalled frame cannot
	// fire a burst of pressure cycles at once.
	MaxDeltaTime = 0.06

	// MaxBubbles — жёсткий потолок занятых ячеек; выше него генератор
	// давления пропускает циклы вместо того, чтобы переполнять арену.
	MaxBubbles = 400

	// ShotRetryDelay is how long a pressure cycle waits before re-checking
	// an active shot-in-flight signal. Delays the cycle, never skips it.
	ShotRetryDelay = 0.25

	// EmergencyRefillRings — кольца вокруг якоря, заполняемые аварийным
	// рефиллом. Фиксированный паттерн, не зависит от темы арены.
	EmergencyRefillRings = 2
)

// Defaults used when a theme definition leaves a field unset.
const (
	DefaultBaseSpawnInterval = 8.0
	DefaultMinSpawnInterval  = 2.5
	DefaultSpawnAccelFactor  = 0.92
	DefaultMysteryChance     = 0.15
	DefaultDangerRow         = 7
	DefaultArenaRadius       = 9
	DefaultPopulationFloor   = 10
	DefaultProtectedRadius   = 2
)
