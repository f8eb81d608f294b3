// internal/defs/types.go
package defs

import "go-bubble-arena/internal/config"

// ArenaThemeDefinition описывает тему арены: палитру и параметры давления.
// Темы загружаются из YAML; нулевые поля добиваются дефолтами из config.
type ArenaThemeDefinition struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// Colors — имена цветов палитры (5–6). Само ядро оперирует только
	// индексами; имена нужны внешним коллабораторам (рендер, UI).
	Colors []string `yaml:"colors"`

	// BaseSpawnInterval — стартовый интервал генератора давления, секунды.
	BaseSpawnInterval float64 `yaml:"base_spawn_interval"`
	// MinSpawnInterval — пол, ниже которого ускорение не опускает интервал.
	MinSpawnInterval float64 `yaml:"min_spawn_interval"`
	// SpawnAccelFactor умножает интервал после каждого срабатывания.
	SpawnAccelFactor float64 `yaml:"spawn_accel_factor"`

	// MysteryChance — шанс подменить один обычный кандидат на mystery,
	// на сторону за цикл.
	MysteryChance float64 `yaml:"mystery_chance"`

	// DangerRow — абсолютный номер ряда, после которого коммит вызывает
	// предупреждение об опасной зоне.
	DangerRow int `yaml:"danger_row"`
	// ArenaRadius — радиус арены в гексах; ячейки на этом радиусе считаются
	// прилегающими к стене.
	ArenaRadius int `yaml:"arena_radius"`
	// PopulationFloor — минимум живых пузырей; ниже него цикл давления
	// выполняет аварийный рефилл вместо обычного алгоритма.
	PopulationFloor int `yaml:"population_floor"`
	// ProtectedRadius — радиус вокруг якоря, внутри которого кандидаты
	// не обязаны иметь опору.
	ProtectedRadius int `yaml:"protected_radius"`
}

// ColorCount возвращает размер палитры темы.
func (d ArenaThemeDefinition) ColorCount() int {
	return len(d.Colors)
}

// withDefaults заполняет неуказанные поля значениями из config.
func (d ArenaThemeDefinition) withDefaults() ArenaThemeDefinition {
	if d.BaseSpawnInterval <= 0 {
		d.BaseSpawnInterval = config.DefaultBaseSpawnInterval
	}
	if d.MinSpawnInterval <= 0 {
		d.MinSpawnInterval = config.DefaultMinSpawnInterval
	}
	if d.SpawnAccelFactor <= 0 || d.SpawnAccelFactor >= 1 {
		d.SpawnAccelFactor = config.DefaultSpawnAccelFactor
	}
	if d.MysteryChance < 0 || d.MysteryChance > 1 {
		d.MysteryChance = config.DefaultMysteryChance
	}
	if d.DangerRow <= 0 {
		d.DangerRow = config.DefaultDangerRow
	}
	if d.ArenaRadius <= 0 {
		d.ArenaRadius = config.DefaultArenaRadius
	}
	if d.PopulationFloor <= 0 {
		d.PopulationFloor = config.DefaultPopulationFloor
	}
	if d.ProtectedRadius <= 0 {
		d.ProtectedRadius = config.DefaultProtectedRadius
	}
	return d
}
