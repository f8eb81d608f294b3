// internal/entity/ecs.go
package entity

import (
	"go-bubble-arena/internal/component"
	"go-bubble-arena/internal/types"
)

type ECS struct {
	GameTime float64
	NextID   types.EntityID
	Bubbles  map[types.EntityID]*component.Bubble
}

func NewECS() *ECS {
	return &ECS{
		NextID:  1,
		Bubbles: make(map[types.EntityID]*component.Bubble),
	}
}

func (ecs *ECS) NewEntity() types.EntityID {
	id := ecs.NextID
	ecs.NextID++
	return id
}
