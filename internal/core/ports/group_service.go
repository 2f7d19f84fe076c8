package ports

import (
	"context"

	"github.com/fincatec/domain-store/internal/core/domain"
)

// AddGroupInput carries the data needed to create a grazing group.
type AddGroupInput struct {
	Codigo       string `validate:"required"`
	Nombre       string `validate:"required"`
	Especie      string
	Objetivo     string
	Foto         string
	Alimentacion domain.FeedingPlan
	Members      []string
}

// GroupPatch is a shallow merge: nil fields are left untouched. A non-nil
// Members replaces the whole membership.
type GroupPatch struct {
	Nombre       *string
	Especie      *string
	Objetivo     *string
	Foto         *string
	Alimentacion *domain.FeedingPlan
	Members      *[]string
}

// GroupService manages grazing groups and their membership.
type GroupService interface {
	GroupIDExists(ctx context.Context, actor domain.Actor, id string) (bool, error)
	AddGroup(ctx context.Context, actor domain.Actor, in AddGroupInput) (*domain.Group, error)
	UpdateGroup(ctx context.Context, actor domain.Actor, id string, patch GroupPatch) (*domain.Group, error)
	DeleteGroup(ctx context.Context, actor domain.Actor, id string) error
	GetGroup(ctx context.Context, actor domain.Actor, id string) (*domain.Group, error)
	ListGroups(ctx context.Context, actor domain.Actor) ([]domain.Group, error)
	FeedingHistory(ctx context.Context, actor domain.Actor, groupID string) ([]domain.FeedingSnapshot, error)
}
