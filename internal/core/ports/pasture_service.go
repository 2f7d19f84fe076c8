package ports

import (
	"context"

	"github.com/fincatec/domain-store/internal/core/domain"
)

// AddPastureInput carries the data needed to register a pasture.
type AddPastureInput struct {
	Nombre    string `validate:"required"`
	Capacidad int    `validate:"gt=0"`
	Provincia string
	Canton    string
	Direccion string
	Estado    string `validate:"required,oneof=Excelente Buena Decente Decadente"`
	Foto      string
}

// PasturePatch is a shallow merge: nil fields are left untouched.
type PasturePatch struct {
	Nombre    *string
	Capacidad *int `validate:"omitempty,gt=0"`
	Provincia *string
	Canton    *string
	Direccion *string
	Estado    *string `validate:"omitempty,oneof=Excelente Buena Decente Decadente"`
	Foto      *string
}

// PastureService manages pastures, group assignment and occupancy.
type PastureService interface {
	AddPasture(ctx context.Context, actor domain.Actor, in AddPastureInput) (*domain.Pasture, error)
	UpdatePasture(ctx context.Context, actor domain.Actor, id string, patch PasturePatch) (*domain.Pasture, error)
	DeletePasture(ctx context.Context, actor domain.Actor, id string) error
	GetPasture(ctx context.Context, actor domain.Actor, id string) (*domain.Pasture, error)
	ListPastures(ctx context.Context, actor domain.Actor) ([]domain.Pasture, error)
	AssignGroup(ctx context.Context, actor domain.Actor, pastureID, groupID string) (*domain.Pasture, error)
	RemoveGroup(ctx context.Context, actor domain.Actor, pastureID, groupID string) (*domain.Pasture, error)
	RecalculateOccupancy(ctx context.Context, actor domain.Actor, pastureID string) (*domain.Pasture, error)
	SyncAllOccupancies(ctx context.Context, actor domain.Actor) (int, error)
	SyncEveryCompany(ctx context.Context) (int, error)
}
