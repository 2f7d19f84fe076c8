package ports

import (
	"context"

	"github.com/fincatec/domain-store/internal/core/domain"
)

// AddAnimalInput carries the data needed to register an animal.
type AddAnimalInput struct {
	Identificacion  string `validate:"required"`
	Nombre          string
	Especie         string `validate:"required"`
	Raza            string
	Sexo            string  `validate:"omitempty,oneof=Macho Hembra"`
	FechaNacimiento string  `validate:"omitempty,datetime=2006-01-02"`
	Peso            float64 `validate:"gte=0"`
	Group           string
	Foto            string
}

// AnimalPatch is a shallow merge: nil fields are left untouched. Setting
// Group to "" removes the animal from its group.
type AnimalPatch struct {
	Nombre          *string
	Especie         *string
	Raza            *string
	Sexo            *string  `validate:"omitempty,oneof=Macho Hembra"`
	FechaNacimiento *string  `validate:"omitempty,datetime=2006-01-02"`
	Peso            *float64 `validate:"omitempty,gte=0"`
	Group           *string
	Foto            *string
}

// MedicalPatch extends an animal's medical record. List entries are appended;
// non-nil scalar fields replace the stored value.
type MedicalPatch struct {
	HistorialVacunas         []domain.VaccineEntry
	HistorialEnfermedades    []domain.DiseaseEntry
	ProximasVacunas          []domain.VaccineEntry
	TratamientosActivos      []domain.TreatmentEntry
	ObservacionesVeterinario *string
	FechaUltimaRevision      *string
	VeterinarioAsignado      *string
}

// LivestockService manages the animals of the caller's company.
type LivestockService interface {
	CheckIDExists(ctx context.Context, actor domain.Actor, id string) (bool, error)
	AddAnimal(ctx context.Context, actor domain.Actor, in AddAnimalInput) (*domain.Animal, error)
	UpdateAnimal(ctx context.Context, actor domain.Actor, id string, patch AnimalPatch) (*domain.Animal, error)
	UpdateMedicalInfo(ctx context.Context, actor domain.Actor, id string, patch MedicalPatch) (*domain.Animal, error)
	DeleteAnimal(ctx context.Context, actor domain.Actor, id string) error
	GetAnimal(ctx context.Context, actor domain.Actor, id string) (*domain.Animal, error)
	ListAnimals(ctx context.Context, actor domain.Actor) ([]domain.Animal, error)
}
