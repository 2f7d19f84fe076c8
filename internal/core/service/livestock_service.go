package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fincatec/domain-store/internal/core/domain"
	"github.com/fincatec/domain-store/internal/core/ports"
)

// LivestockService manages the animals of a company and keeps Animal.Group
// and Group.Members in agreement.
type LivestockService struct {
	col      *Collections
	validate *inputValidator
	log      zerolog.Logger
}

var _ ports.LivestockService = (*LivestockService)(nil)

func NewLivestockService(col *Collections, log zerolog.Logger) *LivestockService {
	return &LivestockService{col: col, validate: newInputValidator(), log: log}
}

// CheckIDExists reports whether id is taken in actor's company.
func (s *LivestockService) CheckIDExists(ctx context.Context, actor domain.Actor, id string) (bool, error) {
	var exists bool
	err := s.col.View(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		animals, err := tx.Animals(companyID)
		if err != nil {
			return err
		}
		exists = indexOfAnimal(animals, strings.TrimSpace(id)) >= 0
		return nil
	})
	return exists, err
}

func (s *LivestockService) AddAnimal(ctx context.Context, actor domain.Actor, in ports.AddAnimalInput) (*domain.Animal, error) {
	animal, err := s.addAnimal(ctx, actor, in)
	observe("add_animal", err)
	return animal, err
}

func (s *LivestockService) addAnimal(ctx context.Context, actor domain.Actor, in ports.AddAnimalInput) (*domain.Animal, error) {
	in.Identificacion = strings.TrimSpace(in.Identificacion)
	in.Group = strings.TrimSpace(in.Group)
	if err := s.validate.check(in); err != nil {
		return nil, err
	}

	var animal domain.Animal
	err := s.col.Update(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		animals, err := tx.Animals(companyID)
		if err != nil {
			return err
		}
		if indexOfAnimal(animals, in.Identificacion) >= 0 {
			return fmt.Errorf("%w: animal %s already exists", domain.ErrDuplicateID, in.Identificacion)
		}

		foto := in.Foto
		if foto == "" {
			foto = domain.DefaultPhoto(in.Especie)
		}
		animal = domain.Animal{
			ID:                in.Identificacion,
			Identificacion:    in.Identificacion,
			Nombre:            strings.TrimSpace(in.Nombre),
			Especie:           strings.TrimSpace(in.Especie),
			Raza:              strings.TrimSpace(in.Raza),
			Sexo:              in.Sexo,
			FechaNacimiento:   in.FechaNacimiento,
			Peso:              in.Peso,
			Foto:              foto,
			InformacionMedica: domain.EmptyMedicalRecord(),
			CompanyID:         companyID,
			CreatedAt:         s.col.Now(),
			CreatedBy:         actor.Email,
		}
		animals = append(animals, animal)

		if in.Group != "" {
			groups, err := tx.Groups(companyID)
			if err != nil {
				return err
			}
			if indexOfGroup(groups, in.Group) < 0 {
				return fmt.Errorf("%w: group %s", domain.ErrNotFound, in.Group)
			}
			pastures, err := tx.Pastures(companyID)
			if err != nil {
				return err
			}
			before := headcounts(pastures, groups)
			placeAnimal(animals, groups, animal.ID, in.Group)
			if err := checkCapacity(pastures, groups, before); err != nil {
				return err
			}
			animal.Group = in.Group
			if err := tx.SetGroups(companyID, groups); err != nil {
				return err
			}
		}
		if err := tx.SetAnimals(companyID, animals); err != nil {
			return err
		}
		if in.Group != "" {
			if _, err := recomputeOccupancy(tx, companyID, s.log); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("company_id", animal.CompanyID).Str("animal_id", animal.ID).Msg("animal added")
	return &animal, nil
}

// UpdateAnimal merges patch into the animal. A change of group moves the
// animal between the groups' member lists in the same write.
func (s *LivestockService) UpdateAnimal(ctx context.Context, actor domain.Actor, id string, patch ports.AnimalPatch) (*domain.Animal, error) {
	animal, err := s.updateAnimal(ctx, actor, id, patch)
	observe("update_animal", err)
	return animal, err
}

func (s *LivestockService) updateAnimal(ctx context.Context, actor domain.Actor, id string, patch ports.AnimalPatch) (*domain.Animal, error) {
	if err := s.validate.check(patch); err != nil {
		return nil, err
	}

	var updated domain.Animal
	err := s.col.Update(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		animals, err := tx.Animals(companyID)
		if err != nil {
			return err
		}
		idx := indexOfAnimal(animals, id)
		if idx < 0 {
			return fmt.Errorf("%w: animal %s", domain.ErrNotFound, id)
		}

		a := &animals[idx]
		if patch.Nombre != nil {
			a.Nombre = strings.TrimSpace(*patch.Nombre)
		}
		if patch.Especie != nil {
			a.Especie = strings.TrimSpace(*patch.Especie)
		}
		if patch.Raza != nil {
			a.Raza = strings.TrimSpace(*patch.Raza)
		}
		if patch.Sexo != nil {
			a.Sexo = *patch.Sexo
		}
		if patch.FechaNacimiento != nil {
			a.FechaNacimiento = *patch.FechaNacimiento
		}
		if patch.Peso != nil {
			a.Peso = *patch.Peso
		}
		if patch.Foto != nil {
			a.Foto = *patch.Foto
		}
		a.UpdatedAt = stamp(s.col.Now())
		a.UpdatedBy = actor.Email

		moved := false
		if patch.Group != nil {
			next := strings.TrimSpace(*patch.Group)
			if next != a.Group {
				groups, err := tx.Groups(companyID)
				if err != nil {
					return err
				}
				if next != "" && indexOfGroup(groups, next) < 0 {
					return fmt.Errorf("%w: group %s", domain.ErrNotFound, next)
				}
				pastures, err := tx.Pastures(companyID)
				if err != nil {
					return err
				}
				before := headcounts(pastures, groups)
				placeAnimal(animals, groups, a.ID, next)
				if err := checkCapacity(pastures, groups, before); err != nil {
					return err
				}
				if err := tx.SetGroups(companyID, groups); err != nil {
					return err
				}
				moved = true
			}
		}

		updated = *a
		if err := tx.SetAnimals(companyID, animals); err != nil {
			return err
		}
		if moved {
			if _, err := recomputeOccupancy(tx, companyID, s.log); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("company_id", updated.CompanyID).Str("animal_id", updated.ID).Msg("animal updated")
	return &updated, nil
}

// UpdateMedicalInfo appends the patch's list entries to the medical record and
// replaces the scalar fields the patch sets.
func (s *LivestockService) UpdateMedicalInfo(ctx context.Context, actor domain.Actor, id string, patch ports.MedicalPatch) (*domain.Animal, error) {
	var updated domain.Animal
	err := s.col.Update(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		animals, err := tx.Animals(companyID)
		if err != nil {
			return err
		}
		idx := indexOfAnimal(animals, id)
		if idx < 0 {
			return fmt.Errorf("%w: animal %s", domain.ErrNotFound, id)
		}

		rec := &animals[idx].InformacionMedica
		rec.HistorialVacunas = append(rec.HistorialVacunas, patch.HistorialVacunas...)
		rec.HistorialEnfermedades = append(rec.HistorialEnfermedades, patch.HistorialEnfermedades...)
		rec.ProximasVacunas = append(rec.ProximasVacunas, patch.ProximasVacunas...)
		rec.TratamientosActivos = append(rec.TratamientosActivos, patch.TratamientosActivos...)
		if patch.ObservacionesVeterinario != nil {
			rec.ObservacionesVeterinario = *patch.ObservacionesVeterinario
		}
		if patch.FechaUltimaRevision != nil {
			rec.FechaUltimaRevision = *patch.FechaUltimaRevision
		}
		if patch.VeterinarioAsignado != nil {
			rec.VeterinarioAsignado = *patch.VeterinarioAsignado
		}
		rec.FechaUltimaActualizacion = stamp(s.col.Now())
		rec.ActualizadoPor = actor.Email

		updated = animals[idx]
		return tx.SetAnimals(companyID, animals)
	})
	observe("update_medical_info", err)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("company_id", updated.CompanyID).Str("animal_id", updated.ID).Msg("medical record updated")
	return &updated, nil
}

// DeleteAnimal removes the animal and drops it from every group it was in.
func (s *LivestockService) DeleteAnimal(ctx context.Context, actor domain.Actor, id string) error {
	var companyID string
	err := s.col.Update(ctx, func(tx *Tx) error {
		var err error
		companyID, err = requireCompany(tx, actor)
		if err != nil {
			return err
		}
		animals, err := tx.Animals(companyID)
		if err != nil {
			return err
		}
		idx := indexOfAnimal(animals, id)
		if idx < 0 {
			return fmt.Errorf("%w: animal %s", domain.ErrNotFound, id)
		}
		animals = append(animals[:idx:idx], animals[idx+1:]...)
		if err := tx.SetAnimals(companyID, animals); err != nil {
			return err
		}

		groups, err := tx.Groups(companyID)
		if err != nil {
			return err
		}
		cleaned := false
		for i := range groups {
			if groups[i].HasMember(id) {
				groups[i].Members = without(groups[i].Members, id)
				cleaned = true
			}
		}
		if !cleaned {
			return nil
		}
		if err := tx.SetGroups(companyID, groups); err != nil {
			return err
		}
		_, err = recomputeOccupancy(tx, companyID, s.log)
		return err
	})
	observe("delete_animal", err)
	if err != nil {
		return err
	}

	s.log.Info().Str("company_id", companyID).Str("animal_id", id).Msg("animal deleted")
	return nil
}

func (s *LivestockService) GetAnimal(ctx context.Context, actor domain.Actor, id string) (*domain.Animal, error) {
	var animal *domain.Animal
	err := s.col.View(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		animals, err := tx.Animals(companyID)
		if err != nil {
			return err
		}
		idx := indexOfAnimal(animals, id)
		if idx < 0 {
			return fmt.Errorf("%w: animal %s", domain.ErrNotFound, id)
		}
		animal = &animals[idx]
		return nil
	})
	return animal, err
}

func (s *LivestockService) ListAnimals(ctx context.Context, actor domain.Actor) ([]domain.Animal, error) {
	var animals []domain.Animal
	err := s.col.View(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		animals, err = tx.Animals(companyID)
		return err
	})
	return animals, err
}
