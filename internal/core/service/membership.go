package service

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fincatec/domain-store/internal/core/domain"
)

// placeAnimal makes groupID the only group listing animalID and points the
// animal back at it. An empty groupID leaves the animal in no group. Both
// slices are modified in place.
func placeAnimal(animals []domain.Animal, groups []domain.Group, animalID, groupID string) {
	if i := indexOfAnimal(animals, animalID); i >= 0 {
		animals[i].Group = groupID
	}
	for i := range groups {
		if groups[i].ID == groupID {
			groups[i].Members = withUnique(groups[i].Members, animalID)
		} else if groups[i].HasMember(animalID) {
			groups[i].Members = without(groups[i].Members, animalID)
		}
	}
}

// missingAnimals returns the ids in ids that name no animal.
func missingAnimals(animals []domain.Animal, ids []string) []string {
	var missing []string
	for _, id := range ids {
		if indexOfAnimal(animals, id) < 0 {
			missing = append(missing, id)
		}
	}
	return missing
}

// headcounts returns the ground-truth occupancy of every pasture by id.
func headcounts(pastures []domain.Pasture, groups []domain.Group) map[string]int {
	out := make(map[string]int, len(pastures))
	for _, p := range pastures {
		out[p.ID] = domain.Occupancy(p, groups)
	}
	return out
}

// checkCapacity fails when a pasture gained animals since before was taken
// and now holds more than its capacity. Pastures that shrank or kept their
// headcount pass even if they were already over.
func checkCapacity(pastures []domain.Pasture, groups []domain.Group, before map[string]int) error {
	for _, p := range pastures {
		was := before[p.ID]
		occ := domain.Occupancy(p, groups)
		if occ <= was || occ <= p.Capacidad {
			continue
		}
		return fmt.Errorf("%w: pasture %s has room for %d animals, needs %d",
			domain.ErrCapacityExceeded, p.Nombre, max(p.Capacidad-was, 0), occ-was)
	}
	return nil
}

// recomputeOccupancy sets every pasture of companyID to the headcount of its
// assigned groups and writes the pastures back only if a value changed. It
// returns the ids of the pastures that changed.
func recomputeOccupancy(tx *Tx, companyID string, log zerolog.Logger) ([]string, error) {
	pastures, err := tx.Pastures(companyID)
	if err != nil {
		return nil, err
	}
	if len(pastures) == 0 {
		return nil, nil
	}
	groups, err := tx.Groups(companyID)
	if err != nil {
		return nil, err
	}

	var changed []string
	for i := range pastures {
		occ := domain.Occupancy(pastures[i], groups)
		if occ == pastures[i].OcupacionActual {
			continue
		}
		pastures[i].OcupacionActual = occ
		changed = append(changed, pastures[i].ID)
		if occ > pastures[i].Capacidad {
			log.Warn().
				Str("company_id", companyID).
				Str("pasture_id", pastures[i].ID).
				Int("occupancy", occ).
				Int("capacity", pastures[i].Capacidad).
				Msg("pasture over capacity")
		}
	}
	if len(changed) == 0 {
		return nil, nil
	}
	if err := tx.SetPastures(companyID, pastures); err != nil {
		return nil, err
	}
	return changed, nil
}
