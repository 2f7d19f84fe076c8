package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fincatec/domain-store/internal/core/domain"
	"github.com/fincatec/domain-store/internal/core/ports"
)

// GroupService manages grazing groups. An animal is a member of at most one
// group; placing it in a group removes it from any other.
type GroupService struct {
	col      *Collections
	validate *inputValidator
	log      zerolog.Logger
}

var _ ports.GroupService = (*GroupService)(nil)

func NewGroupService(col *Collections, log zerolog.Logger) *GroupService {
	return &GroupService{col: col, validate: newInputValidator(), log: log}
}

func (s *GroupService) GroupIDExists(ctx context.Context, actor domain.Actor, id string) (bool, error) {
	var exists bool
	err := s.col.View(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		groups, err := tx.Groups(companyID)
		if err != nil {
			return err
		}
		exists = indexOfGroup(groups, strings.TrimSpace(id)) >= 0
		return nil
	})
	return exists, err
}

func (s *GroupService) AddGroup(ctx context.Context, actor domain.Actor, in ports.AddGroupInput) (*domain.Group, error) {
	group, err := s.addGroup(ctx, actor, in)
	observe("add_group", err)
	return group, err
}

func (s *GroupService) addGroup(ctx context.Context, actor domain.Actor, in ports.AddGroupInput) (*domain.Group, error) {
	in.Codigo = strings.TrimSpace(in.Codigo)
	if err := s.validate.check(in); err != nil {
		return nil, err
	}
	members := dedupe(in.Members)

	var group domain.Group
	err := s.col.Update(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		groups, err := tx.Groups(companyID)
		if err != nil {
			return err
		}
		if indexOfGroup(groups, in.Codigo) >= 0 {
			return fmt.Errorf("%w: group %s already exists", domain.ErrDuplicateID, in.Codigo)
		}
		animals, err := tx.Animals(companyID)
		if err != nil {
			return err
		}
		if missing := missingAnimals(animals, members); len(missing) > 0 {
			return fmt.Errorf("%w: animals %s", domain.ErrNotFound, strings.Join(missing, ", "))
		}

		groups = append(groups, domain.Group{
			ID:           in.Codigo,
			Codigo:       in.Codigo,
			Nombre:       strings.TrimSpace(in.Nombre),
			Especie:      strings.TrimSpace(in.Especie),
			Objetivo:     strings.TrimSpace(in.Objetivo),
			Foto:         in.Foto,
			Alimentacion: in.Alimentacion,
			Members:      []string{},
			CompanyID:    companyID,
			CreatedAt:    s.col.Now(),
			CreatedBy:    actor.Email,
		})
		for _, m := range members {
			placeAnimal(animals, groups, m, in.Codigo)
		}
		group = groups[len(groups)-1]

		if err := tx.SetGroups(companyID, groups); err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}
		if err := tx.SetAnimals(companyID, animals); err != nil {
			return err
		}
		_, err = recomputeOccupancy(tx, companyID, s.log)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("company_id", group.CompanyID).
		Str("group_id", group.ID).
		Int("members", len(group.Members)).
		Msg("group added")
	return &group, nil
}

// UpdateGroup merges patch into the group. A new Members list replaces the
// membership: dropped animals lose their group, added animals leave their
// previous group. A changed feeding plan pushes the old plan to the history.
func (s *GroupService) UpdateGroup(ctx context.Context, actor domain.Actor, id string, patch ports.GroupPatch) (*domain.Group, error) {
	group, err := s.updateGroup(ctx, actor, id, patch)
	observe("update_group", err)
	return group, err
}

func (s *GroupService) updateGroup(ctx context.Context, actor domain.Actor, id string, patch ports.GroupPatch) (*domain.Group, error) {
	var updated domain.Group
	err := s.col.Update(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		groups, err := tx.Groups(companyID)
		if err != nil {
			return err
		}
		idx := indexOfGroup(groups, id)
		if idx < 0 {
			return fmt.Errorf("%w: group %s", domain.ErrNotFound, id)
		}

		now := s.col.Now()
		g := &groups[idx]
		if patch.Nombre != nil {
			name := strings.TrimSpace(*patch.Nombre)
			if name == "" {
				return fmt.Errorf("%w: nombre is required", domain.ErrValidation)
			}
			g.Nombre = name
		}
		if patch.Especie != nil {
			g.Especie = strings.TrimSpace(*patch.Especie)
		}
		if patch.Objetivo != nil {
			g.Objetivo = strings.TrimSpace(*patch.Objetivo)
		}
		if patch.Foto != nil {
			g.Foto = *patch.Foto
		}
		if patch.Alimentacion != nil && !patch.Alimentacion.Equal(g.Alimentacion) {
			if !g.Alimentacion.IsZero() {
				err := tx.AppendFeedingHistory(companyID, domain.FeedingSnapshot{
					GroupID:    g.ID,
					Plan:       g.Alimentacion,
					ReplacedAt: now,
					ReplacedBy: actor.Email,
				})
				if err != nil {
					return err
				}
			}
			g.Alimentacion = *patch.Alimentacion
		}
		g.UpdatedAt = stamp(now)
		g.UpdatedBy = actor.Email

		if patch.Members != nil {
			if err := s.replaceMembers(tx, companyID, groups, idx, dedupe(*patch.Members)); err != nil {
				return err
			}
		}

		updated = groups[idx]
		if err := tx.SetGroups(companyID, groups); err != nil {
			return err
		}
		if patch.Members != nil {
			if _, err := recomputeOccupancy(tx, companyID, s.log); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("company_id", updated.CompanyID).Str("group_id", updated.ID).Msg("group updated")
	return &updated, nil
}

func (s *GroupService) replaceMembers(tx *Tx, companyID string, groups []domain.Group, idx int, members []string) error {
	animals, err := tx.Animals(companyID)
	if err != nil {
		return err
	}
	if missing := missingAnimals(animals, members); len(missing) > 0 {
		return fmt.Errorf("%w: animals %s", domain.ErrNotFound, strings.Join(missing, ", "))
	}

	pastures, err := tx.Pastures(companyID)
	if err != nil {
		return err
	}
	before := headcounts(pastures, groups)

	id := groups[idx].ID
	keep := make(map[string]struct{}, len(members))
	for _, m := range members {
		keep[m] = struct{}{}
	}
	for _, old := range groups[idx].Members {
		if _, ok := keep[old]; ok {
			continue
		}
		if i := indexOfAnimal(animals, old); i >= 0 && animals[i].Group == id {
			animals[i].Group = ""
		}
	}

	groups[idx].Members = []string{}
	for _, m := range members {
		placeAnimal(animals, groups, m, id)
	}
	if err := checkCapacity(pastures, groups, before); err != nil {
		return err
	}
	return tx.SetAnimals(companyID, animals)
}

// DeleteGroup removes the group, clears the group of its members and unassigns
// it from every pasture.
func (s *GroupService) DeleteGroup(ctx context.Context, actor domain.Actor, id string) error {
	var companyID string
	err := s.col.Update(ctx, func(tx *Tx) error {
		var err error
		companyID, err = requireCompany(tx, actor)
		if err != nil {
			return err
		}
		groups, err := tx.Groups(companyID)
		if err != nil {
			return err
		}
		idx := indexOfGroup(groups, id)
		if idx < 0 {
			return fmt.Errorf("%w: group %s", domain.ErrNotFound, id)
		}
		groups = append(groups[:idx:idx], groups[idx+1:]...)
		if err := tx.SetGroups(companyID, groups); err != nil {
			return err
		}

		animals, err := tx.Animals(companyID)
		if err != nil {
			return err
		}
		cleared := false
		for i := range animals {
			if animals[i].Group == id {
				animals[i].Group = ""
				cleared = true
			}
		}
		if cleared {
			if err := tx.SetAnimals(companyID, animals); err != nil {
				return err
			}
		}

		pastures, err := tx.Pastures(companyID)
		if err != nil {
			return err
		}
		unassigned := false
		for i := range pastures {
			if pastures[i].HasGroup(id) {
				pastures[i].GruposAsignados = without(pastures[i].GruposAsignados, id)
				unassigned = true
			}
		}
		if unassigned {
			if err := tx.SetPastures(companyID, pastures); err != nil {
				return err
			}
		}
		_, err = recomputeOccupancy(tx, companyID, s.log)
		return err
	})
	observe("delete_group", err)
	if err != nil {
		return err
	}

	s.log.Info().Str("company_id", companyID).Str("group_id", id).Msg("group deleted")
	return nil
}

func (s *GroupService) GetGroup(ctx context.Context, actor domain.Actor, id string) (*domain.Group, error) {
	var group *domain.Group
	err := s.col.View(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		groups, err := tx.Groups(companyID)
		if err != nil {
			return err
		}
		idx := indexOfGroup(groups, id)
		if idx < 0 {
			return fmt.Errorf("%w: group %s", domain.ErrNotFound, id)
		}
		group = &groups[idx]
		return nil
	})
	return group, err
}

func (s *GroupService) ListGroups(ctx context.Context, actor domain.Actor) ([]domain.Group, error) {
	var groups []domain.Group
	err := s.col.View(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		groups, err = tx.Groups(companyID)
		return err
	})
	return groups, err
}

// FeedingHistory returns the superseded feeding plans of groupID, oldest first.
func (s *GroupService) FeedingHistory(ctx context.Context, actor domain.Actor, groupID string) ([]domain.FeedingSnapshot, error) {
	history := []domain.FeedingSnapshot{}
	err := s.col.View(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		byGroup, err := tx.FeedingHistory(companyID)
		if err != nil {
			return err
		}
		history = append(history, byGroup[groupID]...)
		return nil
	})
	return history, err
}
