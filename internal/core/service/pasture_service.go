package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fincatec/domain-store/internal/core/domain"
	"github.com/fincatec/domain-store/internal/core/ports"
	"github.com/fincatec/domain-store/internal/metrics"
)

// PastureService manages pastures and their group assignments.
// OcupacionActual is always recomputed from the assigned groups.
type PastureService struct {
	col      *Collections
	validate *inputValidator
	log      zerolog.Logger
}

var _ ports.PastureService = (*PastureService)(nil)

func NewPastureService(col *Collections, log zerolog.Logger) *PastureService {
	return &PastureService{col: col, validate: newInputValidator(), log: log}
}

func (s *PastureService) AddPasture(ctx context.Context, actor domain.Actor, in ports.AddPastureInput) (*domain.Pasture, error) {
	pasture, err := s.addPasture(ctx, actor, in)
	observe("add_pasture", err)
	return pasture, err
}

func (s *PastureService) addPasture(ctx context.Context, actor domain.Actor, in ports.AddPastureInput) (*domain.Pasture, error) {
	var pasture domain.Pasture
	err := s.col.Update(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		if err := s.validate.check(in); err != nil {
			return err
		}
		pastures, err := tx.Pastures(companyID)
		if err != nil {
			return err
		}

		pasture = domain.Pasture{
			ID:              uuid.NewString(),
			Nombre:          strings.TrimSpace(in.Nombre),
			Capacidad:       in.Capacidad,
			Provincia:       strings.TrimSpace(in.Provincia),
			Canton:          strings.TrimSpace(in.Canton),
			Direccion:       strings.TrimSpace(in.Direccion),
			Estado:          domain.PastureState(in.Estado),
			Foto:            in.Foto,
			GruposAsignados: []string{},
			CompanyID:       companyID,
			CreatedAt:       s.col.Now(),
			CreatedBy:       actor.Email,
		}
		return tx.SetPastures(companyID, append(pastures, pasture))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("company_id", pasture.CompanyID).Str("pasture_id", pasture.ID).Msg("pasture added")
	return &pasture, nil
}

// UpdatePasture merges patch into the pasture. The capacity cannot drop below
// the current headcount.
func (s *PastureService) UpdatePasture(ctx context.Context, actor domain.Actor, id string, patch ports.PasturePatch) (*domain.Pasture, error) {
	pasture, err := s.updatePasture(ctx, actor, id, patch)
	observe("update_pasture", err)
	return pasture, err
}

func (s *PastureService) updatePasture(ctx context.Context, actor domain.Actor, id string, patch ports.PasturePatch) (*domain.Pasture, error) {
	if err := s.validate.check(patch); err != nil {
		return nil, err
	}

	var updated domain.Pasture
	err := s.col.Update(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		pastures, err := tx.Pastures(companyID)
		if err != nil {
			return err
		}
		idx := indexOfPasture(pastures, id)
		if idx < 0 {
			return fmt.Errorf("%w: pasture %s", domain.ErrNotFound, id)
		}

		p := &pastures[idx]
		if patch.Nombre != nil {
			name := strings.TrimSpace(*patch.Nombre)
			if name == "" {
				return fmt.Errorf("%w: nombre is required", domain.ErrValidation)
			}
			p.Nombre = name
		}
		if patch.Capacidad != nil {
			groups, err := tx.Groups(companyID)
			if err != nil {
				return err
			}
			if occ := domain.Occupancy(*p, groups); *patch.Capacidad < occ {
				return fmt.Errorf("%w: pasture %s holds %d animals, capacity %d is too small",
					domain.ErrCapacityExceeded, p.Nombre, occ, *patch.Capacidad)
			}
			p.Capacidad = *patch.Capacidad
		}
		if patch.Provincia != nil {
			p.Provincia = strings.TrimSpace(*patch.Provincia)
		}
		if patch.Canton != nil {
			p.Canton = strings.TrimSpace(*patch.Canton)
		}
		if patch.Direccion != nil {
			p.Direccion = strings.TrimSpace(*patch.Direccion)
		}
		if patch.Estado != nil {
			p.Estado = domain.PastureState(*patch.Estado)
		}
		if patch.Foto != nil {
			p.Foto = *patch.Foto
		}
		p.UpdatedAt = stamp(s.col.Now())
		p.UpdatedBy = actor.Email

		updated = *p
		return tx.SetPastures(companyID, pastures)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("company_id", updated.CompanyID).Str("pasture_id", updated.ID).Msg("pasture updated")
	return &updated, nil
}

// DeletePasture removes the pasture and clears the pasture of its groups.
func (s *PastureService) DeletePasture(ctx context.Context, actor domain.Actor, id string) error {
	var companyID string
	err := s.col.Update(ctx, func(tx *Tx) error {
		var err error
		companyID, err = requireCompany(tx, actor)
		if err != nil {
			return err
		}
		pastures, err := tx.Pastures(companyID)
		if err != nil {
			return err
		}
		idx := indexOfPasture(pastures, id)
		if idx < 0 {
			return fmt.Errorf("%w: pasture %s", domain.ErrNotFound, id)
		}
		pastures = append(pastures[:idx:idx], pastures[idx+1:]...)
		if err := tx.SetPastures(companyID, pastures); err != nil {
			return err
		}

		groups, err := tx.Groups(companyID)
		if err != nil {
			return err
		}
		cleared := false
		for i := range groups {
			if groups[i].Pasture == id {
				groups[i].Pasture = ""
				cleared = true
			}
		}
		if !cleared {
			return nil
		}
		return tx.SetGroups(companyID, groups)
	})
	observe("delete_pasture", err)
	if err != nil {
		return err
	}

	s.log.Info().Str("company_id", companyID).Str("pasture_id", id).Msg("pasture deleted")
	return nil
}

func (s *PastureService) GetPasture(ctx context.Context, actor domain.Actor, id string) (*domain.Pasture, error) {
	var pasture *domain.Pasture
	err := s.col.View(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		pastures, err := tx.Pastures(companyID)
		if err != nil {
			return err
		}
		idx := indexOfPasture(pastures, id)
		if idx < 0 {
			return fmt.Errorf("%w: pasture %s", domain.ErrNotFound, id)
		}
		pasture = &pastures[idx]
		return nil
	})
	return pasture, err
}

func (s *PastureService) ListPastures(ctx context.Context, actor domain.Actor) ([]domain.Pasture, error) {
	var pastures []domain.Pasture
	err := s.col.View(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		pastures, err = tx.Pastures(companyID)
		return err
	})
	return pastures, err
}

// AssignGroup puts groupID on pastureID. It fails if the group is already on
// a pasture or if its members do not fit in the remaining capacity.
func (s *PastureService) AssignGroup(ctx context.Context, actor domain.Actor, pastureID, groupID string) (*domain.Pasture, error) {
	pasture, err := s.assignGroup(ctx, actor, pastureID, groupID)
	observe("assign_group", err)
	return pasture, err
}

func (s *PastureService) assignGroup(ctx context.Context, actor domain.Actor, pastureID, groupID string) (*domain.Pasture, error) {
	var assigned domain.Pasture
	err := s.col.Update(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		pastures, err := tx.Pastures(companyID)
		if err != nil {
			return err
		}
		pi := indexOfPasture(pastures, pastureID)
		if pi < 0 {
			return fmt.Errorf("%w: pasture %s", domain.ErrNotFound, pastureID)
		}
		groups, err := tx.Groups(companyID)
		if err != nil {
			return err
		}
		gi := indexOfGroup(groups, groupID)
		if gi < 0 {
			return fmt.Errorf("%w: group %s", domain.ErrNotFound, groupID)
		}

		p, g := &pastures[pi], &groups[gi]
		if p.HasGroup(groupID) {
			return fmt.Errorf("%w: group %s is already on pasture %s", domain.ErrAlreadyAssigned, groupID, p.Nombre)
		}
		if g.Pasture != "" && g.Pasture != pastureID {
			return fmt.Errorf("%w: group %s is already on pasture %s", domain.ErrAlreadyAssigned, groupID, g.Pasture)
		}
		p.OcupacionActual = domain.Occupancy(*p, groups)
		if required := len(g.Members); required > p.Available() {
			return fmt.Errorf("%w: pasture %s has room for %d animals, group %s needs %d",
				domain.ErrCapacityExceeded, p.Nombre, p.Available(), groupID, required)
		}

		now := s.col.Now()
		p.GruposAsignados = append(p.GruposAsignados, groupID)
		p.OcupacionActual = domain.Occupancy(*p, groups)
		p.UpdatedAt = stamp(now)
		p.UpdatedBy = actor.Email
		g.Pasture = pastureID
		g.UpdatedAt = stamp(now)
		g.UpdatedBy = actor.Email

		assigned = *p
		if err := tx.SetGroups(companyID, groups); err != nil {
			return err
		}
		return tx.SetPastures(companyID, pastures)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("company_id", assigned.CompanyID).
		Str("pasture_id", assigned.ID).
		Str("group_id", groupID).
		Int("occupancy", assigned.OcupacionActual).
		Msg("group assigned")
	return &assigned, nil
}

func (s *PastureService) RemoveGroup(ctx context.Context, actor domain.Actor, pastureID, groupID string) (*domain.Pasture, error) {
	var updated domain.Pasture
	err := s.col.Update(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		pastures, err := tx.Pastures(companyID)
		if err != nil {
			return err
		}
		pi := indexOfPasture(pastures, pastureID)
		if pi < 0 {
			return fmt.Errorf("%w: pasture %s", domain.ErrNotFound, pastureID)
		}
		p := &pastures[pi]
		if !p.HasGroup(groupID) {
			return fmt.Errorf("%w: group %s is not on pasture %s", domain.ErrNotFound, groupID, p.Nombre)
		}

		groups, err := tx.Groups(companyID)
		if err != nil {
			return err
		}
		now := s.col.Now()
		if gi := indexOfGroup(groups, groupID); gi >= 0 && groups[gi].Pasture == pastureID {
			groups[gi].Pasture = ""
			groups[gi].UpdatedAt = stamp(now)
			groups[gi].UpdatedBy = actor.Email
			if err := tx.SetGroups(companyID, groups); err != nil {
				return err
			}
		}

		p.GruposAsignados = without(p.GruposAsignados, groupID)
		p.OcupacionActual = domain.Occupancy(*p, groups)
		p.UpdatedAt = stamp(now)
		p.UpdatedBy = actor.Email

		updated = *p
		return tx.SetPastures(companyID, pastures)
	})
	observe("remove_group", err)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("company_id", updated.CompanyID).
		Str("pasture_id", updated.ID).
		Str("group_id", groupID).
		Int("occupancy", updated.OcupacionActual).
		Msg("group removed")
	return &updated, nil
}

// RecalculateOccupancy repairs the cached headcount of one pasture. Nothing is
// written when the value is already correct.
func (s *PastureService) RecalculateOccupancy(ctx context.Context, actor domain.Actor, pastureID string) (*domain.Pasture, error) {
	pasture, err := s.recalculate(ctx, actor, pastureID)
	observe("recalculate_occupancy", err)
	return pasture, err
}

func (s *PastureService) recalculate(ctx context.Context, actor domain.Actor, pastureID string) (*domain.Pasture, error) {
	var pasture domain.Pasture
	err := s.col.Update(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		pastures, err := tx.Pastures(companyID)
		if err != nil {
			return err
		}
		idx := indexOfPasture(pastures, pastureID)
		if idx < 0 {
			return fmt.Errorf("%w: pasture %s", domain.ErrNotFound, pastureID)
		}
		groups, err := tx.Groups(companyID)
		if err != nil {
			return err
		}

		occ := domain.Occupancy(pastures[idx], groups)
		if occ != pastures[idx].OcupacionActual {
			s.logRepair(companyID, pastures[idx].ID, pastures[idx].OcupacionActual, occ)
			pastures[idx].OcupacionActual = occ
			metrics.OccupancyRepairsTotal.Inc()
			if err := tx.SetPastures(companyID, pastures); err != nil {
				return err
			}
		}
		pasture = pastures[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pasture, nil
}

// SyncAllOccupancies repairs every pasture of actor's company and returns how
// many were corrected.
func (s *PastureService) SyncAllOccupancies(ctx context.Context, actor domain.Actor) (int, error) {
	var repaired int
	err := s.col.Update(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		repaired, err = s.syncCompany(tx, companyID)
		return err
	})
	observe("sync_occupancies", err)
	return repaired, err
}

// SyncEveryCompany runs SyncAllOccupancies for every registered company.
func (s *PastureService) SyncEveryCompany(ctx context.Context) (int, error) {
	var repaired int
	err := s.col.Update(ctx, func(tx *Tx) error {
		companies, err := tx.Companies()
		if err != nil {
			return err
		}
		for _, c := range companies {
			n, err := s.syncCompany(tx, c.ID)
			if err != nil {
				return err
			}
			repaired += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().Int("repaired", repaired).Msg("occupancy reconciliation finished")
	return repaired, nil
}

func (s *PastureService) syncCompany(tx *Tx, companyID string) (int, error) {
	changed, err := recomputeOccupancy(tx, companyID, s.log)
	if err != nil {
		return 0, err
	}
	for _, id := range changed {
		s.log.Warn().Str("company_id", companyID).Str("pasture_id", id).Msg("occupancy drift repaired")
	}
	metrics.OccupancyRepairsTotal.Add(float64(len(changed)))
	return len(changed), nil
}

func (s *PastureService) logRepair(companyID, pastureID string, was, now int) {
	s.log.Warn().
		Str("company_id", companyID).
		Str("pasture_id", pastureID).
		Int("cached", was).
		Int("actual", now).
		Msg("occupancy drift repaired")
}
