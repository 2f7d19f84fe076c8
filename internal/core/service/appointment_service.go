package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fincatec/domain-store/internal/core/domain"
	"github.com/fincatec/domain-store/internal/core/ports"
	"github.com/fincatec/domain-store/internal/metrics"
)

// AppointmentService manages veterinary appointments. Lookups by id search
// every company, since veterinarians do not belong to the companies they serve.
type AppointmentService struct {
	col      *Collections
	validate *inputValidator
	log      zerolog.Logger
}

var _ ports.AppointmentService = (*AppointmentService)(nil)

func NewAppointmentService(col *Collections, log zerolog.Logger) *AppointmentService {
	return &AppointmentService{col: col, validate: newInputValidator(), log: log}
}

func (s *AppointmentService) AddAppointment(ctx context.Context, actor domain.Actor, in ports.AddAppointmentInput) (*domain.Appointment, error) {
	appt, err := s.addAppointment(ctx, actor, in)
	observe("add_appointment", err)
	return appt, err
}

func (s *AppointmentService) addAppointment(ctx context.Context, actor domain.Actor, in ports.AddAppointmentInput) (*domain.Appointment, error) {
	in.ObjetivoID = strings.TrimSpace(in.ObjetivoID)
	if err := s.validate.check(in); err != nil {
		return nil, err
	}
	if err := s.notPast(in.FechaCita); err != nil {
		return nil, err
	}

	var appt domain.Appointment
	err := s.col.Update(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		name, err := targetName(tx, companyID, in.Tipo, in.ObjetivoID)
		if err != nil {
			return err
		}
		appts, err := tx.Appointments(companyID)
		if err != nil {
			return err
		}

		appt = domain.Appointment{
			ID:             uuid.NewString(),
			Tipo:           in.Tipo,
			ObjetivoID:     in.ObjetivoID,
			ObjetivoNombre: name,
			Servicio:       in.Servicio,
			FechaCita:      in.FechaCita,
			HoraCita:       strings.TrimSpace(in.HoraCita),
			Observaciones:  strings.TrimSpace(in.Observaciones),
			Estado:         domain.AppointmentPending,
			CompanyID:      companyID,
			CreatedAt:      s.col.Now(),
			CreatedBy:      actor.Email,
		}
		return tx.SetAppointments(companyID, append(appts, appt))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("company_id", appt.CompanyID).
		Str("appointment_id", appt.ID).
		Str("objetivo_id", appt.ObjetivoID).
		Msg("appointment requested")
	return &appt, nil
}

// AcceptAppointment binds vetEmail to a pending appointment.
func (s *AppointmentService) AcceptAppointment(ctx context.Context, id, vetEmail string) (*domain.Appointment, error) {
	vetEmail = strings.TrimSpace(vetEmail)
	if vetEmail == "" {
		err := fmt.Errorf("%w: veterinarioEmail is required", domain.ErrValidation)
		observe("accept_appointment", err)
		return nil, err
	}
	vet := domain.Actor{Email: vetEmail, Role: domain.RoleVeterinario}
	return s.transition(ctx, "accept_appointment", vet, accessAnyone, id, domain.AppointmentAccepted, func(a *domain.Appointment, _ time.Time) {
		a.VeterinarioEmail = &vetEmail
	})
}

// CompleteAppointment closes an accepted appointment. Only the bound
// veterinarian or a member of the owning company may complete it.
func (s *AppointmentService) CompleteAppointment(ctx context.Context, actor domain.Actor, id string) (*domain.Appointment, error) {
	return s.transition(ctx, "complete_appointment", actor, accessCompanyOrVet, id, domain.AppointmentCompleted, nil)
}

// RejectAppointment ends the appointment and releases the veterinarian. A
// rejected appointment is terminal; the farm must request a new one.
func (s *AppointmentService) RejectAppointment(ctx context.Context, actor domain.Actor, id string) (*domain.Appointment, error) {
	return s.transition(ctx, "reject_appointment", actor, accessCompanyOrVet, id, domain.AppointmentRejected, func(a *domain.Appointment, _ time.Time) {
		a.VeterinarioEmail = nil
	})
}

// CancelAppointment is reserved to members of the owning company.
func (s *AppointmentService) CancelAppointment(ctx context.Context, actor domain.Actor, id string) (*domain.Appointment, error) {
	return s.transition(ctx, "cancel_appointment", actor, accessCompany, id, domain.AppointmentCancelled, func(a *domain.Appointment, now time.Time) {
		a.FechaCancelacion = stamp(now)
		a.CanceladaPor = actor.Email
	})
}

// access says who may act on an appointment found by id.
type access int

const (
	accessAnyone access = iota
	accessCompany
	accessCompanyOrVet
)

// authorize fails with ErrNotFound when actor may not touch a.
func authorize(tx *Tx, actor domain.Actor, rule access, a domain.Appointment) error {
	if rule == accessAnyone {
		return nil
	}
	if rule == accessCompanyOrVet && a.VeterinarioEmail != nil && domain.SameEmail(a.Vet(), actor.Email) {
		return nil
	}
	companyID, err := companyOf(tx, actor.Email)
	if err != nil {
		return err
	}
	if companyID == "" || companyID != a.CompanyID {
		return fmt.Errorf("%w: appointment %s", domain.ErrNotFound, a.ID)
	}
	return nil
}

func (s *AppointmentService) transition(
	ctx context.Context,
	op string,
	actor domain.Actor,
	rule access,
	id string,
	to domain.AppointmentStatus,
	apply func(a *domain.Appointment, now time.Time),
) (*domain.Appointment, error) {
	var (
		updated domain.Appointment
		from    domain.AppointmentStatus
	)
	err := s.col.Update(ctx, func(tx *Tx) error {
		companyID, appts, idx, err := findAppointment(tx, id)
		if err != nil {
			return err
		}
		a := &appts[idx]
		if err := authorize(tx, actor, rule, *a); err != nil {
			return err
		}
		from = a.Estado
		if from.Terminal() {
			return fmt.Errorf("%w: appointment %s is already %s", domain.ErrInvalidTransition, id, from)
		}
		if !from.CanTransitionTo(to) {
			return fmt.Errorf("%w: appointment %s cannot go from %s to %s", domain.ErrInvalidTransition, id, from, to)
		}

		now := s.col.Now()
		a.Estado = to
		if apply != nil {
			apply(a, now)
		}
		a.UpdatedAt = stamp(now)
		a.UpdatedBy = actor.Email

		updated = *a
		return tx.SetAppointments(companyID, appts)
	})
	observe(op, err)
	if err != nil {
		return nil, err
	}

	metrics.AppointmentTransitionsTotal.WithLabelValues(string(to)).Inc()
	s.log.Info().
		Str("company_id", updated.CompanyID).
		Str("appointment_id", updated.ID).
		Str("from", string(from)).
		Str("to", string(to)).
		Str("by", actor.Email).
		Str("vet", updated.Vet()).
		Msg("appointment status changed")
	return &updated, nil
}

// RescheduleAppointment moves a pending or accepted appointment of the actor's
// company to a new date that is not in the past. The status is left unchanged.
func (s *AppointmentService) RescheduleAppointment(ctx context.Context, actor domain.Actor, id string, in ports.RescheduleInput) (*domain.Appointment, error) {
	appt, err := s.reschedule(ctx, actor, id, in)
	observe("reschedule_appointment", err)
	return appt, err
}

func (s *AppointmentService) reschedule(ctx context.Context, actor domain.Actor, id string, in ports.RescheduleInput) (*domain.Appointment, error) {
	if err := s.validate.check(in); err != nil {
		return nil, err
	}
	if err := s.notPast(in.Fecha); err != nil {
		return nil, err
	}

	var updated domain.Appointment
	err := s.col.Update(ctx, func(tx *Tx) error {
		companyID, appts, idx, err := findAppointment(tx, id)
		if err != nil {
			return err
		}
		a := &appts[idx]
		if err := authorize(tx, actor, accessCompany, *a); err != nil {
			return err
		}
		if a.Estado != domain.AppointmentPending && a.Estado != domain.AppointmentAccepted {
			return fmt.Errorf("%w: appointment %s is %s and cannot be rescheduled", domain.ErrInvalidTransition, id, a.Estado)
		}

		a.FechaCita = in.Fecha
		if hora := strings.TrimSpace(in.Hora); hora != "" {
			a.HoraCita = hora
		}
		if in.Observaciones != nil {
			a.Observaciones = strings.TrimSpace(*in.Observaciones)
		}
		a.UpdatedAt = stamp(s.col.Now())
		a.UpdatedBy = actor.Email

		updated = *a
		return tx.SetAppointments(companyID, appts)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("company_id", updated.CompanyID).
		Str("appointment_id", updated.ID).
		Str("fecha", updated.FechaCita).
		Msg("appointment rescheduled")
	return &updated, nil
}

func (s *AppointmentService) GetAppointment(ctx context.Context, id string) (*domain.Appointment, error) {
	var appt *domain.Appointment
	err := s.col.View(ctx, func(tx *Tx) error {
		_, appts, idx, err := findAppointment(tx, id)
		if err != nil {
			return err
		}
		appt = &appts[idx]
		return nil
	})
	return appt, err
}

// PendingAppointments returns, across all companies, the appointments no
// veterinarian has taken yet, earliest first.
func (s *AppointmentService) PendingAppointments(ctx context.Context) ([]domain.Appointment, error) {
	return s.collect(ctx, func(a domain.Appointment) bool {
		return a.Estado == domain.AppointmentPending && a.VeterinarioEmail == nil
	})
}

// VetAppointments returns, across all companies, the appointments bound to
// email, earliest first.
func (s *AppointmentService) VetAppointments(ctx context.Context, email string) ([]domain.Appointment, error) {
	return s.collect(ctx, func(a domain.Appointment) bool {
		return a.VeterinarioEmail != nil && domain.SameEmail(a.Vet(), email)
	})
}

func (s *AppointmentService) CompanyAppointments(ctx context.Context, actor domain.Actor) ([]domain.Appointment, error) {
	var appts []domain.Appointment
	err := s.col.View(ctx, func(tx *Tx) error {
		companyID, err := requireCompany(tx, actor)
		if err != nil {
			return err
		}
		appts, err = tx.Appointments(companyID)
		return err
	})
	return appts, err
}

func (s *AppointmentService) collect(ctx context.Context, keep func(domain.Appointment) bool) ([]domain.Appointment, error) {
	out := []domain.Appointment{}
	err := s.col.View(ctx, func(tx *Tx) error {
		all, err := tx.AllAppointments()
		if err != nil {
			return err
		}
		for _, appts := range all {
			for _, a := range appts {
				if keep(a) {
					out = append(out, a)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FechaCita != out[j].FechaCita {
			return out[i].FechaCita < out[j].FechaCita
		}
		if out[i].HoraCita != out[j].HoraCita {
			return out[i].HoraCita < out[j].HoraCita
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// notPast rejects calendar dates before today.
func (s *AppointmentService) notPast(date string) error {
	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return fmt.Errorf("%w: fecha must be a date (YYYY-MM-DD)", domain.ErrValidation)
	}
	today := s.col.Now().Truncate(24 * time.Hour)
	if day.Before(today) {
		return fmt.Errorf("%w: fecha %s is in the past", domain.ErrValidation, date)
	}
	return nil
}

// targetName resolves the display name of the animal or group an appointment
// is for.
func targetName(tx *Tx, companyID, tipo, id string) (string, error) {
	if tipo == domain.AppointmentGroup {
		groups, err := tx.Groups(companyID)
		if err != nil {
			return "", err
		}
		idx := indexOfGroup(groups, id)
		if idx < 0 {
			return "", fmt.Errorf("%w: group %s", domain.ErrNotFound, id)
		}
		return groups[idx].Nombre, nil
	}

	animals, err := tx.Animals(companyID)
	if err != nil {
		return "", err
	}
	idx := indexOfAnimal(animals, id)
	if idx < 0 {
		return "", fmt.Errorf("%w: animal %s", domain.ErrNotFound, id)
	}
	if name := animals[idx].Nombre; name != "" {
		return name, nil
	}
	return animals[idx].Identificacion, nil
}

func findAppointment(tx *Tx, id string) (string, []domain.Appointment, int, error) {
	all, err := tx.AllAppointments()
	if err != nil {
		return "", nil, -1, err
	}
	for companyID, appts := range all {
		for i := range appts {
			if appts[i].ID == id {
				return companyID, appts, i, nil
			}
		}
	}
	return "", nil, -1, fmt.Errorf("%w: appointment %s", domain.ErrNotFound, id)
}
