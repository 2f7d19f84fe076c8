package ports

import (
	"context"

	"github.com/fincatec/domain-store/internal/core/domain"
)

// AddAppointmentInput carries the data needed to request a vet visit.
type AddAppointmentInput struct {
	Tipo          string `validate:"required,oneof=individual grupo"`
	ObjetivoID    string `validate:"required"`
	Servicio      string `validate:"required,oneof=chequeo vacunacion desparasitacion"`
	FechaCita     string `validate:"required,datetime=2006-01-02"`
	HoraCita      string
	Observaciones string
}

// RescheduleInput patches the date, time and notes of an appointment.
type RescheduleInput struct {
	Fecha         string `validate:"required,datetime=2006-01-02"`
	Hora          string
	Observaciones *string
}

// AppointmentService manages veterinary appointments.
type AppointmentService interface {
	AddAppointment(ctx context.Context, actor domain.Actor, in AddAppointmentInput) (*domain.Appointment, error)
	AcceptAppointment(ctx context.Context, id, vetEmail string) (*domain.Appointment, error)
	CompleteAppointment(ctx context.Context, actor domain.Actor, id string) (*domain.Appointment, error)
	RejectAppointment(ctx context.Context, actor domain.Actor, id string) (*domain.Appointment, error)
	CancelAppointment(ctx context.Context, actor domain.Actor, id string) (*domain.Appointment, error)
	RescheduleAppointment(ctx context.Context, actor domain.Actor, id string, in RescheduleInput) (*domain.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*domain.Appointment, error)
	PendingAppointments(ctx context.Context) ([]domain.Appointment, error)
	VetAppointments(ctx context.Context, email string) ([]domain.Appointment, error)
	CompanyAppointments(ctx context.Context, actor domain.Actor) ([]domain.Appointment, error)
}
