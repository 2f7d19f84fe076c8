package domain

import "time"

// AppointmentStatus represents the lifecycle state of a veterinary appointment.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pendiente"
	AppointmentAccepted  AppointmentStatus = "aceptada"
	AppointmentCompleted AppointmentStatus = "completada"
	AppointmentCancelled AppointmentStatus = "cancelada"
	AppointmentRejected  AppointmentStatus = "rechazada"
)

const (
	AppointmentIndividual = "individual"
	AppointmentGroup      = "grupo"
)

const (
	ServiceCheckup     = "chequeo"
	ServiceVaccination = "vacunacion"
	ServiceDeworming   = "desparasitacion"
)

// appointmentTransitions defines the allowed state machine transitions.
// Completed, cancelled and rejected are terminal.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentPending:  {AppointmentAccepted, AppointmentRejected, AppointmentCancelled},
	AppointmentAccepted: {AppointmentCompleted, AppointmentRejected, AppointmentCancelled},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s AppointmentStatus) Terminal() bool {
	return len(appointmentTransitions[s]) == 0
}

// Appointment is a veterinary visit request for an animal or a group.
type Appointment struct {
	ID               string            `json:"id"`
	Tipo             string            `json:"tipo"`
	ObjetivoID       string            `json:"objetivoId"`
	ObjetivoNombre   string            `json:"objetivoNombre"`
	Servicio         string            `json:"servicio"`
	FechaCita        string            `json:"fechaCita"`
	HoraCita         string            `json:"horaCita"`
	Observaciones    string            `json:"observaciones"`
	Estado           AppointmentStatus `json:"estado"`
	VeterinarioEmail *string           `json:"veterinarioEmail"`
	CompanyID        string            `json:"companyId"`
	CreatedAt        time.Time         `json:"createdAt"`
	CreatedBy        string            `json:"createdBy"`
	UpdatedAt        *time.Time        `json:"updatedAt,omitempty"`
	UpdatedBy        string            `json:"updatedBy,omitempty"`
	FechaCancelacion *time.Time        `json:"fechaCancelacion,omitempty"`
	CanceladaPor     string            `json:"canceladaPor,omitempty"`
}

// Vet returns the bound veterinarian email, or "".
func (a Appointment) Vet() string {
	if a.VeterinarioEmail == nil {
		return ""
	}
	return *a.VeterinarioEmail
}

// DateLayout is the calendar format of FechaCita.
const DateLayout = "2006-01-02"
