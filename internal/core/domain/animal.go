package domain

import (
	"strings"
	"time"
)

// Default photos by species, used when an animal is registered without one.
const (
	PhotoBovino   = "/img/default-bovino.jpg"
	PhotoOvino    = "/img/default-ovino.jpg"
	PhotoCaprino  = "/img/default-caprino.jpg"
	PhotoFallback = "/img/default-animal.jpg"
)

// DefaultPhoto returns the stock photo for species.
func DefaultPhoto(species string) string {
	switch strings.ToLower(strings.TrimSpace(species)) {
	case "bovino":
		return PhotoBovino
	case "ovino":
		return PhotoOvino
	case "caprino":
		return PhotoCaprino
	default:
		return PhotoFallback
	}
}

// VaccineEntry records an applied or scheduled vaccine.
type VaccineEntry struct {
	Vacuna      string `json:"vacuna"`
	Fecha       string `json:"fecha"`
	Dosis       string `json:"dosis,omitempty"`
	Veterinario string `json:"veterinario,omitempty"`
	Notas       string `json:"notas,omitempty"`
}

// DiseaseEntry records a diagnosed illness.
type DiseaseEntry struct {
	Enfermedad  string `json:"enfermedad"`
	Fecha       string `json:"fecha"`
	Tratamiento string `json:"tratamiento,omitempty"`
	Estado      string `json:"estado,omitempty"`
	Notas       string `json:"notas,omitempty"`
}

// TreatmentEntry records an ongoing treatment.
type TreatmentEntry struct {
	Medicamento string `json:"medicamento"`
	Dosis       string `json:"dosis,omitempty"`
	Frecuencia  string `json:"frecuencia,omitempty"`
	FechaInicio string `json:"fechaInicio"`
	FechaFin    string `json:"fechaFin,omitempty"`
	Notas       string `json:"notas,omitempty"`
}

// MedicalRecord is embedded in Animal. Its lists only grow.
type MedicalRecord struct {
	HistorialVacunas         []VaccineEntry   `json:"historialVacunas"`
	HistorialEnfermedades    []DiseaseEntry   `json:"historialEnfermedades"`
	ProximasVacunas          []VaccineEntry   `json:"proximasVacunas"`
	TratamientosActivos      []TreatmentEntry `json:"tratamientosActivos"`
	ObservacionesVeterinario string           `json:"observacionesVeterinario,omitempty"`
	FechaUltimaRevision      string           `json:"fechaUltimaRevision,omitempty"`
	VeterinarioAsignado      string           `json:"veterinarioAsignado,omitempty"`
	FechaUltimaActualizacion *time.Time       `json:"fechaUltimaActualizacion,omitempty"`
	ActualizadoPor           string           `json:"actualizadoPor,omitempty"`
}

// EmptyMedicalRecord returns a record with non-nil lists so it serialises as [].
func EmptyMedicalRecord() MedicalRecord {
	return MedicalRecord{
		HistorialVacunas:      []VaccineEntry{},
		HistorialEnfermedades: []DiseaseEntry{},
		ProximasVacunas:       []VaccineEntry{},
		TratamientosActivos:   []TreatmentEntry{},
	}
}

// Animal is a head of livestock identified by its ear tag. ID equals
// Identificacion and is unique within the company. Group, when set, names a
// group whose Members contains ID. An empty Group means no group.
type Animal struct {
	ID                string        `json:"id"`
	Identificacion    string        `json:"identificacion"`
	Nombre            string        `json:"nombre"`
	Especie           string        `json:"especie"`
	Raza              string        `json:"raza"`
	Sexo              string        `json:"sexo"`
	FechaNacimiento   string        `json:"fechaNacimiento"`
	Peso              float64       `json:"peso"`
	Group             string        `json:"grupo"`
	Foto              string        `json:"foto"`
	InformacionMedica MedicalRecord `json:"informacionMedica"`
	CompanyID         string        `json:"companyId"`
	CreatedAt         time.Time     `json:"createdAt"`
	CreatedBy         string        `json:"createdBy"`
	UpdatedAt         *time.Time    `json:"updatedAt,omitempty"`
	UpdatedBy         string        `json:"updatedBy,omitempty"`
}
