package domain

import "time"

// PastureState is the condition of a pasture.
type PastureState string

const (
	PastureExcelente PastureState = "Excelente"
	PastureBuena     PastureState = "Buena"
	PastureDecente   PastureState = "Decente"
	PastureDecadente PastureState = "Decadente"
)

// Valid reports whether s is a known state.
func (s PastureState) Valid() bool {
	switch s {
	case PastureExcelente, PastureBuena, PastureDecente, PastureDecadente:
		return true
	}
	return false
}

// Pasture is a paddock with a headcount capacity. OcupacionActual is a cached
// projection of the assigned groups' member counts; recompute it with
// Occupancy, never adjust it incrementally.
type Pasture struct {
	ID              string       `json:"id"`
	Nombre          string       `json:"nombre"`
	Capacidad       int          `json:"capacidad"`
	Provincia       string       `json:"provincia"`
	Canton          string       `json:"canton"`
	Direccion       string       `json:"direccion"`
	Estado          PastureState `json:"estado"`
	Foto            string       `json:"foto,omitempty"`
	GruposAsignados []string     `json:"gruposAsignados"`
	OcupacionActual int          `json:"ocupacionActual"`
	CompanyID       string       `json:"companyId"`
	CreatedAt       time.Time    `json:"createdAt"`
	CreatedBy       string       `json:"createdBy"`
	UpdatedAt       *time.Time   `json:"updatedAt,omitempty"`
	UpdatedBy       string       `json:"updatedBy,omitempty"`
}

// HasGroup reports whether groupID is assigned to p.
func (p Pasture) HasGroup(groupID string) bool {
	for _, g := range p.GruposAsignados {
		if g == groupID {
			return true
		}
	}
	return false
}

// Occupancy is the ground-truth headcount of p given the company's groups.
// Assigned ids with no matching group count as zero.
func Occupancy(p Pasture, groups []Group) int {
	total := 0
	for _, id := range p.GruposAsignados {
		for _, g := range groups {
			if g.ID == id {
				total += len(g.Members)
				break
			}
		}
	}
	return total
}

// Available is the headcount that still fits in p.
func (p Pasture) Available() int {
	return p.Capacidad - p.OcupacionActual
}
