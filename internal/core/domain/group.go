package domain

import "time"

// FeedingPlan is the current feeding regime of a group.
type FeedingPlan struct {
	Tipo          string   `json:"tipo"`
	Cantidad      string   `json:"cantidad"`
	Horario       string   `json:"horario"`
	Suplemento    string   `json:"suplemento"`
	Observaciones string   `json:"observaciones"`
	Costo         *float64 `json:"costo,omitempty"`
}

// Equal reports whether p and o describe the same plan.
func (p FeedingPlan) Equal(o FeedingPlan) bool {
	if p.Tipo != o.Tipo || p.Cantidad != o.Cantidad || p.Horario != o.Horario ||
		p.Suplemento != o.Suplemento || p.Observaciones != o.Observaciones {
		return false
	}
	if p.Costo == nil || o.Costo == nil {
		return p.Costo == nil && o.Costo == nil
	}
	return *p.Costo == *o.Costo
}

// IsZero reports whether no plan has been set.
func (p FeedingPlan) IsZero() bool {
	return p.Equal(FeedingPlan{})
}

// FeedingSnapshot is a superseded plan kept in the company feeding history.
type FeedingSnapshot struct {
	GroupID    string      `json:"grupoId"`
	Plan       FeedingPlan `json:"alimentacion"`
	ReplacedAt time.Time   `json:"fechaCambio"`
	ReplacedBy string      `json:"cambiadoPor"`
}

// Group is a grazing group. Every id in Members has Animal.Group == ID, and a
// non-empty Pasture lists ID in its GruposAsignados.
type Group struct {
	ID           string      `json:"id"`
	Codigo       string      `json:"codigo"`
	Nombre       string      `json:"nombre"`
	Especie      string      `json:"especie"`
	Objetivo     string      `json:"objetivo"`
	Pasture      string      `json:"potrero"`
	Foto         string      `json:"foto,omitempty"`
	Alimentacion FeedingPlan `json:"alimentacion"`
	Members      []string    `json:"miembros"`
	CompanyID    string      `json:"companyId"`
	CreatedAt    time.Time   `json:"createdAt"`
	CreatedBy    string      `json:"createdBy"`
	UpdatedAt    *time.Time  `json:"updatedAt,omitempty"`
	UpdatedBy    string      `json:"updatedBy,omitempty"`
}

// HasMember reports whether animalID belongs to g.
func (g Group) HasMember(animalID string) bool {
	for _, m := range g.Members {
		if m == animalID {
			return true
		}
	}
	return false
}
