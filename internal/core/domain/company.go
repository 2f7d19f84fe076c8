package domain

import "time"

// Company is the farm business that owns every animal, group, pasture and
// appointment in its partition. Owner is always listed in Members.
type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"nombre"`
	Description string    `json:"descripcion"`
	Photo       string    `json:"foto,omitempty"`
	Location    string    `json:"ubicacion"`
	Owner       string    `json:"owner"`
	Members     []string  `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasMember reports whether email is in c.Members.
func (c Company) HasMember(email string) bool {
	for _, m := range c.Members {
		if SameEmail(m, email) {
			return true
		}
	}
	return false
}

// IsOwner reports whether email owns c.
func (c Company) IsOwner(email string) bool {
	return email != "" && SameEmail(c.Owner, email)
}
