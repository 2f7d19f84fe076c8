package service

import (
	"fmt"
	"time"

	"github.com/fincatec/domain-store/internal/core/domain"
)

// companyOf returns the id of the first company listing email as a member,
// or "" when there is none.
func companyOf(tx *Tx, email string) (string, error) {
	if email == "" {
		return "", nil
	}
	companies, err := tx.Companies()
	if err != nil {
		return "", err
	}
	for _, c := range companies {
		if c.HasMember(email) {
			return c.ID, nil
		}
	}
	return "", nil
}

// requireCompany resolves the actor's company or fails with ErrNoCompany.
func requireCompany(tx *Tx, actor domain.Actor) (string, error) {
	id, err := companyOf(tx, actor.Email)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("%w: %s does not belong to a company", domain.ErrNoCompany, actor.Email)
	}
	return id, nil
}

func stamp(now time.Time) *time.Time {
	return &now
}

func indexOfAnimal(animals []domain.Animal, id string) int {
	for i, a := range animals {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func indexOfGroup(groups []domain.Group, id string) int {
	for i, g := range groups {
		if g.ID == id {
			return i
		}
	}
	return -1
}

func indexOfPasture(pastures []domain.Pasture, id string) int {
	for i, p := range pastures {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func withUnique(ids []string, id string) []string {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
