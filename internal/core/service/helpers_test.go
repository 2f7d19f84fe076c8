package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fincatec/domain-store/internal/core/domain"
	"github.com/fincatec/domain-store/internal/core/ports"
	"github.com/fincatec/domain-store/internal/infrastructure/db/memory"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	kv    *memory.KVStore
	col   *Collections
	clock *fakeClock

	sessions     *SessionService
	companies    *CompanyService
	livestock    *LivestockService
	groups       *GroupService
	pastures     *PastureService
	appointments *AppointmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	kv := memory.NewKVStore()
	clock := &fakeClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	log := zerolog.Nop()

	col := NewCollections(kv, log)
	col.now = clock.Now

	return &testEnv{
		kv:           kv,
		col:          col,
		clock:        clock,
		sessions:     NewSessionService(col, "test-secret", time.Hour, log),
		companies:    NewCompanyService(col, log),
		livestock:    NewLivestockService(col, log),
		groups:       NewGroupService(col, log),
		pastures:     NewPastureService(col, log),
		appointments: NewAppointmentService(col, log),
	}
}

// withCompany creates a company owned by email and returns the owner actor.
func (e *testEnv) withCompany(t *testing.T, email, name string) (domain.Actor, *domain.Company) {
	t.Helper()
	actor := domain.Actor{Email: email, Name: name, Role: domain.RoleFinquero}
	c, err := e.companies.CreateCompany(context.Background(), actor, ports.CreateCompanyInput{
		Name:     name,
		Location: "Alajuela",
	})
	if err != nil {
		t.Fatalf("CreateCompany returned error: %v", err)
	}
	return actor, c
}

func (e *testEnv) addAnimal(t *testing.T, actor domain.Actor, id string) *domain.Animal {
	t.Helper()
	a, err := e.livestock.AddAnimal(context.Background(), actor, ports.AddAnimalInput{
		Identificacion: id,
		Nombre:         "Animal " + id,
		Especie:        "Bovino",
	})
	if err != nil {
		t.Fatalf("AddAnimal(%s) returned error: %v", id, err)
	}
	return a
}

func (e *testEnv) addGroup(t *testing.T, actor domain.Actor, id string, members ...string) *domain.Group {
	t.Helper()
	g, err := e.groups.AddGroup(context.Background(), actor, ports.AddGroupInput{
		Codigo:  id,
		Nombre:  "Grupo " + id,
		Members: members,
	})
	if err != nil {
		t.Fatalf("AddGroup(%s) returned error: %v", id, err)
	}
	return g
}

func (e *testEnv) addPasture(t *testing.T, actor domain.Actor, capacity int) *domain.Pasture {
	t.Helper()
	p, err := e.pastures.AddPasture(context.Background(), actor, ports.AddPastureInput{
		Nombre:    "Potrero Norte",
		Capacidad: capacity,
		Estado:    string(domain.PastureBuena),
	})
	if err != nil {
		t.Fatalf("AddPasture returned error: %v", err)
	}
	return p
}

// herd adds n animals with ids prefix-1..prefix-n and returns their ids.
func (e *testEnv) herd(t *testing.T, actor domain.Actor, prefix string, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("%s-%02d", prefix, i)
		e.addAnimal(t, actor, id)
		ids = append(ids, id)
	}
	return ids
}

// assertConsistent checks the cross-entity invariants of actor's company:
// Animal.Group and Group.Members agree, Group.Pasture and
// Pasture.GruposAsignados agree, and every cached occupancy is correct.
func (e *testEnv) assertConsistent(t *testing.T, actor domain.Actor) {
	t.Helper()
	ctx := context.Background()

	animals, err := e.livestock.ListAnimals(ctx, actor)
	if err != nil {
		t.Fatalf("ListAnimals returned error: %v", err)
	}
	groups, err := e.groups.ListGroups(ctx, actor)
	if err != nil {
		t.Fatalf("ListGroups returned error: %v", err)
	}
	pastures, err := e.pastures.ListPastures(ctx, actor)
	if err != nil {
		t.Fatalf("ListPastures returned error: %v", err)
	}

	groupByID := make(map[string]domain.Group, len(groups))
	for _, g := range groups {
		groupByID[g.ID] = g
	}
	animalByID := make(map[string]domain.Animal, len(animals))
	for _, a := range animals {
		animalByID[a.ID] = a
	}

	for _, a := range animals {
		if a.Group == "" {
			continue
		}
		g, ok := groupByID[a.Group]
		if !ok {
			t.Errorf("animal %s points at missing group %s", a.ID, a.Group)
			continue
		}
		if !g.HasMember(a.ID) {
			t.Errorf("animal %s points at group %s which does not list it", a.ID, g.ID)
		}
	}

	seen := make(map[string]string)
	for _, g := range groups {
		for _, m := range g.Members {
			a, ok := animalByID[m]
			if !ok {
				t.Errorf("group %s lists missing animal %s", g.ID, m)
				continue
			}
			if a.Group != g.ID {
				t.Errorf("group %s lists animal %s whose grupo is %q", g.ID, m, a.Group)
			}
			if other, dup := seen[m]; dup {
				t.Errorf("animal %s is in groups %s and %s", m, other, g.ID)
			}
			seen[m] = g.ID
		}
	}

	for _, p := range pastures {
		if want := domain.Occupancy(p, groups); p.OcupacionActual != want {
			t.Errorf("pasture %s occupancy = %d, want %d", p.ID, p.OcupacionActual, want)
		}
		for _, gid := range p.GruposAsignados {
			if g, ok := groupByID[gid]; ok && g.Pasture != p.ID {
				t.Errorf("pasture %s lists group %s whose potrero is %q", p.ID, gid, g.Pasture)
			}
		}
	}
	for _, g := range groups {
		if g.Pasture == "" {
			continue
		}
		found := false
		for _, p := range pastures {
			if p.ID == g.Pasture && p.HasGroup(g.ID) {
				found = true
			}
		}
		if !found {
			t.Errorf("group %s points at pasture %s which does not list it", g.ID, g.Pasture)
		}
	}
}

func expectErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

func ptr[T any](v T) *T {
	return &v
}
