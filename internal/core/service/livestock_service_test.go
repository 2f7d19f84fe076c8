package service

import (
	"context"
	"testing"

	"github.com/fincatec/domain-store/internal/core/domain"
	"github.com/fincatec/domain-store/internal/core/ports"
)

func TestLivestockService_AddAnimal_RejectsDuplicateID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, _ := env.withCompany(t, "a@x.com", "Finca X")

	in := ports.AddAnimalInput{Identificacion: "B-100", Nombre: "Lucero", Especie: "Bovino"}
	if _, err := env.livestock.AddAnimal(ctx, owner, in); err != nil {
		t.Fatalf("AddAnimal returned error: %v", err)
	}
	_, err := env.livestock.AddAnimal(ctx, owner, in)
	expectErr(t, err, domain.ErrDuplicateID)

	exists, err := env.livestock.CheckIDExists(ctx, owner, "B-100")
	if err != nil {
		t.Fatalf("CheckIDExists returned error: %v", err)
	}
	if !exists {
		t.Fatalf("expected B-100 to exist")
	}
	animals, _ := env.livestock.ListAnimals(ctx, owner)
	if len(animals) != 1 {
		t.Fatalf("expected exactly one animal, got %d", len(animals))
	}
}

func TestLivestockService_AddAnimal_SameIDInOtherCompany(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	x, _ := env.withCompany(t, "a@x.com", "Finca X")
	y, _ := env.withCompany(t, "c@y.com", "Finca Y")

	env.addAnimal(t, x, "B-100")
	env.addAnimal(t, y, "B-100")

	exists, err := env.livestock.CheckIDExists(ctx, y, "B-101")
	if err != nil {
		t.Fatalf("CheckIDExists returned error: %v", err)
	}
	if exists {
		t.Fatalf("B-101 must not exist")
	}
}

func TestLivestockService_AddAnimal_Defaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, company := env.withCompany(t, "a@x.com", "Finca X")

	tests := []struct {
		id, especie, want string
	}{
		{"B-1", "Bovino", domain.PhotoBovino},
		{"O-1", "ovino", domain.PhotoOvino},
		{"C-1", "Caprino", domain.PhotoCaprino},
		{"E-1", "Equino", domain.PhotoFallback},
	}
	for _, tt := range tests {
		a, err := env.livestock.AddAnimal(ctx, owner, ports.AddAnimalInput{Identificacion: tt.id, Especie: tt.especie})
		if err != nil {
			t.Fatalf("AddAnimal(%s) returned error: %v", tt.id, err)
		}
		if a.Foto != tt.want {
			t.Errorf("%s: expected photo %q, got %q", tt.especie, tt.want, a.Foto)
		}
		if a.ID != tt.id || a.CompanyID != company.ID || a.CreatedBy != owner.Email {
			t.Errorf("unexpected identity fields: %+v", a)
		}
		if a.InformacionMedica.HistorialVacunas == nil || a.InformacionMedica.TratamientosActivos == nil {
			t.Errorf("expected empty, non-nil medical lists")
		}
	}
}

func TestLivestockService_RequiresCompany(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	loner := domain.Actor{Email: "solo@x.com"}

	_, err := env.livestock.AddAnimal(ctx, loner, ports.AddAnimalInput{Identificacion: "B-1", Especie: "Bovino"})
	expectErr(t, err, domain.ErrNoCompany)

	_, err = env.livestock.ListAnimals(ctx, loner)
	expectErr(t, err, domain.ErrNoCompany)
}

func TestLivestockService_AddAnimal_Validation(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.withCompany(t, "a@x.com", "Finca X")

	_, err := env.livestock.AddAnimal(context.Background(), owner, ports.AddAnimalInput{Identificacion: "  ", Especie: "Bovino"})
	expectErr(t, err, domain.ErrValidation)

	_, err = env.livestock.AddAnimal(context.Background(), owner, ports.AddAnimalInput{Identificacion: "B-1", Especie: "Bovino", Peso: -3})
	expectErr(t, err, domain.ErrValidation)
}

func TestLivestockService_AddAnimal_IntoGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, _ := env.withCompany(t, "a@x.com", "Finca X")
	env.addGroup(t, owner, "G1")

	a, err := env.livestock.AddAnimal(ctx, owner, ports.AddAnimalInput{Identificacion: "B-1", Especie: "Bovino", Group: "G1"})
	if err != nil {
		t.Fatalf("AddAnimal returned error: %v", err)
	}
	if a.Group != "G1" {
		t.Fatalf("expected grupo G1, got %q", a.Group)
	}

	_, err = env.livestock.AddAnimal(ctx, owner, ports.AddAnimalInput{Identificacion: "B-2", Especie: "Bovino", Group: "nope"})
	expectErr(t, err, domain.ErrNotFound)
	if exists, _ := env.livestock.CheckIDExists(ctx, owner, "B-2"); exists {
		t.Fatalf("failed add must not persist the animal")
	}

	env.assertConsistent(t, owner)
}

func TestLivestockService_UpdateAnimal_JoinsGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, _ := env.withCompany(t, "a@x.com", "Finca X")
	env.addAnimal(t, owner, "B-100")
	env.addGroup(t, owner, "G1")

	if _, err := env.livestock.UpdateAnimal(ctx, owner, "B-100", ports.AnimalPatch{Group: ptr("G1")}); err != nil {
		t.Fatalf("UpdateAnimal returned error: %v", err)
	}

	g, err := env.groups.GetGroup(ctx, owner, "G1")
	if err != nil {
		t.Fatalf("GetGroup returned error: %v", err)
	}
	if !g.HasMember("B-100") {
		t.Fatalf("expected G1 members to contain B-100, got %v", g.Members)
	}
	env.assertConsistent(t, owner)
}

func TestLivestockService_UpdateAnimal_MovesBetweenGroups(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, _ := env.withCompany(t, "a@x.com", "Finca X")
	env.addAnimal(t, owner, "B-1")
	env.addAnimal(t, owner, "B-2")
	env.addGroup(t, owner, "G1", "B-1", "B-2")
	env.addGroup(t, owner, "G2")

	p := env.addPasture(t, owner, 10)
	if _, err := env.pastures.AssignGroup(ctx, owner, p.ID, "G1"); err != nil {
		t.Fatalf("AssignGroup returned error: %v", err)
	}

	a, err := env.livestock.UpdateAnimal(ctx, owner, "B-1", ports.AnimalPatch{Group: ptr("G2"), Peso: ptr(412.5)})
	if err != nil {
		t.Fatalf("UpdateAnimal returned error: %v", err)
	}
	if a.Group != "G2" || a.Peso != 412.5 {
		t.Fatalf("unexpected animal after update: %+v", a)
	}
	if a.UpdatedAt == nil || a.UpdatedBy != owner.Email {
		t.Fatalf("expected update stamp")
	}

	g1, _ := env.groups.GetGroup(ctx, owner, "G1")
	if g1.HasMember("B-1") {
		t.Fatalf("B-1 must have left G1")
	}
	pasture, _ := env.pastures.GetPasture(ctx, owner, p.ID)
	if pasture.OcupacionActual != 1 {
		t.Fatalf("expected occupancy 1 after the move, got %d", pasture.OcupacionActual)
	}

	if _, err := env.livestock.UpdateAnimal(ctx, owner, "B-2", ports.AnimalPatch{Group: ptr("")}); err != nil {
		t.Fatalf("UpdateAnimal returned error: %v", err)
	}
	pasture, _ = env.pastures.GetPasture(ctx, owner, p.ID)
	if pasture.OcupacionActual != 0 {
		t.Fatalf("expected occupancy 0, got %d", pasture.OcupacionActual)
	}
	env.assertConsistent(t, owner)
}

func TestLivestockService_UpdateAnimal_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, _ := env.withCompany(t, "a@x.com", "Finca X")
	env.addAnimal(t, owner, "B-1")

	_, err := env.livestock.UpdateAnimal(ctx, owner, "B-9", ports.AnimalPatch{Nombre: ptr("x")})
	expectErr(t, err, domain.ErrNotFound)

	_, err = env.livestock.UpdateAnimal(ctx, owner, "B-1", ports.AnimalPatch{Group: ptr("G404")})
	expectErr(t, err, domain.ErrNotFound)

	_, err = env.livestock.UpdateAnimal(ctx, owner, "B-1", ports.AnimalPatch{Sexo: ptr("Otro")})
	expectErr(t, err, domain.ErrValidation)
}

func TestLivestockService_UpdateMedicalInfo_Appends(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, _ := env.withCompany(t, "a@x.com", "Finca X")
	env.addAnimal(t, owner, "B-1")
	vet := domain.Actor{Email: "vet@x.com", Role: domain.RoleVeterinario}
	if _, err := env.companies.JoinCompany(ctx, vet, mustCompanyID(t, env, owner)); err != nil {
		t.Fatalf("JoinCompany returned error: %v", err)
	}

	first := ports.MedicalPatch{
		HistorialVacunas:         []domain.VaccineEntry{{Vacuna: "Aftosa", Fecha: "2026-03-01"}},
		ObservacionesVeterinario: ptr("Buen estado"),
	}
	if _, err := env.livestock.UpdateMedicalInfo(ctx, vet, "B-1", first); err != nil {
		t.Fatalf("UpdateMedicalInfo returned error: %v", err)
	}
	second := ports.MedicalPatch{
		HistorialVacunas:    []domain.VaccineEntry{{Vacuna: "Brucelosis", Fecha: "2026-03-09"}},
		TratamientosActivos: []domain.TreatmentEntry{{Medicamento: "Ivermectina", FechaInicio: "2026-03-09"}},
	}
	a, err := env.livestock.UpdateMedicalInfo(ctx, vet, "B-1", second)
	if err != nil {
		t.Fatalf("UpdateMedicalInfo returned error: %v", err)
	}

	rec := a.InformacionMedica
	if len(rec.HistorialVacunas) != 2 || rec.HistorialVacunas[0].Vacuna != "Aftosa" {
		t.Fatalf("expected appended vaccine history, got %+v", rec.HistorialVacunas)
	}
	if len(rec.TratamientosActivos) != 1 {
		t.Fatalf("expected one treatment, got %d", len(rec.TratamientosActivos))
	}
	if rec.ObservacionesVeterinario != "Buen estado" {
		t.Fatalf("unset scalar must keep its value, got %q", rec.ObservacionesVeterinario)
	}
	if rec.ActualizadoPor != vet.Email || rec.FechaUltimaActualizacion == nil {
		t.Fatalf("expected medical update stamp, got %+v", rec)
	}
}

func TestLivestockService_DeleteAnimal_CleansGroupAndOccupancy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, _ := env.withCompany(t, "a@x.com", "Finca X")
	ids := env.herd(t, owner, "B", 3)
	env.addGroup(t, owner, "G1", ids...)
	p := env.addPasture(t, owner, 5)
	if _, err := env.pastures.AssignGroup(ctx, owner, p.ID, "G1"); err != nil {
		t.Fatalf("AssignGroup returned error: %v", err)
	}

	if err := env.livestock.DeleteAnimal(ctx, owner, ids[0]); err != nil {
		t.Fatalf("DeleteAnimal returned error: %v", err)
	}

	g, _ := env.groups.GetGroup(ctx, owner, "G1")
	if g.HasMember(ids[0]) || len(g.Members) != 2 {
		t.Fatalf("expected %s removed from G1, got %v", ids[0], g.Members)
	}
	pasture, _ := env.pastures.GetPasture(ctx, owner, p.ID)
	if pasture.OcupacionActual != 2 {
		t.Fatalf("expected occupancy 2, got %d", pasture.OcupacionActual)
	}
	_, err := env.livestock.GetAnimal(ctx, owner, ids[0])
	expectErr(t, err, domain.ErrNotFound)

	err = env.livestock.DeleteAnimal(ctx, owner, ids[0])
	expectErr(t, err, domain.ErrNotFound)
	env.assertConsistent(t, owner)
}

func mustCompanyID(t *testing.T, env *testEnv, actor domain.Actor) string {
	t.Helper()
	id, err := env.companies.CompanyIDFor(context.Background(), actor.Email)
	if err != nil || id == "" {
		t.Fatalf("CompanyIDFor(%s) = %q, %v", actor.Email, id, err)
	}
	return id
}
