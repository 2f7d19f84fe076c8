package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fincatec/domain-store/internal/core/domain"
	"github.com/fincatec/domain-store/internal/core/ports"
	"github.com/fincatec/domain-store/internal/infrastructure/db/memory"
)

func TestDomainStore_SessionDrivenFlow(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	now := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	store := NewDomainStore(kv, zerolog.Nop(), Options{
		JWTSecret:  "secret",
		SessionTTL: time.Hour,
		Clock:      func() time.Time { return now },
	})

	if _, err := store.Sessions.Register(ctx, registerInput("ana@finca.com")); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := store.Sessions.Login(ctx, "ana@finca.com", "pass123"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	actor, err := store.Sessions.CurrentActor(ctx)
	if err != nil {
		t.Fatalf("CurrentActor returned error: %v", err)
	}
	if _, err := store.Companies.CreateCompany(ctx, actor, ports.CreateCompanyInput{Name: "Finca X", Location: "Guanacaste"}); err != nil {
		t.Fatalf("CreateCompany returned error: %v", err)
	}
	animal, err := store.Livestock.AddAnimal(ctx, actor, ports.AddAnimalInput{Identificacion: "B-1", Especie: "Bovino"})
	if err != nil {
		t.Fatalf("AddAnimal returned error: %v", err)
	}
	if !animal.CreatedAt.Equal(now) {
		t.Fatalf("expected the injected clock, got %v", animal.CreatedAt)
	}

	// A second store over the same backend sees the persisted state.
	reloaded := NewDomainStore(kv, zerolog.Nop(), Options{
		JWTSecret: "secret",
		Clock:     func() time.Time { return now.Add(time.Minute) },
	})
	user, err := reloaded.Sessions.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser after reload returned error: %v", err)
	}
	if user.Email != "ana@finca.com" || user.CompanyID == "" {
		t.Fatalf("unexpected restored user %+v", user)
	}
	got, err := reloaded.Livestock.GetAnimal(ctx, user.Actor(), "B-1")
	if err != nil {
		t.Fatalf("GetAnimal returned error: %v", err)
	}
	if got.Foto != domain.PhotoBovino {
		t.Fatalf("unexpected animal after reload %+v", got)
	}
}

func TestDomainStore_TagsServiceLogsWithComponent(t *testing.T) {
	var buf bytes.Buffer
	store := NewDomainStore(memory.NewKVStore(), zerolog.New(&buf), Options{JWTSecret: "secret"})

	actor := domain.Actor{Email: "ana@finca.com", Role: domain.RoleFinquero}
	if _, err := store.Companies.CreateCompany(context.Background(), actor, ports.CreateCompanyInput{Name: "Finca X", Location: "Guanacaste"}); err != nil {
		t.Fatalf("CreateCompany returned error: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected one JSON log entry, got %q: %v", buf.String(), err)
	}
	if entry["component"] != "company" || entry["message"] != "company created" {
		t.Fatalf("unexpected log entry %v", entry)
	}
}
