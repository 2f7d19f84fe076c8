package service

import (
	"context"
	"testing"

	"github.com/fincatec/domain-store/internal/core/domain"
	"github.com/fincatec/domain-store/internal/core/ports"
)

func TestCompanyService_CreateCompany_OwnerIsMember(t *testing.T) {
	env := newTestEnv(t)
	owner, company := env.withCompany(t, "a@x.com", "Finca X")

	if company.ID == "" {
		t.Fatalf("expected a generated id")
	}
	if company.Owner != "a@x.com" {
		t.Fatalf("unexpected owner %q", company.Owner)
	}
	if !company.HasMember(owner.Email) {
		t.Fatalf("owner must be listed in members")
	}
	if !env.companies.IsOwner(*company, owner) {
		t.Fatalf("expected IsOwner true for the creator")
	}
	if env.companies.IsOwner(*company, domain.Actor{Email: "b@x.com"}) {
		t.Fatalf("expected IsOwner false for another caller")
	}
	if !env.companies.IsOwner(*company, domain.Actor{Email: "A@X.com"}) {
		t.Fatalf("owner comparison must ignore case")
	}
}

func TestCompanyService_CreateCompany_RequiresIdentity(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.companies.CreateCompany(context.Background(), domain.Actor{}, ports.CreateCompanyInput{
		Name:     "Finca X",
		Location: "Heredia",
	})
	expectErr(t, err, domain.ErrValidation)
}

func TestCompanyService_CreateCompany_RejectsExistingMember(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.withCompany(t, "a@x.com", "Finca X")

	_, err := env.companies.CreateCompany(context.Background(), owner, ports.CreateCompanyInput{
		Name:     "Finca Y",
		Location: "Limon",
	})
	expectErr(t, err, domain.ErrAlreadyMember)
}

func TestCompanyService_JoinCompany(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, company := env.withCompany(t, "a@x.com", "Finca X")

	worker := domain.Actor{Email: "b@x.com", Role: domain.RoleFinquero}

	_, err := env.companies.JoinCompany(ctx, worker, "missing")
	expectErr(t, err, domain.ErrNotFound)

	joined, err := env.companies.JoinCompany(ctx, worker, company.ID)
	if err != nil {
		t.Fatalf("JoinCompany returned error: %v", err)
	}
	if !joined.HasMember(worker.Email) {
		t.Fatalf("expected %s in members", worker.Email)
	}

	_, err = env.companies.JoinCompany(ctx, worker, company.ID)
	expectErr(t, err, domain.ErrAlreadyMember)

	id, err := env.companies.CompanyIDFor(ctx, "B@X.COM")
	if err != nil {
		t.Fatalf("CompanyIDFor returned error: %v", err)
	}
	if id != company.ID {
		t.Fatalf("expected company %s, got %q", company.ID, id)
	}
}

func TestCompanyService_JoinCompany_RejectsMemberOfAnotherCompany(t *testing.T) {
	env := newTestEnv(t)
	_, first := env.withCompany(t, "a@x.com", "Finca X")
	other, _ := env.withCompany(t, "c@y.com", "Finca Y")

	_, err := env.companies.JoinCompany(context.Background(), other, first.ID)
	expectErr(t, err, domain.ErrAlreadyMember)
}

func TestCompanyService_JoinAndLeaveKeepUserInSync(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, company := env.withCompany(t, "a@x.com", "Finca X")

	if _, err := env.sessions.Register(ctx, registerInput("b@x.com")); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	worker := domain.Actor{Email: "b@x.com"}
	if _, err := env.companies.JoinCompany(ctx, worker, company.ID); err != nil {
		t.Fatalf("JoinCompany returned error: %v", err)
	}

	userCompany := func() string {
		var id string
		err := env.col.View(ctx, func(tx *Tx) error {
			users, err := tx.Users()
			if err != nil {
				return err
			}
			for _, u := range users {
				if u.Email == "b@x.com" {
					id = u.CompanyID
				}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("View returned error: %v", err)
		}
		return id
	}

	if got := userCompany(); got != company.ID {
		t.Fatalf("expected user.companyId %s, got %q", company.ID, got)
	}
	if err := env.companies.LeaveCompany(ctx, worker); err != nil {
		t.Fatalf("LeaveCompany returned error: %v", err)
	}
	if got := userCompany(); got != "" {
		t.Fatalf("expected user.companyId cleared, got %q", got)
	}

	_, err := env.companies.MyCompany(ctx, worker)
	expectErr(t, err, domain.ErrNoCompany)
}

func TestCompanyService_LeaveCompany(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, company := env.withCompany(t, "a@x.com", "Finca X")

	err := env.companies.LeaveCompany(ctx, owner)
	expectErr(t, err, domain.ErrOwnerCannotLeave)

	err = env.companies.LeaveCompany(ctx, domain.Actor{Email: "stranger@x.com"})
	expectErr(t, err, domain.ErrNoCompany)

	mine, err := env.companies.MyCompany(ctx, owner)
	if err != nil {
		t.Fatalf("MyCompany returned error: %v", err)
	}
	if mine.ID != company.ID || len(mine.Members) != 1 {
		t.Fatalf("unexpected company after failed leave: %+v", mine)
	}
}

func TestCompanyService_ListAndGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, x := env.withCompany(t, "a@x.com", "Finca X")
	_, y := env.withCompany(t, "c@y.com", "Finca Y")

	companies, err := env.companies.ListCompanies(ctx)
	if err != nil {
		t.Fatalf("ListCompanies returned error: %v", err)
	}
	if len(companies) != 2 || companies[0].ID != x.ID || companies[1].ID != y.ID {
		t.Fatalf("expected companies in creation order, got %+v", companies)
	}

	got, err := env.companies.GetCompany(ctx, y.ID)
	if err != nil {
		t.Fatalf("GetCompany returned error: %v", err)
	}
	if got.Name != "Finca Y" {
		t.Fatalf("unexpected company %q", got.Name)
	}

	_, err = env.companies.GetCompany(ctx, "missing")
	expectErr(t, err, domain.ErrNotFound)
}
