package ports

import (
	"context"

	"github.com/fincatec/domain-store/internal/core/domain"
)

// CreateCompanyInput carries the data needed to register a company.
type CreateCompanyInput struct {
	Name        string `validate:"required"`
	Description string
	Photo       string
	Location    string `validate:"required"`
}

// CompanyService manages the company registry and its membership.
type CompanyService interface {
	CreateCompany(ctx context.Context, actor domain.Actor, in CreateCompanyInput) (*domain.Company, error)
	JoinCompany(ctx context.Context, actor domain.Actor, companyID string) (*domain.Company, error)
	LeaveCompany(ctx context.Context, actor domain.Actor) error
	IsOwner(company domain.Company, actor domain.Actor) bool
	GetCompany(ctx context.Context, id string) (*domain.Company, error)
	ListCompanies(ctx context.Context) ([]domain.Company, error)
	CompanyIDFor(ctx context.Context, email string) (string, error)
	MyCompany(ctx context.Context, actor domain.Actor) (*domain.Company, error)
}
