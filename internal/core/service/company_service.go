package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fincatec/domain-store/internal/core/domain"
	"github.com/fincatec/domain-store/internal/core/ports"
)

// CompanyService implements the company registry. A user belongs to at most
// one company.
type CompanyService struct {
	col      *Collections
	validate *inputValidator
	log      zerolog.Logger
}

var _ ports.CompanyService = (*CompanyService)(nil)

func NewCompanyService(col *Collections, log zerolog.Logger) *CompanyService {
	return &CompanyService{col: col, validate: newInputValidator(), log: log}
}

func (s *CompanyService) CreateCompany(ctx context.Context, actor domain.Actor, in ports.CreateCompanyInput) (*domain.Company, error) {
	company, err := s.createCompany(ctx, actor, in)
	observe("create_company", err)
	return company, err
}

func (s *CompanyService) createCompany(ctx context.Context, actor domain.Actor, in ports.CreateCompanyInput) (*domain.Company, error) {
	if strings.TrimSpace(actor.Email) == "" {
		return nil, fmt.Errorf("%w: a logged-in user is required to create a company", domain.ErrValidation)
	}
	if err := s.validate.check(in); err != nil {
		return nil, err
	}

	company := domain.Company{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Photo:       in.Photo,
		Location:    strings.TrimSpace(in.Location),
		Owner:       actor.Email,
		Members:     []string{actor.Email},
		CreatedAt:   s.col.Now(),
	}

	err := s.col.Update(ctx, func(tx *Tx) error {
		current, err := companyOf(tx, actor.Email)
		if err != nil {
			return err
		}
		if current != "" {
			return fmt.Errorf("%w: %s already belongs to company %s", domain.ErrAlreadyMember, actor.Email, current)
		}

		companies, err := tx.Companies()
		if err != nil {
			return err
		}
		tx.SetCompanies(append(companies, company))
		return setUserCompany(tx, actor.Email, company.ID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("company_id", company.ID).Str("owner", company.Owner).Msg("company created")
	return &company, nil
}

func (s *CompanyService) JoinCompany(ctx context.Context, actor domain.Actor, companyID string) (*domain.Company, error) {
	company, err := s.joinCompany(ctx, actor, companyID)
	observe("join_company", err)
	return company, err
}

func (s *CompanyService) joinCompany(ctx context.Context, actor domain.Actor, companyID string) (*domain.Company, error) {
	if strings.TrimSpace(actor.Email) == "" {
		return nil, fmt.Errorf("%w: a logged-in user is required to join a company", domain.ErrValidation)
	}

	var joined domain.Company
	err := s.col.Update(ctx, func(tx *Tx) error {
		companies, err := tx.Companies()
		if err != nil {
			return err
		}
		idx := -1
		for i, c := range companies {
			if c.ID == companyID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: company %s", domain.ErrNotFound, companyID)
		}
		if companies[idx].HasMember(actor.Email) {
			return fmt.Errorf("%w: %s already belongs to %s", domain.ErrAlreadyMember, actor.Email, companies[idx].Name)
		}

		current, err := companyOf(tx, actor.Email)
		if err != nil {
			return err
		}
		if current != "" {
			return fmt.Errorf("%w: %s already belongs to company %s", domain.ErrAlreadyMember, actor.Email, current)
		}

		companies[idx].Members = append(companies[idx].Members, actor.Email)
		joined = companies[idx]
		tx.SetCompanies(companies)
		return setUserCompany(tx, actor.Email, companyID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("company_id", joined.ID).Str("email", actor.Email).Msg("company joined")
	return &joined, nil
}

func (s *CompanyService) LeaveCompany(ctx context.Context, actor domain.Actor) error {
	err := s.col.Update(ctx, func(tx *Tx) error {
		companies, err := tx.Companies()
		if err != nil {
			return err
		}
		for i, c := range companies {
			if !c.HasMember(actor.Email) {
				continue
			}
			if c.IsOwner(actor.Email) {
				return fmt.Errorf("%w: %s owns %s", domain.ErrOwnerCannotLeave, actor.Email, c.Name)
			}
			members := make([]string, 0, len(c.Members))
			for _, m := range c.Members {
				if !domain.SameEmail(m, actor.Email) {
					members = append(members, m)
				}
			}
			companies[i].Members = members
			tx.SetCompanies(companies)
			return setUserCompany(tx, actor.Email, "")
		}
		return fmt.Errorf("%w: %s does not belong to a company", domain.ErrNoCompany, actor.Email)
	})
	observe("leave_company", err)
	if err != nil {
		return err
	}

	s.log.Info().Str("email", actor.Email).Msg("company left")
	return nil
}

// IsOwner reports whether actor owns company.
func (s *CompanyService) IsOwner(company domain.Company, actor domain.Actor) bool {
	return company.IsOwner(actor.Email)
}

func (s *CompanyService) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	var company *domain.Company
	err := s.col.View(ctx, func(tx *Tx) error {
		companies, err := tx.Companies()
		if err != nil {
			return err
		}
		for _, c := range companies {
			if c.ID == id {
				company = &c
				return nil
			}
		}
		return fmt.Errorf("%w: company %s", domain.ErrNotFound, id)
	})
	return company, err
}

func (s *CompanyService) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	var companies []domain.Company
	err := s.col.View(ctx, func(tx *Tx) error {
		var err error
		companies, err = tx.Companies()
		return err
	})
	return companies, err
}

// CompanyIDFor returns the company email belongs to, or "".
func (s *CompanyService) CompanyIDFor(ctx context.Context, email string) (string, error) {
	var id string
	err := s.col.View(ctx, func(tx *Tx) error {
		var err error
		id, err = companyOf(tx, email)
		return err
	})
	return id, err
}

// MyCompany returns the company actor belongs to.
func (s *CompanyService) MyCompany(ctx context.Context, actor domain.Actor) (*domain.Company, error) {
	id, err := s.CompanyIDFor(ctx, actor.Email)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%w: %s does not belong to a company", domain.ErrNoCompany, actor.Email)
	}
	return s.GetCompany(ctx, id)
}

// setUserCompany mirrors membership onto the registered user, if any.
func setUserCompany(tx *Tx, email, companyID string) error {
	users, err := tx.Users()
	if err != nil {
		return err
	}
	for i := range users {
		if domain.SameEmail(users[i].Email, email) {
			users[i].CompanyID = companyID
			tx.SetUsers(users)
			return nil
		}
	}
	return nil
}
