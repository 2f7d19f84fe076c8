package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fincatec/domain-store/internal/core/domain"
	"github.com/fincatec/domain-store/internal/core/ports"
)

// SessionService implements registration, login and the persisted session.
type SessionService struct {
	col       *Collections
	jwtSecret string
	tokenTTL  time.Duration
	validate  *inputValidator
	log       zerolog.Logger
}

var _ ports.SessionService = (*SessionService)(nil)

func NewSessionService(col *Collections, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *SessionService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &SessionService{
		col:       col,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		validate:  newInputValidator(),
		log:       log,
	}
}

func (s *SessionService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	user, err := s.register(ctx, in)
	observe("register", err)
	return user, err
}

func (s *SessionService) register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.check(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := domain.User{
		Email:        in.Email,
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		Role:         in.Role,
		CreatedAt:    s.col.Now(),
	}

	err = s.col.Update(ctx, func(tx *Tx) error {
		users, err := tx.Users()
		if err != nil {
			return err
		}
		for _, u := range users {
			if domain.SameEmail(u.Email, user.Email) {
				return fmt.Errorf("%w: %s", domain.ErrUserExists, user.Email)
			}
		}
		tx.SetUsers(append(users, user))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("email", user.Email).Str("role", user.Role).Msg("user registered")
	return &user, nil
}

// Login checks the credentials and persists the session under currentUser.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := s.login(ctx, email, password)
	observe("login", err)
	return session, err
}

func (s *SessionService) login(ctx context.Context, email, password string) (*domain.Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	var session *domain.Session
	err := s.col.Update(ctx, func(tx *Tx) error {
		users, err := tx.Users()
		if err != nil {
			return err
		}
		for _, u := range users {
			if !domain.SameEmail(u.Email, email) {
				continue
			}
			if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
				return domain.ErrInvalidCredentials
			}
			now := s.col.Now()
			token, err := s.generateToken(u, now)
			if err != nil {
				return err
			}
			u.PasswordHash = ""
			session = &domain.Session{User: u, Token: token, IssuedAt: now}
			tx.SetSession(session)
			return nil
		}
		return domain.ErrInvalidCredentials
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("email", session.User.Email).Msg("user logged in")
	return session, nil
}

// Logout clears the persisted session.
func (s *SessionService) Logout(ctx context.Context) error {
	err := s.col.Update(ctx, func(tx *Tx) error {
		tx.SetSession(nil)
		return nil
	})
	observe("logout", err)
	return err
}

// CurrentUser restores the logged-in user. An expired or tampered session is
// cleared and reported as ErrNotAuthenticated.
func (s *SessionService) CurrentUser(ctx context.Context) (*domain.User, error) {
	var (
		user    *domain.User
		expired bool
	)
	err := s.col.Update(ctx, func(tx *Tx) error {
		session, err := tx.Session()
		if err != nil {
			return err
		}
		if session == nil {
			return domain.ErrNotAuthenticated
		}
		if err := s.verifyToken(session.Token, session.User.Email); err != nil {
			s.log.Info().Err(err).Str("email", session.User.Email).Msg("session discarded")
			tx.SetSession(nil)
			expired = true
			return nil
		}

		users, err := tx.Users()
		if err != nil {
			return err
		}
		for _, u := range users {
			if domain.SameEmail(u.Email, session.User.Email) {
				u.PasswordHash = ""
				user = &u
				return nil
			}
		}
		return fmt.Errorf("%w: user %s no longer exists", domain.ErrNotAuthenticated, session.User.Email)
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, fmt.Errorf("%w: session expired", domain.ErrNotAuthenticated)
	}
	return user, nil
}

// CurrentActor is CurrentUser reduced to the identity the other services take.
func (s *SessionService) CurrentActor(ctx context.Context) (domain.Actor, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return domain.Actor{}, err
	}
	return user.Actor(), nil
}

// CurrentCompanyID returns the company of the logged-in user, or "".
func (s *SessionService) CurrentCompanyID(ctx context.Context) (string, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	var id string
	err = s.col.View(ctx, func(tx *Tx) error {
		id, err = companyOf(tx, user.Email)
		return err
	})
	return id, err
}

func (s *SessionService) generateToken(u domain.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  u.Email,
		"role": u.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *SessionService) verifyToken(token, email string) error {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.col.Now))
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return errors.New("invalid token")
	}
	sub, _ := claims.GetSubject()
	if !domain.SameEmail(sub, email) {
		return errors.New("token subject mismatch")
	}
	return nil
}
