package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/glowdesk/salon-platform/pkg/logging"
)

// ProfileCreator provisions the customer profile that backs a newly
// registered user. Wired to the customers repository at startup.
type ProfileCreator interface {
	CreateProfile(ctx context.Context, id, name, email string) error
}

// Service implements registration and login on top of the user store.
type Service struct {
	repo     *Repository
	issuer   *TokenIssuer
	profiles ProfileCreator
	logger   *logging.Logger
}

func NewService(repo *Repository, issuer *TokenIssuer, profiles ProfileCreator, logger *logging.Logger) *Service {
	if repo == nil {
		panic("identity: repository cannot be nil")
	}
	if issuer == nil {
		panic("identity: token issuer cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, issuer: issuer, profiles: profiles, logger: logger}
}

// Session is the result of a successful login or registration.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if normalizeEmail(email) == "" {
		return ErrMissingEmail
	}
	if password == "" {
		return ErrMissingPassword
	}
	if len(password) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a customer user plus its customer profile and opens a
// session.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	email = normalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("identity: hash password: %w", err)
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if s.profiles != nil {
		if err := s.profiles.CreateProfile(ctx, user.ID, name, email); err != nil {
			s.logger.Error("customer profile provisioning failed", "error", err, "user_id", user.ID)
		}
	}

	token, err := s.issuer.Issue(user.ID, RoleCustomer)
	if err != nil {
		return nil, err
	}
	s.logger.Info("customer registered", "user_id", user.ID)
	return &Session{Token: token, UserID: user.ID, Role: RoleCustomer}, nil
}

// Login verifies credentials and resolves the principal's role from the
// admin marker document. Absence of the marker means customer.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrBadCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}

	role := RoleCustomer
	isAdmin, err := s.repo.HasAdminMarker(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		role = RoleAdmin
	}

	token, err := s.issuer.Issue(user.ID, role)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, UserID: user.ID, Role: role}, nil
}

// AdminLogin behaves like Login but treats an unknown email as an implicit
// first-time admin signup: the user record and its admin marker are created
// together, then the session proceeds. An existing user without the marker is
// rejected rather than silently promoted.
func (s *Service) AdminLogin(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrBadCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return s.provisionAdmin(ctx, email, password)
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	isAdmin, err := s.repo.HasAdminMarker(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, ErrBadCredentials
	}

	token, err := s.issuer.Issue(user.ID, RoleAdmin)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, UserID: user.ID, Role: RoleAdmin}, nil
}

// GrantAdmin promotes an existing account by writing its admin marker. The
// account is resolved by email; an unknown address is ErrUserNotFound.
func (s *Service) GrantAdmin(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrMissingEmail
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.repo.GrantAdmin(ctx, user.ID); err != nil {
		return err
	}
	s.logger.Info("admin role granted", "user_id", user.ID)
	return nil
}

func (s *Service) provisionAdmin(ctx context.Context, email, password string) (*Session, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("identity: hash password: %w", err)
	}
	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repo.ProvisionAdmin(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.issuer.Issue(user.ID, RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.Info("admin provisioned on first login", "user_id", user.ID)
	return &Session{Token: token, UserID: user.ID, Role: RoleAdmin}, nil
}
