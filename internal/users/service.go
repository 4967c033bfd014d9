package users

import (
	"context"
	"errors"

	"github.com/asaskevich/govalidator"
	"golang.org/x/crypto/bcrypt"

	"qms/internal/identity"
	"qms/pkg/platform/sentinel"

	domainerrors "qms/pkg/domain-errors"
)

// Service owns account rules: field validation, role parsing, password
// hashing, conflict translation.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*User, error) {
	if err := validateAccountFields(req.Name, req.Email); err != nil {
		return nil, err
	}
	if len(req.Password) < 8 {
		return nil, domainerrors.New(domainerrors.CodeValidation, "password must be at least 8 characters")
	}
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeValidation, "invalid role", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "failed to hash password", err)
	}

	user := &User{
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, domainerrors.New(domainerrors.CodeConflict, "email already registered")
		}
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to create user", err)
	}
	return user, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*User, error) {
	if err := validateAccountFields(req.Name, req.Email); err != nil {
		return nil, err
	}
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeValidation, "invalid role", err)
	}

	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookup(err)
	}
	user.Name = req.Name
	user.Email = req.Email
	user.Role = role

	if err := s.store.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, domainerrors.New(domainerrors.CodeNotFound, "user not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, domainerrors.New(domainerrors.CodeConflict, "email already registered")
		default:
			return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to update user", err)
		}
	}
	return user, nil
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if err := s.store.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domainerrors.New(domainerrors.CodeNotFound, "user not found")
		}
		return domainerrors.Wrap(domainerrors.CodePersistence, "failed to deactivate user", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to list users", err)
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookup(err)
	}
	return user, nil
}

// Authenticate checks a credential pair for login. Inactive accounts and
// unknown emails fail identically to avoid account enumeration.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	invalid := domainerrors.New(domainerrors.CodeUnauthenticated, "invalid credentials")

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, invalid
		}
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to look up user", err)
	}
	if !user.Active {
		return nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, invalid
	}
	return user, nil
}

func validateAccountFields(name, email string) error {
	if !govalidator.StringLength(name, "1", "120") {
		return domainerrors.New(domainerrors.CodeValidation, "name is required")
	}
	if !govalidator.IsEmail(email) {
		return domainerrors.New(domainerrors.CodeValidation, "invalid email")
	}
	return nil
}

func translateLookup(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return domainerrors.New(domainerrors.CodeNotFound, "user not found")
	}
	return domainerrors.Wrap(domainerrors.CodePersistence, "failed to load user", err)
}
