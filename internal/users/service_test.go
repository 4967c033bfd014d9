package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"qms/internal/identity"
	domainerrors "qms/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func (s *ServiceSuite) SetupTest() {
	s.service = NewService(NewMemoryStore())
}

func (s *ServiceSuite) create(email string) *User {
	user, err := s.service.Create(context.Background(), CreateRequest{
		Name:     "Maria Lopez",
		Email:    email,
		Role:     "AdminCalidad",
		Password: "correct-horse",
	})
	s.Require().NoError(err)
	return user
}

func (s *ServiceSuite) TestCreateHashesPassword() {
	user := s.create("maria@example.com")
	s.NotEmpty(user.PasswordHash)
	s.NotContains(user.PasswordHash, "correct-horse")
	s.Equal(identity.RoleQualityAdmin, user.Role)
	s.True(user.Active)
}

func (s *ServiceSuite) TestCreateMigratesLegacyAdminRole() {
	user, err := s.service.Create(context.Background(), CreateRequest{
		Name:     "Old Admin",
		Email:    "admin@example.com",
		Role:     "Admin",
		Password: "correct-horse",
	})
	s.Require().NoError(err)
	s.Equal(identity.RoleSuperAdmin, user.Role)
}

func (s *ServiceSuite) TestCreateValidation() {
	cases := []struct {
		name string
		req  CreateRequest
		want domainerrors.Code
	}{
		{"missing name", CreateRequest{Email: "a@b.com", Role: "Auditor", Password: "longenough"}, domainerrors.CodeValidation},
		{"bad email", CreateRequest{Name: "A", Email: "not-an-email", Role: "Auditor", Password: "longenough"}, domainerrors.CodeValidation},
		{"short password", CreateRequest{Name: "A", Email: "a@b.com", Role: "Auditor", Password: "short"}, domainerrors.CodeValidation},
		{"unknown role", CreateRequest{Name: "A", Email: "a@b.com", Role: "Wizard", Password: "longenough"}, domainerrors.CodeValidation},
		{"wrong role casing", CreateRequest{Name: "A", Email: "a@b.com", Role: "auditor", Password: "longenough"}, domainerrors.CodeValidation},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.Create(context.Background(), tc.req)
			s.True(domainerrors.Is(err, tc.want), "expected %s, got %v", tc.want, err)
		})
	}
}

func (s *ServiceSuite) TestCreateDuplicateEmail() {
	s.create("maria@example.com")
	_, err := s.service.Create(context.Background(), CreateRequest{
		Name:     "Other",
		Email:    "MARIA@example.com",
		Role:     "Auditor",
		Password: "correct-horse",
	})
	s.True(domainerrors.Is(err, domainerrors.CodeConflict))
}

func (s *ServiceSuite) TestAuthenticate() {
	s.create("maria@example.com")

	user, err := s.service.Authenticate(context.Background(), "maria@example.com", "correct-horse")
	s.Require().NoError(err)
	s.Equal("Maria Lopez", user.Name)
}

func (s *ServiceSuite) TestAuthenticateFailsUniformly() {
	created := s.create("maria@example.com")

	// Unknown email, wrong password, and deactivated account all return the
	// same message so callers cannot enumerate accounts.
	cases := []struct {
		name  string
		setup func()
		email string
		pass  string
	}{
		{"unknown email", func() {}, "nobody@example.com", "correct-horse"},
		{"wrong password", func() {}, "maria@example.com", "wrong"},
		{"deactivated account", func() {
			s.Require().NoError(s.service.Deactivate(context.Background(), created.ID))
		}, "maria@example.com", "correct-horse"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			tc.setup()
			_, err := s.service.Authenticate(context.Background(), tc.email, tc.pass)
			s.Require().Error(err)
			s.True(domainerrors.Is(err, domainerrors.CodeUnauthenticated))
			s.Equal("invalid credentials", err.(*domainerrors.Error).Message)
		})
	}
}

func (s *ServiceSuite) TestUpdate() {
	created := s.create("maria@example.com")

	updated, err := s.service.Update(context.Background(), created.ID, UpdateRequest{
		Name:  "Maria Lopez Garcia",
		Email: "maria.garcia@example.com",
		Role:  "Supervisor",
	})
	s.Require().NoError(err)
	s.Equal(identity.RoleSupervisor, updated.Role)
	s.Equal("Maria Lopez Garcia", updated.Name)
}

func (s *ServiceSuite) TestUpdateUnknownID() {
	_, err := s.service.Update(context.Background(), 404, UpdateRequest{
		Name: "X", Email: "x@example.com", Role: "Auditor",
	})
	s.True(domainerrors.Is(err, domainerrors.CodeNotFound))
}

func (s *ServiceSuite) TestDeactivateUnknownID() {
	err := s.service.Deactivate(context.Background(), 404)
	s.True(domainerrors.Is(err, domainerrors.CodeNotFound))
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}
