package plantaudits

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"qms/internal/identity"
	"qms/internal/uploads"
	domainerrors "qms/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	store   *MemoryStore
	service *Service
	ctx     context.Context
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.service = NewService(s.store)
	s.ctx = context.Background()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func supervisor() identity.Identity {
	return identity.Identity{ID: 4, Name: "Luis Mora", Role: identity.RoleSupervisor}
}

func serviceAuditor() identity.Identity {
	return identity.Identity{ID: 9, Name: "Eva Ruiz", Role: identity.RoleAuditor}
}

func validRequest() CreateRequest {
	return CreateRequest{
		Title:     "Línea 2 — inspección mensual",
		Area:      "Envasado",
		AuditDate: "2026-08-15",
		Findings: []FindingRequest{
			{Severity: "Minor", Description: "Etiquetadora sin calibrar"},
			{Severity: "Major", Description: "Registro de limpieza incompleto"},
		},
	}
}

func (s *ServiceSuite) TestCreatePersistsHeaderAndFindings() {
	created, err := s.service.Create(s.ctx, supervisor(), validRequest(), nil)
	s.Require().NoError(err)
	s.NotZero(created.ID)
	s.Equal(int64(4), created.CreatedBy)
	s.Equal("Luis Mora", created.CreatorName)
	s.True(created.Visible, "visible defaults to true")

	detail, err := s.service.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Len(detail.Findings, 2)
	s.Equal("Minor", detail.Findings[0].Severity)
}

func (s *ServiceSuite) TestCreateValidation() {
	s.Run("missing title", func() {
		req := validRequest()
		req.Title = ""
		_, err := s.service.Create(s.ctx, supervisor(), req, nil)
		s.Require().Error(err)
		s.True(domainerrors.Is(err, domainerrors.CodeValidation))
		s.Zero(s.store.AuditCount(), "no row written before validation")
	})

	s.Run("bad date", func() {
		req := validRequest()
		req.AuditDate = "15/08/2026"
		_, err := s.service.Create(s.ctx, supervisor(), req, nil)
		s.True(domainerrors.Is(err, domainerrors.CodeValidation))
	})

	s.Run("unknown severity", func() {
		req := validRequest()
		req.Findings[0].Severity = "Grave"
		_, err := s.service.Create(s.ctx, supervisor(), req, nil)
		s.True(domainerrors.Is(err, domainerrors.CodeValidation))
	})
}

// failOnFinding wraps the memory store and fails the k-th InsertFinding call,
// simulating a mid-transaction error.
type failOnFinding struct {
	*MemoryStore
	failAt int
	calls  int
}

func (f *failOnFinding) InsertFinding(ctx context.Context, finding *Finding) error {
	f.calls++
	if f.calls == f.failAt {
		return errors.New("constraint violation")
	}
	return f.MemoryStore.InsertFinding(ctx, finding)
}

func (s *ServiceSuite) TestCreateIsAtomic() {
	store := &failOnFinding{MemoryStore: s.store, failAt: 2}
	service := NewService(store)

	_, err := service.Create(s.ctx, supervisor(), validRequest(), nil)
	s.Require().Error(err)
	s.True(domainerrors.Is(err, domainerrors.CodePersistence))

	s.Zero(s.store.AuditCount(), "header rolled back")
	s.Zero(s.store.FindingCount(), "children rolled back")
}

func (s *ServiceSuite) TestCreateStoresAttachments() {
	files := []uploads.FileDescriptor{
		{Name: "reporte.pdf", StoredName: "ab12.pdf", RelPath: "uploads/ab12.pdf"},
	}
	created, err := s.service.Create(s.ctx, supervisor(), validRequest(), files)
	s.Require().NoError(err)

	detail, err := s.service.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Require().Len(detail.Attachments, 1)
	s.Equal("uploads/ab12.pdf", detail.Attachments[0].RelPath)
}

func (s *ServiceSuite) TestListVisibilityFiltering() {
	visible := validRequest()
	hidden := validRequest()
	hiddenFlag := false
	hidden.Visible = &hiddenFlag
	hidden.Title = "Auditoría interna reservada"

	_, err := s.service.Create(s.ctx, supervisor(), visible, nil)
	s.Require().NoError(err)
	_, err = s.service.Create(s.ctx, supervisor(), hidden, nil)
	s.Require().NoError(err)

	s.Run("non-privileged sees only visible", func() {
		got, err := s.service.List(s.ctx, identity.Identity{ID: 7, Role: identity.RoleOperator})
		s.Require().NoError(err)
		s.Len(got, 1)
		s.True(got[0].Visible)
	})

	s.Run("privileged sees full set", func() {
		got, err := s.service.List(s.ctx, serviceAuditor())
		s.Require().NoError(err)
		s.Len(got, 2)
	})
}

func (s *ServiceSuite) TestGetUnknownID() {
	_, err := s.service.Get(s.ctx, 999)
	s.Require().Error(err)
	s.True(domainerrors.Is(err, domainerrors.CodeNotFound))
}
