package suppliers

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
	actor   identity.Identity
}

func (s *ServiceSuite) SetupTest() {
	master := NewMemoryMasterStore(
		Supplier{Code: "SUP-001", Name: "Empaques del Norte", Category: "Packaging", Active: true},
		Supplier{Code: "SUP-002", Name: "Harinas Industriales", Category: "Raw material", Active: true},
	)
	s.service = NewService(NewMemoryEvaluationStore(), master)
	s.actor = identity.Identity{ID: 2, Name: "Maria Lopez", Role: identity.RoleQualityAdmin}
}

func (s *ServiceSuite) TestCreateResolvesSupplierName() {
	created, err := s.service.Create(context.Background(), s.actor, CreateRequest{
		SupplierCode:  "SUP-001",
		Period:        "2026-Q3",
		QualityScore:  90,
		DeliveryScore: 80,
		ServiceScore:  85,
	})
	s.Require().NoError(err)
	s.Equal("Empaques del Norte", created.SupplierName)
	s.Equal(85.0, created.OverallScore)
}

func (s *ServiceSuite) TestOverallScoreRounded() {
	created, err := s.service.Create(context.Background(), s.actor, CreateRequest{
		SupplierCode:  "SUP-001",
		Period:        "2026-Q3",
		QualityScore:  90,
		DeliveryScore: 85,
		ServiceScore:  81,
	})
	s.Require().NoError(err)
	// (90+85+81)/3 = 85.333...
	s.Equal(85.33, created.OverallScore)
}

func (s *ServiceSuite) TestCreateValidation() {
	cases := []struct {
		name string
		req  CreateRequest
	}{
		{"missing supplier", CreateRequest{Period: "2026-Q3", QualityScore: 90}},
		{"unknown supplier", CreateRequest{SupplierCode: "SUP-404", Period: "2026-Q3"}},
		{"bad period", CreateRequest{SupplierCode: "SUP-001", Period: "Q3-2026"}},
		{"score out of range", CreateRequest{SupplierCode: "SUP-001", Period: "2026-Q3", QualityScore: 120}},
		{"negative score", CreateRequest{SupplierCode: "SUP-001", Period: "2026-Q3", ServiceScore: -1}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.Create(context.Background(), s.actor, tc.req)
			s.True(domainerrors.Is(err, domainerrors.CodeValidation), "expected validation error, got %v", err)
		})
	}
}

func (s *ServiceSuite) TestListSuppliersSortedByName() {
	sups, err := s.service.ListSuppliers(context.Background())
	s.Require().NoError(err)
	s.Require().Len(sups, 2)
	s.Equal("Empaques del Norte", sups[0].Name)
	s.Equal("Harinas Industriales", sups[1].Name)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}
