package weightcontrol

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"qms/internal/identity"
	domainerrors "qms/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	store   *MemoryStore
	service *Service
	actor   identity.Identity
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.service = NewService(s.store)
	s.actor = identity.Identity{ID: 4, Name: "Pedro Gomez", Role: identity.RoleOperator}
}

func (s *ServiceSuite) request(weights []string, seals [4]bool) CreateRequest {
	return CreateRequest{
		Product:     "Tomato sauce 500g",
		Lot:         "L-2408-17",
		Line:        "Filling 2",
		TargetGrams: 11.0,
		LowerGrams:  10.00,
		UpperGrams:  12.00,
		SealTop:     seals[0],
		SealBottom:  seals[1],
		SealLeft:    seals[2],
		SealRight:   seals[3],
		Weights:     weights,
	}
}

var allSealed = [4]bool{true, true, true, true}

func (s *ServiceSuite) TestVerdictDerivation() {
	cases := []struct {
		name    string
		weights []string
		seals   [4]bool
		want    Verdict
	}{
		{"all within limits", []string{"10.5", "11.9", "12.0"}, allSealed, VerdictApproved},
		{"boundary values count as within", []string{"10.00", "12.00"}, allSealed, VerdictApproved},
		{"one sample above upper", []string{"10.5", "13.2", "11.0"}, allSealed, VerdictRejected},
		{"one sample below lower", []string{"9.99", "11.0"}, allSealed, VerdictRejected},
		{"in range but one seal failed", []string{"10.5", "11.0"}, [4]bool{true, true, false, true}, VerdictRejected},
		{"empty reading counts as zero", []string{"11.0", ""}, allSealed, VerdictRejected},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			created, err := s.service.Create(context.Background(), s.actor, s.request(tc.weights, tc.seals))
			s.Require().NoError(err)
			s.Equal(tc.want, created.Verdict)
		})
	}
}

func (s *ServiceSuite) TestWeightsRoundedToTwoDecimals() {
	created, err := s.service.Create(context.Background(), s.actor, s.request([]string{"10.555"}, allSealed))
	s.Require().NoError(err)

	detail, err := s.service.Get(context.Background(), created.ID)
	s.Require().NoError(err)
	s.Require().Len(detail.Samples, 1)
	s.Equal(10.56, detail.Samples[0].Grams)
}

func (s *ServiceSuite) TestCreateValidation() {
	cases := []struct {
		name string
		req  CreateRequest
	}{
		{"missing product", CreateRequest{Lot: "L-1", LowerGrams: 10, UpperGrams: 12, Weights: []string{"11"}}},
		{"missing lot", CreateRequest{Product: "P", LowerGrams: 10, UpperGrams: 12, Weights: []string{"11"}}},
		{"inverted limits", CreateRequest{Product: "P", Lot: "L-1", LowerGrams: 12, UpperGrams: 10, Weights: []string{"11"}}},
		{"no samples", CreateRequest{Product: "P", Lot: "L-1", LowerGrams: 10, UpperGrams: 12}},
		{"non-numeric weight", CreateRequest{Product: "P", Lot: "L-1", LowerGrams: 10, UpperGrams: 12, Weights: []string{"abc"}}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.Create(context.Background(), s.actor, tc.req)
			s.True(domainerrors.Is(err, domainerrors.CodeValidation), "expected validation error, got %v", err)
		})
	}
	s.Equal(0, s.store.RecordCount())
}

func (s *ServiceSuite) TestCreateIsAtomic() {
	failing := &failOnSample{MemoryStore: s.store, failAt: 2}
	service := NewService(failing)

	_, err := service.Create(context.Background(), s.actor, s.request([]string{"10.5", "11.0", "11.5"}, allSealed))
	s.True(domainerrors.Is(err, domainerrors.CodePersistence))
	s.Equal(0, s.store.RecordCount())
	s.Equal(0, s.store.SampleCount())
}

func (s *ServiceSuite) TestGetUnknownID() {
	_, err := s.service.Get(context.Background(), 404)
	s.True(domainerrors.Is(err, domainerrors.CodeNotFound))
}

// failOnSample fails the nth InsertSample call to exercise rollback.
type failOnSample struct {
	*MemoryStore
	failAt int
	calls  int
}

func (f *failOnSample) InsertSample(ctx context.Context, sample *Sample) error {
	f.calls++
	if f.calls == f.failAt {
		return errors.New("disk full")
	}
	return f.MemoryStore.InsertSample(ctx, sample)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}
