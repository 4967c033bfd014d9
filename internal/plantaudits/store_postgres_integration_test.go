//go:build integration

package plantaudits_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"qms/internal/plantaudits"
	"qms/pkg/platform/sentinel"
	"qms/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *plantaudits.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = plantaudits.NewPostgresStore(containers.StaticPools{DB: s.postgres.DB})
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(),
		"quality_audit_attachments", "quality_audit_findings", "quality_audits")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newAudit(title string) *plantaudits.Audit {
	return &plantaudits.Audit{
		Title:       title,
		Area:        "Packaging",
		AuditDate:   time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		CreatedBy:   1,
		CreatorName: "Elena Ruiz",
		Visible:     true,
	}
}

func (s *PostgresStoreSuite) TestCreateAndGetDetail() {
	ctx := context.Background()

	audit := s.newAudit("GMP walkthrough")
	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.InsertHeader(ctx, audit); err != nil {
			return err
		}
		return s.store.InsertFinding(ctx, &plantaudits.Finding{
			AuditID: audit.ID, Severity: "Minor", Description: "Hairnet station low",
		})
	})
	s.Require().NoError(err)
	s.Require().NotZero(audit.ID)

	detail, err := s.store.GetDetail(ctx, audit.ID)
	s.Require().NoError(err)
	s.Equal("GMP walkthrough", detail.Header.Title)
	s.Require().Len(detail.Findings, 1)
	s.Equal("Minor", detail.Findings[0].Severity)
}

func (s *PostgresStoreSuite) TestRollbackLeavesNothing() {
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		audit := s.newAudit("Doomed audit")
		if err := s.store.InsertHeader(ctx, audit); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	audits, err := s.store.List(ctx, false)
	s.Require().NoError(err)
	s.Empty(audits)
}

func (s *PostgresStoreSuite) TestListVisibilityFilter() {
	ctx := context.Background()

	visible := s.newAudit("Visible audit")
	hidden := s.newAudit("Hidden audit")
	hidden.Visible = false
	s.Require().NoError(s.store.InsertHeader(ctx, visible))
	s.Require().NoError(s.store.InsertHeader(ctx, hidden))

	all, err := s.store.List(ctx, false)
	s.Require().NoError(err)
	s.Len(all, 2)

	onlyVisible, err := s.store.List(ctx, true)
	s.Require().NoError(err)
	s.Require().Len(onlyVisible, 1)
	s.Equal("Visible audit", onlyVisible[0].Title)
}

func (s *PostgresStoreSuite) TestGetDetailUnknownID() {
	_, err := s.store.GetDetail(context.Background(), 9999)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
