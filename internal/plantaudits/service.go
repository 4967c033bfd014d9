package plantaudits

import (
	"context"
	"errors"
	"time"

	"github.com/asaskevich/govalidator"

	"qms/internal/identity"
	"qms/internal/uploads"
	domainerrors "qms/pkg/domain-errors"
	"qms/pkg/platform/sentinel"
)

// Service owns audit rules: validation, visibility filtering, atomic writes.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create persists the header, its findings, and any attachments as one
// transaction.
func (s *Service) Create(ctx context.Context, actor identity.Identity, req CreateRequest, files []uploads.FileDescriptor) (*Audit, error) {
	if !govalidator.StringLength(req.Title, "1", "200") {
		return nil, domainerrors.New(domainerrors.CodeValidation, "title is required")
	}
	if !govalidator.StringLength(req.Area, "1", "100") {
		return nil, domainerrors.New(domainerrors.CodeValidation, "area is required")
	}
	auditDate, err := time.Parse("2006-01-02", req.AuditDate)
	if err != nil {
		return nil, domainerrors.New(domainerrors.CodeValidation, "auditDate must be YYYY-MM-DD")
	}
	for _, f := range req.Findings {
		if _, ok := validSeverities[f.Severity]; !ok {
			return nil, domainerrors.Newf(domainerrors.CodeValidation, "unknown severity %q", f.Severity)
		}
		if f.Description == "" {
			return nil, domainerrors.New(domainerrors.CodeValidation, "finding description is required")
		}
	}

	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}

	audit := &Audit{
		Title:       req.Title,
		Area:        req.Area,
		AuditDate:   auditDate,
		CreatedBy:   actor.ID,
		CreatorName: actor.Name,
		Visible:     visible,
		Notes:       req.Notes,
	}

	err = s.store.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.InsertHeader(ctx, audit); err != nil {
			return err
		}
		for _, fr := range req.Findings {
			finding := &Finding{AuditID: audit.ID, Severity: fr.Severity, Description: fr.Description}
			if err := s.store.InsertFinding(ctx, finding); err != nil {
				return err
			}
		}
		for _, file := range files {
			att := &Attachment{AuditID: audit.ID, FileName: file.Name, RelPath: file.RelPath}
			if err := s.store.InsertAttachment(ctx, att); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to create audit", err)
	}
	return audit, nil
}

// List applies visibility filtering: roles without CanViewAllForms only see
// records flagged visible.
func (s *Service) List(ctx context.Context, actor identity.Identity) ([]Audit, error) {
	onlyVisible := !actor.Role.Allows(identity.CanViewAllForms)
	audits, err := s.store.List(ctx, onlyVisible)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to list audits", err)
	}
	return audits, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	detail, err := s.store.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeNotFound, "audit not found")
		}
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to load audit", err)
	}
	return detail, nil
}
