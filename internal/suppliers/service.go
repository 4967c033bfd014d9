package suppliers

import (
	"context"
	"errors"
	"regexp"

	"qms/internal/identity"
	domainerrors "qms/pkg/domain-errors"
	"qms/pkg/fixed"
	"qms/pkg/platform/sentinel"
)

// periodPattern matches the evaluation period format, e.g. "2026-Q3".
var periodPattern = regexp.MustCompile(`^\d{4}-Q[1-4]$`)

// Service scores suppliers. The supplier code is resolved against the ERP
// master on create, so evaluations can never reference an unknown supplier.
type Service struct {
	evaluations EvaluationStore
	master      MasterStore
}

func NewService(evaluations EvaluationStore, master MasterStore) *Service {
	return &Service{evaluations: evaluations, master: master}
}

func (s *Service) Create(ctx context.Context, actor identity.Identity, req CreateRequest) (*Evaluation, error) {
	if req.SupplierCode == "" {
		return nil, domainerrors.New(domainerrors.CodeValidation, "supplierCode is required")
	}
	if !periodPattern.MatchString(req.Period) {
		return nil, domainerrors.New(domainerrors.CodeValidation, "period must look like 2026-Q3")
	}
	for _, score := range []float64{req.QualityScore, req.DeliveryScore, req.ServiceScore} {
		if score < 0 || score > 100 {
			return nil, domainerrors.New(domainerrors.CodeValidation, "scores must be between 0 and 100")
		}
	}

	supplier, err := s.master.FindSupplier(ctx, req.SupplierCode)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.Newf(domainerrors.CodeValidation, "unknown supplier %q", req.SupplierCode)
		}
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to resolve supplier", err)
	}

	eval := &Evaluation{
		SupplierCode:  supplier.Code,
		SupplierName:  supplier.Name,
		Period:        req.Period,
		QualityScore:  fixed.Round2(req.QualityScore),
		DeliveryScore: fixed.Round2(req.DeliveryScore),
		ServiceScore:  fixed.Round2(req.ServiceScore),
		OverallScore:  fixed.Round2((req.QualityScore + req.DeliveryScore + req.ServiceScore) / 3),
		Comments:      req.Comments,
		CreatedBy:     actor.ID,
		CreatorName:   actor.Name,
	}
	if err := s.evaluations.Create(ctx, eval); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to create evaluation", err)
	}
	return eval, nil
}

func (s *Service) List(ctx context.Context) ([]Evaluation, error) {
	evals, err := s.evaluations.List(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to list evaluations", err)
	}
	return evals, nil
}

// ListSuppliers surfaces the ERP master to the evaluation form's dropdown.
func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	sups, err := s.master.ListSuppliers(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to list suppliers", err)
	}
	return sups, nil
}
