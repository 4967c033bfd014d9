package weightcontrol

import (
	"context"
	"errors"

	"github.com/asaskevich/govalidator"

	"qms/internal/identity"
	domainerrors "qms/pkg/domain-errors"
	"qms/pkg/fixed"
	"qms/pkg/platform/sentinel"
)

// Service derives the verdict at capture time: a record is Approved only
// when every sampled weight sits inside [lower, upper] and all four sealing
// checks passed. Operators never set the verdict directly.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, actor identity.Identity, req CreateRequest) (*Record, error) {
	if !govalidator.StringLength(req.Product, "1", "200") {
		return nil, domainerrors.New(domainerrors.CodeValidation, "product is required")
	}
	if req.Lot == "" {
		return nil, domainerrors.New(domainerrors.CodeValidation, "lot is required")
	}
	if req.LowerGrams <= 0 || req.UpperGrams <= 0 || req.LowerGrams > req.UpperGrams {
		return nil, domainerrors.New(domainerrors.CodeValidation, "weight limits must be positive with lower <= upper")
	}
	if len(req.Weights) == 0 {
		return nil, domainerrors.New(domainerrors.CodeValidation, "at least one sample weight is required")
	}

	lower := fixed.Round2(req.LowerGrams)
	upper := fixed.Round2(req.UpperGrams)

	samples := make([]Sample, 0, len(req.Weights))
	for i, raw := range req.Weights {
		grams, err := fixed.ParseWeight(raw)
		if err != nil {
			return nil, domainerrors.Newf(domainerrors.CodeValidation, "weight %d is not a number", i+1)
		}
		samples = append(samples, Sample{Position: i + 1, Grams: grams})
	}

	rec := &Record{
		Product:     req.Product,
		Lot:         req.Lot,
		Line:        req.Line,
		TargetGrams: fixed.Round2(req.TargetGrams),
		LowerGrams:  lower,
		UpperGrams:  upper,
		SealTop:     req.SealTop,
		SealBottom:  req.SealBottom,
		SealLeft:    req.SealLeft,
		SealRight:   req.SealRight,
		Verdict:     deriveVerdict(samples, lower, upper, req),
		CreatedBy:   actor.ID,
		CreatorName: actor.Name,
	}

	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.InsertHeader(ctx, rec); err != nil {
			return err
		}
		for i := range samples {
			samples[i].RecordID = rec.ID
			if err := s.store.InsertSample(ctx, &samples[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to create weight control", err)
	}
	return rec, nil
}

func deriveVerdict(samples []Sample, lower, upper float64, req CreateRequest) Verdict {
	if !req.SealTop || !req.SealBottom || !req.SealLeft || !req.SealRight {
		return VerdictRejected
	}
	for _, sample := range samples {
		if sample.Grams < lower || sample.Grams > upper {
			return VerdictRejected
		}
	}
	return VerdictApproved
}

func (s *Service) List(ctx context.Context) ([]Record, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to list weight controls", err)
	}
	return records, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	detail, err := s.store.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeNotFound, "weight control not found")
		}
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to load weight control", err)
	}
	return detail, nil
}
