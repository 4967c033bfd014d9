package recalls

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"

	"qms/internal/identity"
	"qms/internal/uploads"
	domainerrors "qms/pkg/domain-errors"
	"qms/pkg/fixed"
	"qms/pkg/platform/sentinel"
)

// Service owns recall rules: atomic creation, the status graph, and ERP
// enrichment of shipment rows. ERP lookups are best-effort on reads; an ERP
// outage degrades the detail view instead of failing it.
type Service struct {
	store     Store
	directory ShipmentDirectory
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(store Store, directory ShipmentDirectory, logger *slog.Logger) *Service {
	return &Service{store: store, directory: directory, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, actor identity.Identity, req CreateRequest, files []uploads.FileDescriptor) (*Recall, error) {
	if !govalidator.StringLength(req.Product, "1", "200") {
		return nil, domainerrors.New(domainerrors.CodeValidation, "product is required")
	}
	if req.Lot == "" {
		return nil, domainerrors.New(domainerrors.CodeValidation, "lot is required")
	}
	if req.Reason == "" {
		return nil, domainerrors.New(domainerrors.CodeValidation, "reason is required")
	}
	for _, sh := range req.Shipments {
		if sh.ShipmentRef == "" {
			return nil, domainerrors.New(domainerrors.CodeValidation, "shipmentRef is required")
		}
		if sh.Quantity <= 0 {
			return nil, domainerrors.Newf(domainerrors.CodeValidation, "shipment %s quantity must be positive", sh.ShipmentRef)
		}
		if sh.Recovered < 0 || sh.Recovered > sh.Quantity {
			return nil, domainerrors.Newf(domainerrors.CodeValidation, "shipment %s recovered quantity out of range", sh.ShipmentRef)
		}
	}

	recall := &Recall{
		Product:     req.Product,
		Lot:         req.Lot,
		Reason:      req.Reason,
		Status:      StatusOpen,
		CreatedBy:   actor.ID,
		CreatorName: actor.Name,
	}

	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.InsertHeader(ctx, recall); err != nil {
			return err
		}
		for _, shr := range req.Shipments {
			sh := &Shipment{
				RecallID:    recall.ID,
				ShipmentRef: shr.ShipmentRef,
				Quantity:    fixed.Round2(shr.Quantity),
				Recovered:   fixed.Round2(shr.Recovered),
			}
			if err := s.store.InsertShipment(ctx, sh); err != nil {
				return err
			}
		}
		for _, file := range files {
			att := &Attachment{RecallID: recall.ID, FileName: file.Name, RelPath: file.RelPath}
			if err := s.store.InsertAttachment(ctx, att); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to create recall", err)
	}
	return recall, nil
}

func (s *Service) List(ctx context.Context) ([]Recall, error) {
	recalls, err := s.store.List(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to list recalls", err)
	}
	return recalls, nil
}

// Get loads the recall and enriches each shipment with the customer and
// destination the ERP has on file for its reference.
func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	detail, err := s.store.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeNotFound, "recall not found")
		}
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to load recall", err)
	}

	refs := make([]string, 0, len(detail.Shipments))
	for _, sh := range detail.Shipments {
		refs = append(refs, sh.ShipmentRef)
	}
	infos, err := s.directory.FindShipments(ctx, refs)
	if err != nil {
		s.logger.WarnContext(ctx, "erp shipment lookup failed, returning recall without enrichment",
			"recall_id", id, "error", err)
		return detail, nil
	}
	for i := range detail.Shipments {
		if info, ok := infos[detail.Shipments[i].ShipmentRef]; ok {
			detail.Shipments[i].Customer = info.Customer
			detail.Shipments[i].Destination = info.Destination
		}
	}
	return detail, nil
}

func (s *Service) Transition(ctx context.Context, id int64, req TransitionRequest) (*Recall, error) {
	target := Status(req.Status)
	if !validStatus(target) {
		return nil, domainerrors.Newf(domainerrors.CodeValidation, "unknown status %q", req.Status)
	}

	detail, err := s.store.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeNotFound, "recall not found")
		}
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to load recall", err)
	}
	recall := detail.Header
	if !CanTransition(recall.Status, target) {
		return nil, domainerrors.Newf(domainerrors.CodeValidation,
			"cannot transition from %s to %s", recall.Status, target)
	}

	var closedAt *time.Time
	if target == StatusClosed {
		t := s.now().UTC()
		closedAt = &t
	}
	if err := s.store.UpdateStatus(ctx, id, recall.Status, target, closedAt); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, domainerrors.New(domainerrors.CodeNotFound, "recall not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, domainerrors.New(domainerrors.CodeConflict, "recall was modified concurrently")
		default:
			return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to update recall", err)
		}
	}

	recall.Status = target
	recall.ClosedAt = closedAt
	return &recall, nil
}
