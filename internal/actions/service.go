package actions

import (
	"context"
	"errors"
	"time"

	"github.com/asaskevich/govalidator"

	"qms/internal/identity"
	domainerrors "qms/pkg/domain-errors"
	"qms/pkg/platform/sentinel"
)

// Service owns corrective action rules. New actions always open as Open, and
// the status graph is enforced here before any write happens.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) Create(ctx context.Context, actor identity.Identity, req CreateRequest) (*Action, error) {
	if !govalidator.StringLength(req.Title, "1", "200") {
		return nil, domainerrors.New(domainerrors.CodeValidation, "title is required")
	}
	if req.ResponsibleName == "" {
		return nil, domainerrors.New(domainerrors.CodeValidation, "responsibleName is required")
	}
	if req.ResponsibleEmail != "" && !govalidator.IsEmail(req.ResponsibleEmail) {
		return nil, domainerrors.New(domainerrors.CodeValidation, "responsibleEmail must be a valid address")
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return nil, domainerrors.New(domainerrors.CodeValidation, "dueDate must be YYYY-MM-DD")
	}

	action := &Action{
		Title:            req.Title,
		Description:      req.Description,
		Area:             req.Area,
		ResponsibleName:  req.ResponsibleName,
		ResponsibleEmail: req.ResponsibleEmail,
		DueDate:          dueDate,
		Status:           StatusOpen,
		CreatedBy:        actor.ID,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.store.Create(ctx, action); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to create corrective action", err)
	}
	return action, nil
}

func (s *Service) List(ctx context.Context) ([]Action, error) {
	actions, err := s.store.List(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to list corrective actions", err)
	}
	return actions, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Action, error) {
	action, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, domainerrors.New(domainerrors.CodeNotFound, "corrective action not found")
		}
		return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to load corrective action", err)
	}
	return action, nil
}

// Transition moves an action along the status graph. Illegal steps are
// rejected before anything is written.
func (s *Service) Transition(ctx context.Context, id int64, req TransitionRequest) (*Action, error) {
	target := Status(req.Status)
	if !validStatus(target) {
		return nil, domainerrors.Newf(domainerrors.CodeValidation, "unknown status %q", req.Status)
	}

	action, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(action.Status, target) {
		return nil, domainerrors.Newf(domainerrors.CodeValidation,
			"cannot transition from %s to %s", action.Status, target)
	}

	var closedAt *time.Time
	if target == StatusClosed {
		t := s.now().UTC()
		closedAt = &t
	}
	if err := s.store.UpdateStatus(ctx, id, action.Status, target, closedAt); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, domainerrors.New(domainerrors.CodeNotFound, "corrective action not found")
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, domainerrors.New(domainerrors.CodeConflict, "corrective action was modified concurrently")
		default:
			return nil, domainerrors.Wrap(domainerrors.CodePersistence, "failed to update corrective action", err)
		}
	}

	action.Status = target
	action.ClosedAt = closedAt
	return action, nil
}
