package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"qms/internal/actions"
	"qms/internal/platform/metrics"
)

// dueWindow is how far ahead the reminder looks.
const dueWindow = 7 * 24 * time.Hour

// ActionSource is the slice of the corrective-action store the scheduler
// needs.
type ActionSource interface {
	DueWithin(ctx context.Context, now time.Time, window time.Duration) ([]actions.Action, error)
}

// Scheduler mails responsibles about corrective actions due within the next
// seven days, once a day at the configured hour. Missed runs are not caught
// up and failed sends are not retried until the next day's pass.
type Scheduler struct {
	source  ActionSource
	sender  Sender
	logger  *slog.Logger
	metrics *metrics.Metrics
	hour    int
	now     func() time.Time
}

func NewScheduler(source ActionSource, sender Sender, logger *slog.Logger, m *metrics.Metrics, hour int) *Scheduler {
	return &Scheduler{
		source:  source,
		sender:  sender,
		logger:  logger,
		metrics: m,
		hour:    hour,
		now:     time.Now,
	}
}

// Run blocks until ctx is cancelled, firing once per day.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := s.nextRun(s.now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s *Scheduler) runOnce(ctx context.Context) {
	now := s.now()
	due, err := s.source.DueWithin(ctx, now, dueWindow)
	if err != nil {
		s.logger.ErrorContext(ctx, "reminder query failed", "error", err)
		return
	}

	for _, action := range due {
		if action.ResponsibleEmail == "" {
			continue
		}
		subject := fmt.Sprintf("Corrective action due %s: %s",
			action.DueDate.Format("2006-01-02"), action.Title)
		body := fmt.Sprintf(
			"Hello %s,\n\nThe corrective action %q is due on %s and is still %s.\n\nPlease update its status in the quality console.\n",
			action.ResponsibleName, action.Title, action.DueDate.Format("2006-01-02"), action.Status)

		if err := s.sender.Send(ctx, action.ResponsibleEmail, subject, body); err != nil {
			if s.metrics != nil {
				s.metrics.MailFailures.Inc()
			}
			s.logger.ErrorContext(ctx, "reminder mail failed",
				"action_id", action.ID, "to", action.ResponsibleEmail, "error", err)
			continue
		}
		if s.metrics != nil {
			s.metrics.MailSent.Inc()
		}
	}
	s.logger.InfoContext(ctx, "reminder pass finished", "due", len(due))
}
