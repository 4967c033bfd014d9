package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"qms/internal/identity"
	"qms/internal/platform/metrics"
)

// Recorder is the fire-and-forget audit writer. Mutating controllers invoke
// it after their operation has durably committed; a failed write is logged
// and swallowed so it can never alter the caller's response.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	// wg lets tests and shutdown wait for in-flight async writes.
	wg sync.WaitGroup
}

func NewRecorder(store Store, logger *slog.Logger, m *metrics.Metrics) *Recorder {
	return &Recorder{store: store, logger: logger, metrics: m}
}

// Record persists one entry, swallowing any failure.
func (r *Recorder) Record(ctx context.Context, ident identity.Identity, action, module, detail string) {
	entry := Entry{
		ActorName: ident.Name,
		ActorRole: string(ident.Role),
		Action:    action,
		Module:    module,
		Detail:    detail,
		Timestamp: time.Now(),
	}
	if err := r.store.Append(ctx, entry); err != nil {
		if r.metrics != nil {
			r.metrics.AuditWriteFailures.Inc()
		}
		r.logger.ErrorContext(ctx, "audit write failed",
			"action", action,
			"module", module,
			"error", err,
		)
		return
	}
	if r.metrics != nil {
		r.metrics.AuditEntries.Inc()
	}
}

// RecordAsync persists the entry off the request path. The context is
// detached so a client disconnect after the response cannot cancel the write.
func (r *Recorder) RecordAsync(ctx context.Context, ident identity.Identity, action, module, detail string) {
	detached := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.Record(detached, ident, action, module, detail)
	}()
}

// Wait blocks until all async writes have finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
