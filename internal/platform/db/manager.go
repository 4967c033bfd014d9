// Package db manages one pooled connection per backing database. Pools are
// created lazily on first use and live for the process's lifetime; there is
// no teardown API.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/sync/singleflight"

	"qms/internal/platform/config"
	domainerrors "qms/pkg/domain-errors"
	"qms/pkg/platform/sentinel"
)

// Target names a backing database.
type Target string

const (
	// TargetPrimary is the quality-management store. All domain writes and
	// the audit log land here.
	TargetPrimary Target = "primary"
	// TargetHR is the human-resources store, read-only from this service.
	TargetHR Target = "hr"
	// TargetERP is the ERP store (supplier master, shipments), read-only.
	TargetERP Target = "erp"
)

// Pools is the narrow interface stores depend on, so tests can substitute an
// in-memory fake without a manager.
type Pools interface {
	Get(ctx context.Context, target Target) (*sqlx.DB, error)
}

// Manager memoizes one *sqlx.DB per target. Concurrent first calls for the
// same target share a single connection attempt; a failed attempt is not
// cached, so the next call retries cleanly.
type Manager struct {
	logger *slog.Logger
	cfgs   map[Target]config.Database

	mu    sync.RWMutex
	pools map[Target]*sqlx.DB

	flight singleflight.Group

	// open is swappable for tests.
	open func(target Target, cfg config.Database) (*sqlx.DB, error)
}

// driverFor picks the SQL driver per target. The primary store stays on
// lib/pq because its stores inspect *pq.Error constraint codes; the external
// read-only databases connect through pgx.
func driverFor(target Target) string {
	if target == TargetPrimary {
		return "postgres"
	}
	return "pgx"
}

func NewManager(cfg config.Config, logger *slog.Logger) *Manager {
	return &Manager{
		logger: logger,
		cfgs: map[Target]config.Database{
			TargetPrimary: cfg.Primary,
			TargetHR:      cfg.HR,
			TargetERP:     cfg.ERP,
		},
		pools: make(map[Target]*sqlx.DB),
		open:  openPostgres,
	}
}

// Get returns the pool for target, establishing it on first use.
func (m *Manager) Get(ctx context.Context, target Target) (*sqlx.DB, error) {
	m.mu.RLock()
	pool, ok := m.pools[target]
	m.mu.RUnlock()
	if ok {
		return pool, nil
	}

	cfg, ok := m.cfgs[target]
	if !ok {
		return nil, domainerrors.Newf(domainerrors.CodeInternal, "unknown database target %q", target)
	}
	if cfg.URL == "" {
		return nil, domainerrors.Newf(domainerrors.CodeConnection, "database %q is not configured", target)
	}

	// singleflight collapses concurrent first calls into one attempt. The
	// result is only cached on success.
	v, err, _ := m.flight.Do(string(target), func() (any, error) {
		m.mu.RLock()
		existing, ok := m.pools[target]
		m.mu.RUnlock()
		if ok {
			return existing, nil
		}

		opened, err := m.open(target, cfg)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.pools[target] = opened
		m.mu.Unlock()

		m.logger.InfoContext(ctx, "database pool established", "target", string(target))
		return opened, nil
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "database connection failed",
			"target", string(target),
			"error", err,
		)
		return nil, domainerrors.Wrap(domainerrors.CodeConnection,
			fmt.Sprintf("database %q unreachable", target),
			fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err))
	}
	return v.(*sqlx.DB), nil
}

// Close releases every established pool. Safe to call with none open.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for target, pool := range m.pools {
		if err := pool.Close(); err != nil {
			m.logger.Warn("pool close failed", "target", string(target), "error", err)
		}
		delete(m.pools, target)
	}
}

func openPostgres(target Target, cfg config.Database) (*sqlx.DB, error) {
	pool, err := sqlx.Open(driverFor(target), cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnLifetime)

	// sqlx.Open does not dial; ping so a bad target fails the first request
	// instead of the first query. Driver default timeouts apply.
	if err := pool.Ping(); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping pool: %w", err)
	}
	return pool, nil
}
