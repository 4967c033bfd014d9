// Package employees exposes a read-only view of the HR system's employee
// directory. The admin console uses it to pre-fill data when provisioning
// application users; nothing here ever writes to HR.
package employees

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"qms/internal/platform/db"
	"qms/pkg/platform/sentinel"
)

type Employee struct {
	Number     string `db:"number" json:"number"`
	FullName   string `db:"full_name" json:"fullName"`
	Email      string `db:"email" json:"email"`
	Department string `db:"department" json:"department"`
	Active     bool   `db:"active" json:"active"`
}

type Store interface {
	// List returns active employees, optionally filtered by a case-insensitive
	// name substring.
	List(ctx context.Context, nameFilter string) ([]Employee, error)
	FindByNumber(ctx context.Context, number string) (*Employee, error)
}

// HRStore reads the directory through the HR pool.
type HRStore struct {
	pools db.Pools
}

func NewHRStore(pools db.Pools) *HRStore {
	return &HRStore{pools: pools}
}

func (s *HRStore) List(ctx context.Context, nameFilter string) ([]Employee, error) {
	pool, err := s.pools.Get(ctx, db.TargetHR)
	if err != nil {
		return nil, fmt.Errorf("acquire hr pool: %w", err)
	}
	out := []Employee{}
	err = pool.SelectContext(ctx, &out, `
		SELECT number, full_name, email, department, active
		FROM hr_employees
		WHERE active AND ($1 = '' OR full_name ILIKE '%' || $1 || '%')
		ORDER BY full_name
	`, nameFilter)
	if err != nil {
		return nil, fmt.Errorf("list hr employees: %w", err)
	}
	return out, nil
}

func (s *HRStore) FindByNumber(ctx context.Context, number string) (*Employee, error) {
	pool, err := s.pools.Get(ctx, db.TargetHR)
	if err != nil {
		return nil, fmt.Errorf("acquire hr pool: %w", err)
	}
	var emp Employee
	err = pool.GetContext(ctx, &emp, `
		SELECT number, full_name, email, department, active
		FROM hr_employees WHERE number = $1
	`, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("employee %s: %w", number, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find hr employee %s: %w", number, err)
	}
	return &emp, nil
}

// MemoryStore serves a fixed directory for tests.
type MemoryStore struct {
	mu        sync.RWMutex
	employees map[string]Employee
}

func NewMemoryStore(employees ...Employee) *MemoryStore {
	s := &MemoryStore{employees: make(map[string]Employee)}
	for _, emp := range employees {
		s.employees[emp.Number] = emp
	}
	return s
}

func (s *MemoryStore) List(_ context.Context, nameFilter string) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filter := strings.ToLower(nameFilter)
	out := []Employee{}
	for _, emp := range s.employees {
		if !emp.Active {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(emp.FullName), filter) {
			continue
		}
		out = append(out, emp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (s *MemoryStore) FindByNumber(_ context.Context, number string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emp, ok := s.employees[number]
	if !ok {
		return nil, fmt.Errorf("employee %s: %w", number, sentinel.ErrNotFound)
	}
	return &emp, nil
}
