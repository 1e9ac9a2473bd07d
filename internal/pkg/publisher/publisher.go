package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/anicoll/ev-reimbursement/internal/pkg/metrics"
	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
)

var errAlreadyRegistered = errors.New("publisher already registered")

type publisher interface {
	// Publish delivers a calculated reimbursement to the adapter.
	Publish(ctx context.Context, r model.Reimbursement) error
}

// registrar is implemented by publishers that announce employees before publishing for them.
type registrar interface {
	RegisterEmployee(employee model.Employee) error
}

type Registry struct {
	mu         sync.RWMutex
	publishers map[string]publisher
	// per employee and month: the lock serializing publishes and the last published fingerprint
	inflight  sync.Map
	published sync.Map
	logger    *zap.Logger
}

func NewRegistry() *Registry {
	return &Registry{
		publishers: make(map[string]publisher),
		logger:     zap.L(),
	}
}

func (r *Registry) RegisterPublisher(name string, p publisher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.publishers[name]; ok {
		return fmt.Errorf("%w: %s", errAlreadyRegistered, name)
	}
	r.publishers[name] = p
	return nil
}

// Publish hands the reimbursement to every registered publisher. A reimbursement identical
// to the last one published for the same employee and month is skipped. Failing publishers
// are logged and reported together; the others still receive the reimbursement.
// Publishes for the same employee and month run one at a time and a reimbursement only
// counts as published once every publisher accepted it.
func (r *Registry) Publish(ctx context.Context, reimbursement model.Reimbursement) error {
	key := publishKey(reimbursement)
	lock, _ := r.inflight.LoadOrStore(key, &sync.Mutex{})
	lock.(*sync.Mutex).Lock()
	defer lock.(*sync.Mutex).Unlock()

	fp := fingerprint(reimbursement)
	if last, ok := r.published.Load(key); ok && last.(string) == fp {
		r.logger.Debug("reimbursement unchanged, skipping publish",
			zap.String("employee", reimbursement.EmployeeID.String()),
			zap.Stringer("month", reimbursement.Month))
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var errs []error
	for name, p := range r.publishers {
		err := p.Publish(ctx, reimbursement)
		metrics.IncPublish(name, err)
		if err != nil {
			r.logger.Error("failed to publish reimbursement", zap.Error(err), zap.String("publisher", name))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		r.logger.Debug("published reimbursement", zap.String("publisher", name), zap.Float64("total_nok", reimbursement.TotalNok))
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	r.published.Store(key, fp)
	return nil
}

func (r *Registry) RegisterEmployee(employee model.Employee) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, p := range r.publishers {
		reg, ok := p.(registrar)
		if !ok {
			continue
		}
		if err := reg.RegisterEmployee(employee); err != nil {
			r.logger.Error("failed to register employee", zap.Error(err), zap.String("publisher", name))
			continue
		}
		r.logger.Debug("registered employee", zap.String("employee", employee.ID.String()), zap.String("publisher", name))
	}
	return nil
}

func publishKey(reimbursement model.Reimbursement) string {
	return fmt.Sprintf("%s_%s", reimbursement.EmployeeID, reimbursement.Month)
}

// fingerprint covers the calculated figures, the calculation time is ignored.
func fingerprint(r model.Reimbursement) string {
	return fmt.Sprintf("%d_%.6f_%.6f_%.6f_%.6f_%.6f_%s_%s", r.SessionCount,
		r.Kwh, r.EnergyNok, r.GridNok, r.SubsidyNok, r.TotalNok, r.PriceArea, r.Policy)
}

var defaultRegistry = NewRegistry()

func RegisterPublisher(name string, p publisher) error {
	return defaultRegistry.RegisterPublisher(name, p)
}

func Publish(ctx context.Context, reimbursement model.Reimbursement) error {
	return defaultRegistry.Publish(ctx, reimbursement)
}

func RegisterEmployee(employee model.Employee) error {
	return defaultRegistry.RegisterEmployee(employee)
}

// Default returns the process wide registry used by the package level functions.
func Default() *Registry {
	return defaultRegistry
}
