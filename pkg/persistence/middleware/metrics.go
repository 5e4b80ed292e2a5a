package middleware

import (
	"context"
	"time"

	"github.com/aretw0/tend/pkg/domain"
	"github.com/aretw0/tend/pkg/observability"
	"github.com/aretw0/tend/pkg/ports"
)

type metricsRepository struct {
	next    ports.ItemRepository
	metrics *observability.Metrics
}

// NewMetricsMiddleware counts and times every repository call.
func NewMetricsMiddleware(metrics *observability.Metrics) Middleware {
	return func(next ports.ItemRepository) ports.ItemRepository {
		return &metricsRepository{next: next, metrics: metrics}
	}
}

func (r *metricsRepository) List(ctx context.Context) ([]domain.Item, error) {
	start := time.Now()
	items, err := r.next.List(ctx)
	r.metrics.ObserveOp("list", err, time.Since(start))
	return items, err
}

func (r *metricsRepository) Add(ctx context.Context, item domain.Item) (domain.Item, error) {
	start := time.Now()
	stored, err := r.next.Add(ctx, item)
	r.metrics.ObserveOp("add", err, time.Since(start))
	return stored, err
}

func (r *metricsRepository) Get(ctx context.Context, id int) (domain.Item, error) {
	start := time.Now()
	item, err := r.next.Get(ctx, id)
	r.metrics.ObserveOp("get", err, time.Since(start))
	return item, err
}

func (r *metricsRepository) SetCompleted(ctx context.Context, id int, completed bool) (domain.Item, error) {
	start := time.Now()
	item, err := r.next.SetCompleted(ctx, id, completed)
	r.metrics.ObserveOp("set_completed", err, time.Since(start))
	return item, err
}

func (r *metricsRepository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.metrics.ObserveOp("delete", err, time.Since(start))
	return err
}
