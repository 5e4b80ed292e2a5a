package middleware

import (
	"context"

	"github.com/aretw0/tend/pkg/domain"
	"github.com/aretw0/tend/pkg/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is used when no tracer is given to NewTracingMiddleware.
const TracerName = "github.com/aretw0/tend"

type tracingRepository struct {
	next   ports.ItemRepository
	tracer trace.Tracer
}

// NewTracingMiddleware creates a span around every repository call.
// A nil tracer resolves one from the global OpenTelemetry provider.
func NewTracingMiddleware(tracer trace.Tracer) Middleware {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return func(next ports.ItemRepository) ports.ItemRepository {
		return &tracingRepository{next: next, tracer: tracer}
	}
}

func (r *tracingRepository) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "tend.repository."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *tracingRepository) List(ctx context.Context) ([]domain.Item, error) {
	ctx, span := r.start(ctx, "list")
	items, err := r.next.List(ctx)
	span.SetAttributes(attribute.Int("tend.items.count", len(items)))
	finish(span, err)
	return items, err
}

func (r *tracingRepository) Add(ctx context.Context, item domain.Item) (domain.Item, error) {
	ctx, span := r.start(ctx, "add", attribute.Bool("tend.item.completed", item.IsCompleted))
	stored, err := r.next.Add(ctx, item)
	if err == nil {
		span.SetAttributes(attribute.Int("tend.item.id", stored.ID))
	}
	finish(span, err)
	return stored, err
}

func (r *tracingRepository) Get(ctx context.Context, id int) (domain.Item, error) {
	ctx, span := r.start(ctx, "get", attribute.Int("tend.item.id", id))
	item, err := r.next.Get(ctx, id)
	finish(span, err)
	return item, err
}

func (r *tracingRepository) SetCompleted(ctx context.Context, id int, completed bool) (domain.Item, error) {
	ctx, span := r.start(ctx, "set_completed",
		attribute.Int("tend.item.id", id),
		attribute.Bool("tend.item.completed", completed),
	)
	item, err := r.next.SetCompleted(ctx, id, completed)
	finish(span, err)
	return item, err
}

func (r *tracingRepository) Delete(ctx context.Context, id int) error {
	ctx, span := r.start(ctx, "delete", attribute.Int("tend.item.id", id))
	err := r.next.Delete(ctx, id)
	finish(span, err)
	return err
}
