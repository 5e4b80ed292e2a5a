package middleware_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/tend/pkg/adapters/memory"
	"github.com/aretw0/tend/pkg/domain"
	"github.com/aretw0/tend/pkg/observability"
	"github.com/aretw0/tend/pkg/persistence/middleware"
	"github.com/aretw0/tend/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// recordingTracer keeps every span it starts so tests can inspect them.
type recordingTracer struct {
	noop.Tracer

	mu    sync.Mutex
	spans []*recordingSpan
}

type recordingSpan struct {
	noop.Span

	name   string
	ended  bool
	status codes.Code
	errs   []error
}

func (t *recordingTracer) Start(ctx context.Context, name string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
	span := &recordingSpan{name: name}
	t.mu.Lock()
	t.spans = append(t.spans, span)
	t.mu.Unlock()
	return trace.ContextWithSpan(ctx, span), span
}

func (s *recordingSpan) End(...trace.SpanEndOption) { s.ended = true }

func (s *recordingSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}

func (s *recordingSpan) SetStatus(code codes.Code, _ string) { s.status = code }

func TestChain_Order(t *testing.T) {
	var calls []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.ItemRepository) ports.ItemRepository {
			return &taggingRepository{ItemRepository: next, name: name, calls: &calls}
		}
	}

	repo := middleware.Chain(tag("outer"), tag("inner"))(memory.New())
	_, err := repo.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"outer", "inner"}, calls)
}

type taggingRepository struct {
	ports.ItemRepository
	name  string
	calls *[]string
}

func (r *taggingRepository) List(ctx context.Context) ([]domain.Item, error) {
	*r.calls = append(*r.calls, r.name)
	return r.ItemRepository.List(ctx)
}

func TestChain_Empty(t *testing.T) {
	base := memory.New()
	assert.Same(t, base, middleware.Chain()(base))
}

func TestTracingMiddleware(t *testing.T) {
	ctx := context.Background()
	tracer := &recordingTracer{}
	repo := middleware.NewTracingMiddleware(tracer)(memory.NewSeeded())

	item, err := repo.Add(ctx, domain.NewItem("Task6"))
	require.NoError(t, err)
	assert.Equal(t, 6, item.ID)

	_, err = repo.Get(ctx, 42)
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	require.Len(t, tracer.spans, 2)

	add := tracer.spans[0]
	assert.Equal(t, "tend.repository.add", add.name)
	assert.True(t, add.ended)
	assert.Empty(t, add.errs)
	assert.Equal(t, codes.Unset, add.status)

	get := tracer.spans[1]
	assert.Equal(t, "tend.repository.get", get.name)
	assert.True(t, get.ended)
	require.Len(t, get.errs, 1)
	assert.ErrorIs(t, get.errs[0], domain.ErrItemNotFound)
	assert.Equal(t, codes.Error, get.status)
}

func TestTracingMiddleware_GlobalTracer(t *testing.T) {
	repo := middleware.NewTracingMiddleware(nil)(memory.NewSeeded())

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestTracingMiddleware_Contract(t *testing.T) {
	ports.RunItemRepositoryContract(t, func(t *testing.T, seed []domain.Item) ports.ItemRepository {
		return middleware.NewTracingMiddleware(&recordingTracer{})(memory.New(memory.WithSeed(seed)))
	})
}

func TestMetricsMiddleware(t *testing.T) {
	ctx := context.Background()
	m := observability.NewMetrics()
	repo := middleware.NewMetricsMiddleware(m)(memory.NewSeeded())

	_, err := repo.List(ctx)
	require.NoError(t, err)
	_, err = repo.SetCompleted(ctx, 1, true)
	require.NoError(t, err)
	err = repo.Delete(ctx, 99)
	require.True(t, errors.Is(err, domain.ErrItemNotFound))

	got := opsByLabel(t, m.Registry())
	assert.Equal(t, 1.0, got["list/ok"])
	assert.Equal(t, 1.0, got["set_completed/ok"])
	assert.Equal(t, 1.0, got["delete/error"])
}

func opsByLabel(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	out := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "tend_repository_operations_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			out[labelValue(metric, "op")+"/"+labelValue(metric, "status")] = metric.GetCounter().GetValue()
		}
	}
	return out
}

func labelValue(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

func TestSanitizeMiddleware(t *testing.T) {
	ctx := context.Background()
	repo := middleware.NewSanitizeMiddleware(8)(memory.New())

	item, err := repo.Add(ctx, domain.NewItem("  buy\tmilk \n"))
	require.NoError(t, err)
	assert.Equal(t, "buymilk", item.Name)

	item, err = repo.Add(ctx, domain.NewItem(strings.Repeat("é", 12)))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 8), item.Name)

	_, err = repo.Add(ctx, domain.NewItem(" \x00 "))
	assert.ErrorIs(t, err, domain.ErrEmptyName)

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2, "rejected names are never stored")
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"Task1", 0, "Task1"},
		{"  padded  ", 0, "padded"},
		{"line\r\nbreak", 0, "linebreak"},
		{"abcdef", 3, "abc"},
		{"ab   cd", 3, "ab"},
		{"", 10, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, middleware.SanitizeName(tt.in, tt.maxLen), "input %q", tt.in)
	}
}
