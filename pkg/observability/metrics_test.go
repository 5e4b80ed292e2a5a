package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/aretw0/tend/pkg/domain"
	"github.com/aretw0/tend/pkg/observable"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	require.NotNil(t, m.Counter)
	return m.Counter.GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	require.NotNil(t, m.Gauge)
	return m.Gauge.GetValue()
}

func TestMetrics_ObserveOp(t *testing.T) {
	m := NewMetrics()

	m.ObserveOp("add", nil, 3*time.Millisecond)
	m.ObserveOp("add", nil, time.Millisecond)
	m.ObserveOp("add", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, m.repoOps.WithLabelValues("add", StatusOK)))
	assert.Equal(t, 1.0, counterValue(t, m.repoOps.WithLabelValues("add", StatusError)))

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "tend_repository_operation_duration_seconds" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, uint64(3), f.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}
	assert.True(t, found, "latency histogram should be gathered")
}

func TestMetrics_BindServers(t *testing.T) {
	m := NewMetrics()
	store := observable.New(3)

	tok := m.BindServers(store, domain.DefaultRegion)
	gauge := m.serversOnline.WithLabelValues(domain.DefaultRegion)
	assert.Equal(t, 3.0, gaugeValue(t, gauge), "binding publishes the current value")

	store.Set(7)
	assert.Equal(t, 7.0, gaugeValue(t, gauge))

	store.Unsubscribe(tok)
	store.Set(1)
	assert.Equal(t, 7.0, gaugeValue(t, gauge), "unbound gauge stops following the store")
}

func TestMetrics_PanicHandler(t *testing.T) {
	m := NewMetrics()
	store := observable.New(0, observable.WithPanicHandler(m.PanicHandler("counter")))

	store.Subscribe(func() { panic("bad observer") })
	store.Set(1)
	store.Set(2)

	assert.Equal(t, 2.0, counterValue(t, m.observerPanics.WithLabelValues("counter")))
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics(WithProcessMetrics())

	a.ObserveOp("list", nil, 0)

	assert.Equal(t, 1.0, counterValue(t, a.repoOps.WithLabelValues("list", StatusOK)))
	assert.Equal(t, 0.0, counterValue(t, b.repoOps.WithLabelValues("list", StatusOK)))
}
