package di

import (
	"fmt"
	"testing"

	"github.com/gocrud/inject/catalog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counted struct{}

type failing struct{}

func TestMetricsCountInstances(t *testing.T) {
	b := catalog.NewBuilder()
	catalog.Register[*counted](b, catalog.Singleton())
	c, err := b.Build()
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	inj := New(c, WithMetrics(reg))
	require.NoError(t, inj.Inject(&struct{ Name string }{}))

	assert.Equal(t, float64(1), testutil.ToFloat64(inj.metrics.instances.WithLabelValues(string(SourceDefault))))
	assert.Equal(t, float64(1), testutil.ToFloat64(inj.metrics.instances.WithLabelValues(string(SourceRoot))))

	n, err := testutil.GatherAndCount(reg, "inject_instances_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMetricsCountFailures(t *testing.T) {
	desc := &catalog.TypeDescriptor{
		Type:      catalog.TypeOf[*failing](),
		Singleton: true,
		New: func() (any, error) {
			return nil, fmt.Errorf("no")
		},
	}
	reg := prometheus.NewRegistry()
	inj := New(catalog.New([]*catalog.TypeDescriptor{desc}), WithMetrics(reg))
	require.ErrorIs(t, inj.Inject(&counted{}), ErrConstructionFailure)

	assert.Equal(t, float64(1), testutil.ToFloat64(inj.metrics.failures.WithLabelValues("construction_failure")))
}

func TestMetricsShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := New(nil, WithMetrics(reg))
	second := New(nil, WithMetrics(reg))

	require.NoError(t, first.Inject(&counted{}))
	require.NoError(t, second.Inject(&counted{}))

	assert.Same(t, first.metrics.instances, second.metrics.instances)
	assert.Equal(t, float64(2), testutil.ToFloat64(second.metrics.instances.WithLabelValues(string(SourceRoot))))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "circular_dependency", Kind(fmt.Errorf("wrapped: %w", ErrCircularDependency)))
	assert.Equal(t, "already_injected", Kind(ErrAlreadyInjected))
	assert.Equal(t, "unknown", Kind(fmt.Errorf("other")))
}

func TestStoreNeverOverwrites(t *testing.T) {
	s := newStore()
	typ := catalog.TypeOf[*counted]()
	first, second := &counted{}, &counted{}

	assert.True(t, s.putType(typ, first, SourceDefault, "c"))
	assert.False(t, s.putType(typ, second, SourceDefault, "c"))
	assert.False(t, s.putNamed("c", typ, second, SourceFactory))

	got, ok := s.get(typ)
	require.True(t, ok)
	assert.Same(t, first, got)
	named, ok := s.getNamed("c")
	require.True(t, ok)
	assert.Same(t, first, named)
	assert.Len(t, s.snapshot(), 1)

	s.reset()
	_, ok = s.get(typ)
	assert.False(t, ok)
	assert.Zero(t, s.len())
}
