package zarr

import (
	"context"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/TuSKan/zarrs-go/zarr/store"
)

// Transformer wraps an inner store.Store and presents the same
// capability surface, optionally intercepting or altering requests. A
// chain is built outer→inner: the first transformer in
// BuildTransformerChain sees every call first.
type Transformer interface {
	store.Store
	Identifier() string
}

// BuildTransformerChain wraps base with each constructor in order,
// outer→inner, so wrap(0) is the outermost transformer callers see.
func BuildTransformerChain(base store.Store, wrap ...func(store.Store) Transformer) store.Store {
	s := base
	for i := len(wrap) - 1; i >= 0; i-- {
		s = wrap[i](s)
	}
	return s
}

// usageLogTransformer logs Get, GetPartial, Set and Delete at debug
// level (Exists, Size and List pass through unlogged), tagging each
// chain instance with a UUID generated when it is built so log lines
// from concurrent callers can be correlated.
type usageLogTransformer struct {
	inner store.Store
	log   *zap.Logger
	id    uuid.UUID
}

// NewUsageLogTransformer returns a constructor suitable for
// BuildTransformerChain. A nil logger falls back to zap.NewNop so the
// chain stays silent when unconfigured, matching the array façade's
// own default.
func NewUsageLogTransformer(log *zap.Logger) func(store.Store) Transformer {
	if log == nil {
		log = zap.NewNop()
	}
	return func(inner store.Store) Transformer {
		return &usageLogTransformer{inner: inner, log: log, id: uuid.New()}
	}
}

func (t *usageLogTransformer) Identifier() string { return "usage_log" }

func (t *usageLogTransformer) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := t.inner.Get(ctx, key)
	t.log.Debug("store.get", zap.String("chain", t.id.String()), zap.String("key", key), zap.Error(err))
	return v, err
}

func (t *usageLogTransformer) GetPartial(ctx context.Context, key string, offset, length uint64) ([]byte, error) {
	v, err := t.inner.GetPartial(ctx, key, offset, length)
	t.log.Debug("store.get_partial", zap.String("chain", t.id.String()), zap.String("key", key),
		zap.Uint64("offset", offset), zap.Uint64("length", length), zap.Error(err))
	return v, err
}

func (t *usageLogTransformer) Exists(ctx context.Context, key string) (bool, error) {
	return t.inner.Exists(ctx, key)
}

func (t *usageLogTransformer) Size(ctx context.Context, key string) (uint64, error) {
	return t.inner.Size(ctx, key)
}

func (t *usageLogTransformer) Set(ctx context.Context, key string, value []byte) error {
	err := t.inner.Set(ctx, key, value)
	t.log.Debug("store.set", zap.String("chain", t.id.String()), zap.String("key", key),
		zap.Int("bytes", len(value)), zap.Error(err))
	return err
}

func (t *usageLogTransformer) Delete(ctx context.Context, key string) error {
	err := t.inner.Delete(ctx, key)
	t.log.Debug("store.delete", zap.String("chain", t.id.String()), zap.String("key", key), zap.Error(err))
	return err
}

func (t *usageLogTransformer) List(ctx context.Context, prefix string) ([]string, error) {
	return t.inner.List(ctx, prefix)
}

// metricsTransformer counts reads, writes, and bytes transferred
// through the store, exported as prometheus counters.
type metricsTransformer struct {
	inner store.Store

	reads    prometheus.Counter
	writes   prometheus.Counter
	bytesIn  prometheus.Counter
	bytesOut prometheus.Counter
}

// NewMetricsTransformer returns a constructor suitable for
// BuildTransformerChain, registering its counters against reg.
func NewMetricsTransformer(reg prometheus.Registerer) func(store.Store) Transformer {
	reads := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zarr_store_reads_total", Help: "Number of store read operations.",
	})
	writes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zarr_store_writes_total", Help: "Number of store write operations.",
	})
	bytesIn := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zarr_store_bytes_written_total", Help: "Bytes written to the store.",
	})
	bytesOut := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "zarr_store_bytes_read_total", Help: "Bytes read from the store.",
	})
	if reg != nil {
		reg.MustRegister(reads, writes, bytesIn, bytesOut)
	}
	return func(inner store.Store) Transformer {
		return &metricsTransformer{inner: inner, reads: reads, writes: writes, bytesIn: bytesIn, bytesOut: bytesOut}
	}
}

func (t *metricsTransformer) Identifier() string { return "metrics" }

func (t *metricsTransformer) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := t.inner.Get(ctx, key)
	t.reads.Inc()
	if err == nil {
		t.bytesOut.Add(float64(len(v)))
	}
	return v, err
}

func (t *metricsTransformer) GetPartial(ctx context.Context, key string, offset, length uint64) ([]byte, error) {
	v, err := t.inner.GetPartial(ctx, key, offset, length)
	t.reads.Inc()
	if err == nil {
		t.bytesOut.Add(float64(len(v)))
	}
	return v, err
}

func (t *metricsTransformer) Exists(ctx context.Context, key string) (bool, error) {
	return t.inner.Exists(ctx, key)
}

func (t *metricsTransformer) Size(ctx context.Context, key string) (uint64, error) {
	return t.inner.Size(ctx, key)
}

func (t *metricsTransformer) Set(ctx context.Context, key string, value []byte) error {
	err := t.inner.Set(ctx, key, value)
	t.writes.Inc()
	if err == nil {
		t.bytesIn.Add(float64(len(value)))
	}
	return err
}

func (t *metricsTransformer) Delete(ctx context.Context, key string) error {
	err := t.inner.Delete(ctx, key)
	t.writes.Inc()
	return err
}

func (t *metricsTransformer) List(ctx context.Context, prefix string) ([]string, error) {
	return t.inner.List(ctx, prefix)
}

var _ Transformer = (*usageLogTransformer)(nil)
var _ Transformer = (*metricsTransformer)(nil)
