package pipeline

import (
	"bytes"
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/orientplace/pkg/cache"
	"github.com/matzehuels/orientplace/pkg/errors"
	"github.com/matzehuels/orientplace/pkg/netio"
	"github.com/matzehuels/orientplace/pkg/observability"
	"github.com/matzehuels/orientplace/pkg/wireimg"
)

// memCache is an in-memory cache.Cache that counts calls.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.data[key] = data
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }

// recordingHooks captures batch events.
type recordingHooks struct {
	mu        sync.Mutex
	started   int
	completed map[int]error
	finished  int
	lastErr   error
}

func (h *recordingHooks) OnBatchStart(context.Context, string, int, int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started++
	h.completed = make(map[int]error)
}

func (h *recordingHooks) OnOrientationComplete(_ context.Context, _ string, o int, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed[o] = err
}

func (h *recordingHooks) OnBatchComplete(_ context.Context, _ string, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.finished++
	h.lastErr = err
}

func testNets() wireimg.NetMap {
	nets := wireimg.NewNetMap()
	nets[0] = []wireimg.Net{{ID: "a", Box: wireimg.NetBox{StartX: 1, StartY: 1, EndX: 3, EndY: 3, Weight: 2}}}
	nets[3] = []wireimg.Net{{ID: "b", Box: wireimg.NetBox{EndX: 4, EndY: 2, BaseOffsetY: 1, Weight: 0.5}}}
	return nets
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{})
}

func TestExecute(t *testing.T) {
	r := NewRunner(newMemCache(), nil, quietLogger())
	defer r.Close()

	res, err := r.Execute(context.Background(), testNets(), Options{Grid: 4, Formats: []string{"json", "png"}})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.NetsHash, 64)
	assert.False(t, res.CacheHit)
	assert.Equal(t, 4, res.Batch.Grid())
	assert.Equal(t, 2, res.Stats.NetCount)
	assert.Equal(t, 2.0, res.Stats.Images[0].Max)
	assert.Equal(t, 0.0, res.Stats.Images[1].Max)

	decoded, err := netio.UnmarshalBatch(res.Artifacts["json"])
	require.NoError(t, err)
	assert.True(t, res.Batch.Equal(decoded))
	assert.True(t, bytes.HasPrefix(res.Artifacts["png"], []byte("\x89PNG")))
}

func TestExecuteMatchesDirectCompute(t *testing.T) {
	want, err := wireimg.Compute(testNets(), 4)
	require.NoError(t, err)

	r := NewRunner(nil, nil, quietLogger())
	for _, parallel := range []bool{false, true} {
		res, err := r.Execute(context.Background(), testNets(), Options{Grid: 4, Parallel: parallel})
		require.NoError(t, err)
		assert.True(t, want.Equal(res.Batch), "parallel=%v", parallel)
	}
}

func TestExecuteUsesCache(t *testing.T) {
	mc := newMemCache()
	r := NewRunner(mc, nil, quietLogger())
	ctx := context.Background()
	opts := Options{Grid: 4}

	first, err := r.Execute(ctx, testNets(), opts)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.Equal(t, 1, mc.sets)

	second, err := r.Execute(ctx, testNets(), opts)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.True(t, first.Batch.Equal(second.Batch))
	assert.Equal(t, first.NetsHash, second.NetsHash)
	assert.NotEqual(t, first.RunID, second.RunID)

	// A different grid is a different key.
	third, err := r.Execute(ctx, testNets(), Options{Grid: 5})
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
}

func TestExecuteRefreshBypassesLookup(t *testing.T) {
	mc := newMemCache()
	r := NewRunner(mc, nil, quietLogger())
	ctx := context.Background()

	_, err := r.Execute(ctx, testNets(), Options{Grid: 4})
	require.NoError(t, err)
	gets := mc.gets

	res, err := r.Execute(ctx, testNets(), Options{Grid: 4, Refresh: true})
	require.NoError(t, err)
	assert.False(t, res.CacheHit)
	assert.Equal(t, gets, mc.gets, "refresh should not read the cache")
	assert.Equal(t, 2, mc.sets)
}

func TestExecuteIgnoresCorruptCacheEntry(t *testing.T) {
	mc := newMemCache()
	r := NewRunner(mc, cache.NewScopedKeyer(nil, "t:"), quietLogger())
	ctx := context.Background()

	res, err := r.Execute(ctx, testNets(), Options{Grid: 4})
	require.NoError(t, err)
	for k := range mc.data {
		mc.data[k] = []byte("garbage")
	}

	again, err := r.Execute(ctx, testNets(), Options{Grid: 4})
	require.NoError(t, err)
	assert.False(t, again.CacheHit)
	assert.True(t, res.Batch.Equal(again.Batch))
}

func TestExecuteDiscardsCacheEntryWithWrongGrid(t *testing.T) {
	mc := newMemCache()
	var logs bytes.Buffer
	r := NewRunner(mc, nil, log.NewWithOptions(&logs, log.Options{}))
	ctx := context.Background()

	_, err := r.Execute(ctx, testNets(), Options{Grid: 4})
	require.NoError(t, err)

	small, err := wireimg.Compute(wireimg.NewNetMap(), 2)
	require.NoError(t, err)
	data, err := netio.MarshalBatch(small)
	require.NoError(t, err)
	for k := range mc.data {
		mc.data[k] = data
	}

	again, err := r.Execute(ctx, testNets(), Options{Grid: 4})
	require.NoError(t, err)
	assert.False(t, again.CacheHit)
	assert.Equal(t, 4, again.Batch.Grid())
	assert.Contains(t, logs.String(), "wrong grid size")
	assert.NotContains(t, logs.String(), "<nil>")
}

func TestExecuteRejectsOverflowingCosts(t *testing.T) {
	mc := newMemCache()
	r := NewRunner(mc, nil, quietLogger())

	nets := wireimg.NewNetMap()
	nets[6] = []wireimg.Net{{ID: "hot", Box: wireimg.NetBox{StartX: 3, EndX: 4, EndY: 4, Weight: math.MaxFloat64}}}

	_, err := r.Execute(context.Background(), nets, Options{Grid: 4, Formats: []string{"json"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)
	assert.Contains(t, err.Error(), "orientation 6")
	assert.Zero(t, mc.sets, "overflowed batch should not be cached")
}

func TestExecuteRejectsInvalidInput(t *testing.T) {
	mc := newMemCache()
	r := NewRunner(mc, nil, quietLogger())
	ctx := context.Background()

	missing := testNets()
	delete(missing, 5)
	_, err := r.Execute(ctx, missing, Options{Grid: 4})
	assert.True(t, errors.Is(err, errors.ErrCodeMissingOrientation), "got %v", err)

	_, err = r.Execute(ctx, testNets(), Options{Grid: 2})
	assert.True(t, errors.Is(err, errors.ErrCodeCoordinateOutOfRange), "got %v", err)

	_, err = r.Execute(ctx, testNets(), Options{Grid: -1})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidGrid), "got %v", err)

	assert.Zero(t, mc.gets, "invalid input should not reach the cache")
	assert.Zero(t, mc.sets)
}

func TestExecuteZeroGrid(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), wireimg.NewNetMap(), Options{Grid: 0})
	require.NoError(t, err)
	for o, img := range res.Batch {
		assert.Equal(t, 0, img.Size(), "orientation %d", o)
	}

	// Heatmaps of empty images are refused.
	_, err = r.Execute(context.Background(), wireimg.NewNetMap(), Options{Grid: 0, Formats: []string{"png"}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidGrid), "got %v", err)
}

func TestBatchHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetBatchHooks(h)
	defer observability.Reset()

	r := NewRunner(nil, nil, quietLogger())
	_, err := r.Execute(context.Background(), testNets(), Options{Grid: 4, Parallel: true})
	require.NoError(t, err)

	assert.Equal(t, 1, h.started)
	assert.Equal(t, 1, h.finished)
	assert.NoError(t, h.lastErr)
	assert.Len(t, h.completed, wireimg.NumOrientations)
	for o, err := range h.completed {
		assert.NoError(t, err, "orientation %d", o)
	}
}

func TestComputeCancelledContext(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Compute(ctx, testNets(), Options{Grid: 4, Parallel: true})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderBatchFormats(t *testing.T) {
	b, err := wireimg.Compute(testNets(), 4)
	require.NoError(t, err)

	out, err := RenderBatch(b, []string{"svg", "json"})
	require.NoError(t, err)
	assert.Contains(t, string(out["svg"]), "<svg")
	assert.Contains(t, string(out["json"]), `"grid": 4`)

	_, err = RenderBatch(b, []string{"pdf"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}
