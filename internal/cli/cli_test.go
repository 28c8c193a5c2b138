package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/orientplace/pkg/cache"
	"github.com/matzehuels/orientplace/pkg/errors"
	"github.com/matzehuels/orientplace/pkg/netio"
	"github.com/matzehuels/orientplace/pkg/wireimg"
)

func testNetMap() wireimg.NetMap {
	nets := wireimg.NewNetMap()
	nets[0] = []wireimg.Net{{ID: "clk", Box: wireimg.NetBox{StartX: 1, StartY: 1, EndX: 3, EndY: 3, Weight: 2}}}
	nets[2] = []wireimg.Net{{ID: "rst", Box: wireimg.NetBox{EndX: 4, EndY: 2, BaseOffsetX: 1, Weight: 0.5}}}
	nets[7] = []wireimg.Net{{ID: "d0", Box: wireimg.NetBox{StartX: 2, EndX: 4, EndY: 4, Weight: 1}}}
	return nets
}

// writeNets writes testNetMap as a JSON net file. A negative grid omits it.
func writeNets(t *testing.T, dir string, grid int) string {
	t.Helper()
	data, err := netio.MarshalNetMap(testNetMap(), grid)
	require.NoError(t, err)
	path := filepath.Join(dir, "nets.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// execute runs the root command with args and an isolated cache directory.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) error {
	t.Helper()
	_, _, err := runRoot(t, ctx, LogInfo, args...)
	return err
}

// runRoot runs the root command at the given log level and returns what it
// printed and logged.
func runRoot(t *testing.T, ctx context.Context, level log.Level, args ...string) (stdout, logs string, err error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(t.TempDir(), "xdg"))
	t.Setenv(envRedisURL, "")
	var out, logBuf bytes.Buffer
	root := New(&logBuf, level).RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	err = root.ExecuteContext(ctx)
	return out.String(), logBuf.String(), err
}

func TestComputeCommand(t *testing.T) {
	dir := t.TempDir()
	nets := writeNets(t, dir, 4)

	require.NoError(t, execute(t, "compute", nets, "--no-cache", "-f", "json,svg"))

	got, err := netio.ReadBatchFile(filepath.Join(dir, "nets-images.json"))
	require.NoError(t, err)
	want, err := wireimg.Compute(testNetMap(), 4)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))
	assert.FileExists(t, filepath.Join(dir, "nets-images.svg"))
}

func TestComputeCommandParallelGridOverride(t *testing.T) {
	dir := t.TempDir()
	nets := writeNets(t, dir, -1)
	out := filepath.Join(dir, "out", "blk7")

	require.NoError(t, execute(t, "compute", nets, "--grid", "6", "--parallel", "-o", out))

	got, err := netio.ReadBatchFile(out + "-images.json")
	require.NoError(t, err)
	assert.Equal(t, 6, got.Grid())
}

func TestComputeCommandErrors(t *testing.T) {
	dir := t.TempDir()

	err := execute(t, "compute", writeNets(t, dir, -1), "--no-cache")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidGrid), "got %v", err)

	err = execute(t, "compute", writeNets(t, dir, 2), "--no-cache")
	assert.True(t, errors.Is(err, errors.ErrCodeCoordinateOutOfRange), "got %v", err)

	err = execute(t, "compute", filepath.Join(dir, "absent.json"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "got %v", err)

	err = execute(t, "compute", writeNets(t, dir, 4), "-f", "pdf", "--no-cache")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)

	err = execute(t, "compute", writeNets(t, dir, 4), "--grid", "-5", "--no-cache")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidGrid), "got %v", err)
	assert.Contains(t, err.Error(), "non-negative, got -5")
	assert.NotContains(t, err.Error(), "no grid size")
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, execute(t, "compute", writeNets(t, dir, 4), "--no-cache"))
	images := filepath.Join(dir, "nets-images.json")

	require.NoError(t, execute(t, "render", images))
	assert.FileExists(t, filepath.Join(dir, "nets-images.png"))

	require.NoError(t, execute(t, "render", images, "--orientation", "3", "-f", "svg"))
	assert.FileExists(t, filepath.Join(dir, "nets-images-o3.svg"))

	err := execute(t, "render", images, "--orientation", "9")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)

	err = execute(t, "render", images, "-f", "json")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)
}

func TestVerifyCommand(t *testing.T) {
	nets := writeNets(t, t.TempDir(), 4)
	out, _, err := runRoot(t, context.Background(), LogInfo, "verify", nets, "--rounds", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Sequential and parallel batches match over 2 runs")

	err = execute(t, "verify", nets, "--rounds", "0")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)
}

func TestComputeCommandCaches(t *testing.T) {
	xdg := filepath.Join(t.TempDir(), "xdg")
	dir := t.TempDir()
	nets := writeNets(t, dir, 4)

	run := func(args ...string) string {
		t.Helper()
		t.Setenv("XDG_CACHE_HOME", xdg)
		t.Setenv(envRedisURL, "")
		var out bytes.Buffer
		root := New(&bytes.Buffer{}, LogInfo).RootCommand()
		root.SetArgs(args)
		root.SetOut(&out)
		require.NoError(t, root.ExecuteContext(context.Background()))
		return out.String()
	}

	out := run("compute", nets)
	assert.Contains(t, out, "grid 4 · 3 nets · sequential · fresh")
	entries, err := os.ReadDir(filepath.Join(xdg, appName))
	require.NoError(t, err)
	assert.NotEmpty(t, entries, "compute should populate the cache")

	out = run("compute", nets)
	assert.Contains(t, out, "grid 4 · 3 nets · sequential · cached")

	out = run("cache", "clear")
	assert.Contains(t, out, "Cleared 1 cached batches")
	entries, err = os.ReadDir(filepath.Join(xdg, appName))
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Equal(t, filepath.Join(xdg, appName)+"\n", run("cache", "path"))
}

func TestDiffBatches(t *testing.T) {
	a, err := wireimg.Compute(testNetMap(), 4)
	require.NoError(t, err)
	b, err := wireimg.Compute(testNetMap(), 4)
	require.NoError(t, err)
	assert.Empty(t, diffBatches(a, b))

	b[5].Set(0, 0, 42)
	assert.Equal(t, []int{5}, diffBatches(a, b))

	empty, err := wireimg.Compute(wireimg.NewNetMap(), 0)
	require.NoError(t, err)
	assert.Empty(t, diffBatches(empty, empty))
}

func TestResolveGrid(t *testing.T) {
	g, err := resolveGrid(0, false, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, g)

	g, err = resolveGrid(3, true, 8)
	require.NoError(t, err)
	assert.Equal(t, 3, g)

	g, err = resolveGrid(0, true, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, g)

	_, err = resolveGrid(0, false, -1)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidGrid))
	assert.Contains(t, err.Error(), "no grid size")

	for _, flag := range []int{-1, -5} {
		_, err = resolveGrid(flag, true, 8)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidGrid))
		assert.Contains(t, err.Error(), "non-negative", "--grid %d", flag)
	}

	_, err = resolveGrid(errors.MaxGrid+1, true, -1)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidGrid))
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	t.Run("disabled", func(t *testing.T) {
		c, err := New(&bytes.Buffer{}, LogInfo).newCache(ctx, true)
		require.NoError(t, err)
		assert.IsType(t, cache.NullCache{}, c)
	})

	t.Run("file cache under xdg", func(t *testing.T) {
		t.Setenv(envRedisURL, "")
		c, err := New(&bytes.Buffer{}, LogInfo).newCache(ctx, false)
		require.NoError(t, err)
		fc, ok := c.(*cache.FileCache)
		require.True(t, ok, "got %T", c)
		assert.Equal(t, filepath.Join(xdg, appName), fc.Dir())
	})

	t.Run("unusable redis url falls back", func(t *testing.T) {
		t.Setenv(envRedisURL, "http://not-redis")
		var logs bytes.Buffer
		c, err := New(&logs, LogInfo).newCache(ctx, false)
		require.NoError(t, err)
		assert.IsType(t, &cache.FileCache{}, c)
		assert.Contains(t, logs.String(), "redis cache unavailable")
	})
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
	dir, err := cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/custom-cache", appName), dir)

	t.Setenv("XDG_CACHE_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	dir, err = cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cache", appName), dir)
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "nets.json", "nets"},
		{"", "dir/nets.toml", "dir/nets"},
		{"out.png", "nets.json", "out"},
		{"out/blk7", "nets.json", "out/blk7"},
		{"out.v2", "nets.json", "out.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	if diff := cmp.Diff([]string{"png"}, parseFormats("", "png")); diff != "" {
		t.Errorf("default (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"json", "svg"}, parseFormats("json, svg", "png")); diff != "" {
		t.Errorf("list (-want +got):\n%s", diff)
	}
}

func TestSummaryTable(t *testing.T) {
	b, err := wireimg.Compute(testNetMap(), 4)
	require.NoError(t, err)

	out := summaryTable(b)
	for _, o := range wireimg.Orientations() {
		assert.Contains(t, out, o.String())
	}
	assert.Contains(t, out, "Non-zero")

	// Orientations without nets cost nothing.
	assert.Equal(t, 1, cheapestOrientation(b))
}

func TestBatchViewModel(t *testing.T) {
	b, err := wireimg.Compute(testNetMap(), 4)
	require.NoError(t, err)
	m := NewBatchViewModel(b)

	press := func(m BatchViewModel, k tea.KeyMsg) BatchViewModel {
		next, _ := m.Update(k)
		return next.(BatchViewModel)
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, wireimg.Orientation(7), m.Current)
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, wireimg.Orientation(0), m.Current)
	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'5'}})
	assert.Equal(t, wireimg.Orientation(5), m.Current)
	assert.Contains(t, m.View(), "Orientation 5 of 8")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	assert.NotNil(t, cmd)
}

func TestShadeImage(t *testing.T) {
	img, err := wireimg.ImageFromRows([][]float64{
		{0, 1},
		{0, 0},
	})
	require.NoError(t, err)

	// Row y=1 is drawn first; cell (0,1) is the maximum.
	lines := strings.Split(shadeImage(img, 10), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "█ ", lines[0])
	assert.Equal(t, "  ", lines[1])

	empty, err := wireimg.Compute(wireimg.NewNetMap(), 0)
	require.NoError(t, err)
	assert.Contains(t, shadeImage(empty[0], 10), "empty")
}
