package batch

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/receiptworks/voucherscan/internal/engine"
	"github.com/receiptworks/voucherscan/internal/pipeline"
)

type stubEngine struct{}

func (stubEngine) Run(_ context.Context, _ image.Image, _ engine.Params) (engine.Tokens, error) {
	return engine.Tokens{
		Text:  "Voucher No: 77\nNet Total: 120.00",
		Words: []engine.Word{{Text: "w", Confidence: 80}},
	}, nil
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 60, 40))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func writeCorrupt(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	return path
}

func newTestRunner(cfg Config) *Runner {
	pipe := pipeline.New(pipeline.DefaultConfig(), stubEngine{}, nil)
	return NewRunner(cfg, pipe, nil)
}

func TestRunIsolatesPerFileFailures(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writePNG(t, dir, "a.png"),
		writeCorrupt(t, dir, "b.png"),
		writePNG(t, dir, "c.png"),
	}

	r := newTestRunner(DefaultConfig())
	results := r.Run(context.Background(), paths)

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Pipeline)
	assert.Equal(t, "77", results[0].Pipeline.Voucher.Master.VoucherNumber)

	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Pipeline)

	assert.NoError(t, results[2].Err)
	require.NotNil(t, results[2].Pipeline)

	processed, failed := r.Progress()
	assert.Equal(t, 3, processed)
	assert.Equal(t, 1, failed)
}

func TestRunStopsSchedulingAfterFailure(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeCorrupt(t, dir, "a.png"),
		writePNG(t, dir, "b.png"),
		writePNG(t, dir, "c.png"),
	}

	cfg := Config{Workers: 1, ContinueOnError: false}
	results := newTestRunner(cfg).Run(context.Background(), paths)

	require.Len(t, results, 3)
	assert.Error(t, results[0].Err)
	// the remaining files were skipped, not processed
	assert.ErrorIs(t, results[1].Err, context.Canceled)
	assert.ErrorIs(t, results[2].Err, context.Canceled)
}

func TestRunWithCancelledContext(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writePNG(t, dir, "a.png")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := newTestRunner(DefaultConfig()).Run(ctx, paths)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestResultsKeepInputOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"e.png", "a.png", "c.png"} {
		paths = append(paths, writePNG(t, dir, name))
	}

	results := newTestRunner(Config{Workers: 3, ContinueOnError: true}).Run(context.Background(), paths)
	require.Len(t, results, 3)
	for i, p := range paths {
		assert.Equal(t, p, results[i].Path)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "b.png")
	writePNG(t, dir, "a.jpg")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writePNG(t, sub, "c.tiff")

	paths, err := Discover([]string{dir})
	require.NoError(t, err)
	require.Len(t, paths, 3)
	assert.Equal(t, filepath.Join(dir, "a.jpg"), paths[0])

	t.Run("explicit unsupported file errors", func(t *testing.T) {
		_, err := Discover([]string{filepath.Join(dir, "notes.txt")})
		require.Error(t, err)
	})

	t.Run("missing input errors", func(t *testing.T) {
		_, err := Discover([]string{filepath.Join(dir, "gone")})
		require.Error(t, err)
	})
}
