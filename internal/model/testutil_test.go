package model

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"dalled/pkg/types"
)

// pngBytes returns a tiny encoded PNG of the given width.
func pngBytes(t *testing.T, w int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

// fakeBackend is a lightweight in-memory backend used for tests.
type fakeBackend struct {
	mu    sync.Mutex
	t     *testing.T
	err   error
	extra int           // images to add to (or drop from, if negative) every response
	block chan struct{} // if set, Generate waits until closed
	calls []BackendRequest
}

func (f *fakeBackend) Generate(ctx context.Context, req BackendRequest) ([][]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]byte, 0, req.N+f.extra)
	for i := 0; i < req.N+f.extra; i++ {
		out = append(out, pngBytes(f.t, i+1))
	}
	return out, nil
}

func (f *fakeBackend) Calls() []BackendRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]BackendRequest(nil), f.calls...)
}

func newTestModel(t *testing.T, be Backend, cfg Config) *Model {
	t.Helper()
	cfg.Backend = be
	if cfg.Variant.Name == "" {
		cfg.Variant = types.ModelVariant{Name: "Mini", BackendModel: "mini-test"}
	}
	return New(cfg)
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}
