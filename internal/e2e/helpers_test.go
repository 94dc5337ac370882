package e2e

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/samber/do"

	"dalled/internal/config"
	"dalled/internal/inject"
	"dalled/internal/model"
)

// fakeModelServer speaks the OpenAI images API and returns n small PNGs.
type fakeModelServer struct {
	*httptest.Server
	mu      sync.Mutex
	prompts []string
	fail    atomic.Bool
	block   chan struct{} // if non-nil, non warm-up requests wait for it
}

func newFakeModelServer(t *testing.T) *fakeModelServer {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{G: 255, A: 255})
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	b64 := base64.StdEncoding.EncodeToString(buf.Bytes())

	f := &fakeModelServer{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/images/generations" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Prompt string `json:"prompt"`
			N      int    `json:"n"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.prompts = append(f.prompts, req.Prompt)
		block := f.block
		f.mu.Unlock()
		if block != nil && req.Prompt != "warm-up" {
			select {
			case <-block:
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if f.fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"model crashed","type":"server_error"}}`))
			return
		}
		data := make([]map[string]string, req.N)
		for i := range data {
			data[i] = map[string]string{"b64_json": b64}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"created": 1, "data": data})
	}))
	t.Cleanup(f.Server.Close)
	return f
}

func (f *fakeModelServer) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// fakeCloudinary answers upload calls with sequential asset URLs.
type fakeCloudinary struct {
	*httptest.Server
	count atomic.Int64
	fail  atomic.Bool
}

func newFakeCloudinary(t *testing.T) *fakeCloudinary {
	t.Helper()
	f := &fakeCloudinary{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		if f.fail.Load() {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Invalid image file"}}`))
			return
		}
		n := f.count.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"public_id":  fmt.Sprintf("img%d", n),
			"url":        fmt.Sprintf("http://res.test/demo/img%d.jpg", n),
			"secure_url": fmt.Sprintf("https://res.test/demo/img%d.jpg", n),
		})
	}))
	t.Cleanup(f.Server.Close)
	return f
}

type stack struct {
	srv   *httptest.Server
	model *model.Model
	cfg   config.Config
}

// newStack wires the real components against the fake servers. mutate may
// adjust the config before wiring.
func newStack(t *testing.T, ms *fakeModelServer, cld *fakeCloudinary, mutate func(*config.Config)) *stack {
	t.Helper()
	cfg := config.Default()
	cfg.ModelURL = ms.URL + "/v1"
	cfg.Upload.APIURL = cld.URL
	if mutate != nil {
		mutate(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	creds := config.Credentials{CloudName: "demo", APIKey: "k", APISecret: "s"}
	inj := inject.Setup(context.Background(), cfg, creds, zerolog.Nop())
	t.Cleanup(func() { _ = inj.Shutdown() })

	m := do.MustInvoke[*model.Model](inj)
	h := do.MustInvoke[http.Handler](inj)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &stack{srv: srv, model: m, cfg: cfg}
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
