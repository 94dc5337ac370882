package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dalled/internal/config"
	"dalled/pkg/types"
)

func TestE2E_Health_Ready_Generate_Status(t *testing.T) {
	ms := newFakeModelServer(t)
	cld := newFakeCloudinary(t)
	st := newStack(t, ms, cld, nil)

	// 1) GET / works regardless of model state
	resp, body := httpGet(t, st.srv.URL+"/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"success":true`) {
		t.Fatalf("/ status=%d body=%s", resp.StatusCode, body)
	}

	// 2) Before warm-up: not ready, generation rejected with 503
	resp, body = httpGet(t, st.srv.URL+"/readyz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("/readyz expected 503, got %d body=%s", resp.StatusCode, body)
	}
	resp, body = httpPostJSON(t, st.srv.URL+"/dalle", []byte(`{"text":"a cat","num_images":1}`))
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("/dalle before warm-up expected 503, got %d body=%s", resp.StatusCode, body)
	}

	// 3) Warm-up issues the throwaway prompt
	if err := st.model.Warmup(context.Background()); err != nil {
		t.Fatalf("warmup: %v", err)
	}
	if p := ms.Prompts(); len(p) != 1 || p[0] != "warm-up" {
		t.Fatalf("expected a single warm-up call, got %v", p)
	}
	resp, _ = httpGet(t, st.srv.URL+"/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/readyz expected 200 after warm-up, got %d", resp.StatusCode)
	}

	// 4) Generate two images
	resp, body = httpPostJSON(t, st.srv.URL+"/dalle", []byte(`{"text":"a cat","num_images":2}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/dalle status=%d body=%s", resp.StatusCode, body)
	}
	var gen types.GenerateResponse
	if err := json.Unmarshal(body, &gen); err != nil {
		t.Fatalf("/dalle json: %v body=%s", err, body)
	}
	if len(gen.GeneratedImgs) != 2 || gen.GeneratedImgsFormat != "jpeg" {
		t.Fatalf("unexpected response %+v", gen)
	}
	for _, u := range gen.GeneratedImgs {
		if !strings.HasPrefix(u, "http://res.test/demo/") {
			t.Fatalf("unexpected url %q", u)
		}
	}
	if gen.GeneratedImgs[0] == gen.GeneratedImgs[1] {
		t.Fatalf("expected distinct urls, got %v", gen.GeneratedImgs)
	}
	if n := cld.count.Load(); n != 2 {
		t.Fatalf("expected 2 uploads to the configured api host, got %d", n)
	}

	// 5) Status reflects the work done
	resp, body = httpGet(t, st.srv.URL+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/status status=%d body=%s", resp.StatusCode, body)
	}
	var status types.StatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatalf("/status json: %v body=%s", err, body)
	}
	if status.State != "ready" || status.Model.Name != "Mini" || status.GenerationsTotal != 2 || status.ImagesTotal != 3 {
		t.Fatalf("unexpected status %+v", status)
	}
	if len(status.ModelVersions) != 3 || status.ModelVersions[0].Name != "Mega" {
		t.Fatalf("expected the three variants sorted by name, got %+v", status.ModelVersions)
	}
}

func TestE2E_ZeroImagesTouchesNothing(t *testing.T) {
	ms := newFakeModelServer(t)
	cld := newFakeCloudinary(t)
	st := newStack(t, ms, cld, nil)
	if err := st.model.Warmup(context.Background()); err != nil {
		t.Fatalf("warmup: %v", err)
	}
	resp, body := httpPostJSON(t, st.srv.URL+"/dalle", []byte(`{"text":"a cat","num_images":0}`))
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"generatedImgs":[]`) {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	if len(ms.Prompts()) != 1 || cld.count.Load() != 0 {
		t.Fatalf("expected no model or upload calls, got prompts=%v uploads=%d", ms.Prompts(), cld.count.Load())
	}
}

func TestE2E_InvalidRequests400(t *testing.T) {
	st := newStack(t, newFakeModelServer(t), newFakeCloudinary(t), nil)
	if err := st.model.Warmup(context.Background()); err != nil {
		t.Fatalf("warmup: %v", err)
	}
	for _, body := range []string{
		`{"num_images":1}`,
		`{"text":"a cat"}`,
		`{"text":"a cat","num_images":-2}`,
		`{"text":"a cat","num_images":1000}`,
		`{"text":`,
	} {
		resp, b := httpPostJSON(t, st.srv.URL+"/dalle", []byte(body))
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d body=%s", body, resp.StatusCode, b)
		}
		var e types.ErrorResponse
		if err := json.Unmarshal(b, &e); err != nil || e.Code != http.StatusBadRequest {
			t.Fatalf("%s: unexpected error body %s", body, b)
		}
	}
}

func TestE2E_SaveToDiskPNG(t *testing.T) {
	out := t.TempDir()
	st := newStack(t, newFakeModelServer(t), newFakeCloudinary(t), func(c *config.Config) {
		c.SaveToDisk = true
		c.OutputDir = out
		c.ImgFormat = "png"
	})
	if err := st.model.Warmup(context.Background()); err != nil {
		t.Fatalf("warmup: %v", err)
	}
	resp, body := httpPostJSON(t, st.srv.URL+"/dalle", []byte(`{"text":"../escape","num_images":2}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	entries, err := os.ReadDir(out)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one generation dir in %s, got %v err=%v", out, entries, err)
	}
	dir := filepath.Join(out, entries[0].Name())
	if !strings.HasSuffix(entries[0].Name(), "_.._escape") {
		t.Fatalf("unexpected dir name %q", entries[0].Name())
	}
	for _, name := range []string{"0.png", "1.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestE2E_UploadFailure500(t *testing.T) {
	cld := newFakeCloudinary(t)
	st := newStack(t, newFakeModelServer(t), cld, nil)
	if err := st.model.Warmup(context.Background()); err != nil {
		t.Fatalf("warmup: %v", err)
	}
	cld.fail.Store(true)
	resp, body := httpPostJSON(t, st.srv.URL+"/dalle", []byte(`{"text":"a cat","num_images":2}`))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d body=%s", resp.StatusCode, body)
	}
	if strings.Contains(string(body), "generatedImgs") {
		t.Fatalf("no urls expected on failure: %s", body)
	}
}

func TestE2E_ModelFailure500(t *testing.T) {
	ms := newFakeModelServer(t)
	st := newStack(t, ms, newFakeCloudinary(t), nil)
	if err := st.model.Warmup(context.Background()); err != nil {
		t.Fatalf("warmup: %v", err)
	}
	ms.fail.Store(true)
	resp, body := httpPostJSON(t, st.srv.URL+"/dalle", []byte(`{"text":"a cat","num_images":1}`))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d body=%s", resp.StatusCode, body)
	}
}

func TestE2E_WarmupFailureKeepsNotReady(t *testing.T) {
	ms := newFakeModelServer(t)
	ms.fail.Store(true)
	st := newStack(t, ms, newFakeCloudinary(t), nil)
	if err := st.model.Warmup(context.Background()); err == nil {
		t.Fatalf("expected warm-up failure")
	}
	resp, _ := httpGet(t, st.srv.URL+"/readyz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 after failed warm-up, got %d", resp.StatusCode)
	}
}

// TestE2E_Backpressure429 verifies we return 429 Too Many Requests when the
// queue is full and the wait timeout elapses.
func TestE2E_Backpressure429(t *testing.T) {
	ms := newFakeModelServer(t)
	st := newStack(t, ms, newFakeCloudinary(t), func(c *config.Config) {
		c.MaxQueueDepth = 1
		c.MaxWaitSeconds = 1
	})
	if err := st.model.Warmup(context.Background()); err != nil {
		t.Fatalf("warmup: %v", err)
	}
	ms.mu.Lock()
	ms.block = make(chan struct{})
	ms.mu.Unlock()

	doGenerate := func() int {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, st.srv.URL+"/dalle", strings.NewReader(`{"text":"slow","num_images":1}`))
		if err != nil {
			t.Errorf("new req: %v", err)
			return 0
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Errorf("do req: %v", err)
			return 0
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	// With a single queue slot the first request holds the model; the rest
	// cannot get a slot within max_wait and are rejected.
	done := make(chan int, 3)
	go func() { done <- doGenerate() }()
	time.Sleep(100 * time.Millisecond)
	go func() { done <- doGenerate() }()
	go func() { done <- doGenerate() }()

	got429 := 0
	for i := 0; i < 2; i++ {
		if s := <-done; s == http.StatusTooManyRequests {
			got429++
		}
	}
	close(ms.block)
	first := <-done
	if got429 != 2 || first != http.StatusOK {
		t.Fatalf("expected two 429s and a final 200, got 429s=%d last=%d", got429, first)
	}
}

func TestE2E_GenerateTimeout500(t *testing.T) {
	ms := newFakeModelServer(t)
	cld := newFakeCloudinary(t)
	st := newStack(t, ms, cld, func(c *config.Config) {
		c.GenerateTimeoutSeconds = 1
	})
	if err := st.model.Warmup(context.Background()); err != nil {
		t.Fatalf("warmup: %v", err)
	}
	ms.mu.Lock()
	ms.block = make(chan struct{})
	ms.mu.Unlock()

	start := time.Now()
	resp, body := httpPostJSON(t, st.srv.URL+"/dalle", []byte(`{"text":"slow","num_images":1}`))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 after the generation timeout, got %d body=%s", resp.StatusCode, body)
	}
	if d := time.Since(start); d > 5*time.Second {
		t.Fatalf("generation was not bounded by the timeout: %v", d)
	}
	if cld.count.Load() != 0 {
		t.Fatalf("nothing should be uploaded after a timeout")
	}
}
