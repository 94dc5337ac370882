package model

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// maxDownloadBytes caps a single image fetched by URL.
const maxDownloadBytes = 32 << 20

// OpenAIBackend implements Backend against any server that speaks the OpenAI
// image generation API (LocalAI, a DALL-E mini sidecar, OpenAI itself).
type OpenAIBackend struct {
	client     *openai.Client
	httpClient *http.Client
}

// NewOpenAIBackend constructs a backend for baseURL (e.g.
// http://127.0.0.1:8080/v1). apiKey may be empty for local servers.
func NewOpenAIBackend(baseURL, apiKey string, connectTimeout time.Duration) *OpenAIBackend {
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout=0: deadlines come from the request context.
	hc := &http.Client{Transport: tr, Timeout: 0}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = hc
	return &OpenAIBackend{client: openai.NewClientWithConfig(cfg), httpClient: hc}
}

func (b *OpenAIBackend) Generate(ctx context.Context, req BackendRequest) ([][]byte, error) {
	resp, err := b.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          req.Model,
		N:              req.N,
		Size:           req.Size,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("model server: %w", err)
	}
	out := make([][]byte, 0, len(resp.Data))
	for i, d := range resp.Data {
		switch {
		case d.B64JSON != "":
			raw, err := base64.StdEncoding.DecodeString(d.B64JSON)
			if err != nil {
				return nil, fmt.Errorf("image %d: decode b64_json: %w", i, err)
			}
			out = append(out, raw)
		case d.URL != "":
			// Some servers ignore response_format and always return URLs.
			raw, err := b.download(ctx, d.URL)
			if err != nil {
				return nil, fmt.Errorf("image %d: %w", i, err)
			}
			out = append(out, raw)
		default:
			return nil, fmt.Errorf("image %d: empty response item", i)
		}
	}
	return out, nil
}

func (b *OpenAIBackend) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.New("download " + url + ": " + resp.Status + ": " + string(body))
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > maxDownloadBytes {
		return nil, fmt.Errorf("download %s: image exceeds %d bytes", url, maxDownloadBytes)
	}
	return raw, nil
}
