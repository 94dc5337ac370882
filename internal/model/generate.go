package model

import (
	"context"
	"fmt"
	"image"
	"time"

	"dalled/internal/imaging"
)

// Generate asks the model for n images of prompt and returns them in the
// order the backend produced them. Calls are admitted one at a time.
func (m *Model) Generate(ctx context.Context, prompt string, n int) ([]image.Image, error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid image count %d", n)
	}
	if n == 0 {
		return []image.Image{}, nil
	}
	m.mu.RLock()
	st := m.state
	m.mu.RUnlock()
	switch st {
	case StateReady:
	case StateDraining:
		return nil, tooBusyError{reason: "shutting down"}
	default:
		return nil, notReadyError{state: st}
	}

	release, err := m.beginGeneration(ctx)
	if err != nil {
		if IsTooBusy(err) {
			generationsTotal.WithLabelValues("too_busy").Inc()
		}
		return nil, err
	}
	defer release()
	return m.generate(ctx, prompt, n)
}

// generate performs the backend call without admission. Callers hold the
// generation slot, or run before the server starts accepting requests.
func (m *Model) generate(ctx context.Context, prompt string, n int) ([]image.Image, error) {
	if m.backend == nil {
		return nil, fmt.Errorf("model backend not configured")
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	start := time.Now()
	m.publish(Event{Name: "generate_start", Fields: map[string]any{"n": n}})

	imgs, err := m.callBackend(ctx, prompt, n)
	dur := time.Since(start)
	if err != nil {
		generationsTotal.WithLabelValues("error").Inc()
		generationDuration.WithLabelValues("error").Observe(dur.Seconds())
		m.mu.Lock()
		m.err = err.Error()
		m.mu.Unlock()
		m.log.Error().Err(err).Int("n", n).Dur("dur", dur).Msg("generation failed")
		m.publish(Event{Name: "generate_error", Fields: map[string]any{"error": err.Error()}})
		return nil, err
	}

	generationsTotal.WithLabelValues("ok").Inc()
	generationDuration.WithLabelValues("ok").Observe(dur.Seconds())
	imagesTotal.Add(float64(len(imgs)))
	m.mu.Lock()
	m.generations++
	m.images += uint64(len(imgs))
	m.mu.Unlock()
	m.log.Debug().Int("n", n).Dur("dur", dur).Msg("generation done")
	m.publish(Event{Name: "generate_done", Fields: map[string]any{"n": n, "dur_ms": int(dur / time.Millisecond)}})
	return imgs, nil
}

func (m *Model) callBackend(ctx context.Context, prompt string, n int) ([]image.Image, error) {
	raw, err := m.backend.Generate(ctx, BackendRequest{
		Model:  m.variant.BackendModel,
		Prompt: prompt,
		N:      n,
		Size:   m.size,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if len(raw) != n {
		return nil, countMismatchError{got: len(raw), want: n}
	}
	out := make([]image.Image, len(raw))
	for i, b := range raw {
		img, err := imaging.Decode(b)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		out[i] = img
	}
	return out, nil
}
