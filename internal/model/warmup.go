package model

import (
	"context"
	"time"
)

const warmupPrompt = "warm-up"

// Warmup runs one throwaway generation so that the model server pays its
// lazy initialization cost before real traffic arrives. On failure the model
// stays in the error state; there is no retry.
func (m *Model) Warmup(ctx context.Context) error {
	start := time.Now()
	m.mu.Lock()
	m.state = StateLoading
	m.err = ""
	m.mu.Unlock()
	m.log.Info().Str("variant", m.variant.Name).Str("backend_model", m.variant.BackendModel).Msg("warm-up start")
	m.publish(Event{Name: "warmup_start", Fields: map[string]any{"variant": m.variant.Name}})

	if _, err := m.generate(ctx, warmupPrompt, 1); err != nil {
		m.mu.Lock()
		m.state = StateError
		m.err = err.Error()
		m.mu.Unlock()
		m.log.Error().Err(err).Dur("dur", time.Since(start)).Msg("warm-up failed")
		m.publish(Event{Name: "warmup_error", Fields: map[string]any{"error": err.Error()}})
		return err
	}

	m.mu.Lock()
	m.state = StateReady
	m.err = ""
	m.mu.Unlock()
	m.log.Info().Dur("dur", time.Since(start)).Msg("warm-up ready")
	m.publish(Event{Name: "warmup_ready", Fields: map[string]any{"dur_ms": int(time.Since(start) / time.Millisecond)}})
	return nil
}
