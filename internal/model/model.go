package model

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"dalled/pkg/types"
)

// Model is the process-wide handle on the text-to-image model.
type Model struct {
	mu        sync.RWMutex
	state     State
	err       string
	backend   Backend
	variant   types.ModelVariant
	size      string
	timeout   time.Duration
	log       zerolog.Logger
	publisher EventPublisher
	startTime time.Time

	// Admission primitives
	genCh         chan struct{} // size 1: single in-flight generation
	queueCh       chan struct{} // buffered: queue slots
	maxQueueDepth int
	maxWait       time.Duration

	generations uint64
	images      uint64
}

// Ready reports whether warm-up has completed and the model accepts work.
func (m *Model) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateReady
}

// Variant returns the model variant this handle serves.
func (m *Model) Variant() types.ModelVariant { return m.variant }

// StartTime is when the handle was created.
func (m *Model) StartTime() time.Time { return m.startTime }

// Snapshot returns a read-only view of the model state.
func (m *Model) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		State:            m.state,
		Variant:          m.variant,
		Err:              m.err,
		QueueLen:         len(m.queueCh),
		Inflight:         len(m.genCh),
		MaxQueueDepth:    cap(m.queueCh),
		GenerationsTotal: m.generations,
		ImagesTotal:      m.images,
	}
}

// SetEventPublisher replaces the event sink. Nil restores the no-op sink.
func (m *Model) SetEventPublisher(p EventPublisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		p = noopPublisher{}
	}
	m.publisher = p
}

func (m *Model) publish(e Event) {
	m.mu.RLock()
	p := m.publisher
	m.mu.RUnlock()
	p.Publish(e)
}

// Shutdown stops admitting new generations. Generations already holding the
// slot run to completion.
func (m *Model) Shutdown() error {
	m.mu.Lock()
	m.state = StateDraining
	m.mu.Unlock()
	m.log.Info().Msg("model draining")
	m.publish(Event{Name: "shutdown", Fields: map[string]any{}})
	return nil
}
