package model

import (
	"context"

	"dalled/pkg/types"
)

// State represents the lifecycle state of the model handle.
type State string

const (
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateError    State = "error"
	StateDraining State = "draining"
)

// Snapshot is a read-only projection of the model state.
type Snapshot struct {
	State            State
	Variant          types.ModelVariant
	Err              string
	QueueLen         int
	Inflight         int
	MaxQueueDepth    int
	GenerationsTotal uint64
	ImagesTotal      uint64
}

// BackendRequest is one call to the model server.
type BackendRequest struct {
	Model  string
	Prompt string
	N      int
	Size   string
}

// Backend produces encoded images for a prompt. Implementations must return
// when ctx is canceled.
type Backend interface {
	Generate(ctx context.Context, req BackendRequest) ([][]byte, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, req BackendRequest) ([][]byte, error)

func (f BackendFunc) Generate(ctx context.Context, req BackendRequest) ([][]byte, error) {
	return f(ctx, req)
}
