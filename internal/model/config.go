package model

import (
	"time"

	"github.com/rs/zerolog"

	"dalled/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultSize          = "256x256"
)

// Config encapsulates all tunables for Model construction.
type Config struct {
	Backend Backend
	Variant types.ModelVariant
	// Size is passed through to the backend as WxH.
	Size          string
	MaxQueueDepth int
	MaxWait       time.Duration
	// Timeout bounds a single backend call; 0 disables.
	Timeout   time.Duration
	Logger    *zerolog.Logger
	Publisher EventPublisher
}

// New constructs a Model in the loading state. Call Warmup before serving.
func New(cfg Config) *Model {
	m := &Model{
		state:     StateLoading,
		backend:   cfg.Backend,
		variant:   cfg.Variant,
		size:      cfg.Size,
		timeout:   cfg.Timeout,
		publisher: cfg.Publisher,
		startTime: time.Now(),
	}
	if m.size == "" {
		m.size = defaultSize
	}
	if cfg.MaxQueueDepth <= 0 {
		m.maxQueueDepth = defaultMaxQueueDepth
	} else {
		m.maxQueueDepth = cfg.MaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		m.maxWait = defaultMaxWait
	} else {
		m.maxWait = cfg.MaxWait
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "model").Logger()
	} else {
		m.log = zerolog.Nop()
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	m.genCh = make(chan struct{}, 1)
	m.queueCh = make(chan struct{}, m.maxQueueDepth)
	return m
}
