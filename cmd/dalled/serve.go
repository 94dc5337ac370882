package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/do"

	"dalled/internal/config"
	"dalled/internal/httpapi"
	"dalled/internal/inject"
	"dalled/internal/model"
)

const shutdownGrace = 5 * time.Second

// serve wires the components, warms the model up and runs the HTTP server
// until SIGINT/SIGTERM or ctx is canceled.
func serve(ctx context.Context, cfg config.Config, creds config.Credentials, log zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	injector := inject.Setup(ctx, cfg, creds, log)
	defer func() {
		if err := injector.Shutdown(); err != nil {
			log.Warn().Err(err).Msg("injector shutdown")
		}
	}()

	m, err := do.Invoke[*model.Model](injector)
	if err != nil {
		return err
	}
	handler, err := do.Invoke[http.Handler](injector)
	if err != nil {
		return err
	}

	log.Info().Str("model_version", cfg.ModelVersion).Str("model_url", cfg.ModelURL).Msg("warming up model")
	if err := m.Warmup(ctx); err != nil {
		return fmt.Errorf("warm-up: %w", err)
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetLogger(log)
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(len(cfg.CORSOrigins) > 0, cfg.CORSOrigins, nil, nil)

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	log.Info().Str("addr", ln.Addr().String()).Str("uploader", cfg.Uploader).Bool("save_to_disk", cfg.SaveToDisk).Msg("dalled listening")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	_ = m.Shutdown()
	shCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	err = srv.Shutdown(shCtx)
	cancelBase()
	if err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
