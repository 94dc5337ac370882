// Package upload publishes generated images to an object host and returns
// the public URL of each one.
package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"dalled/internal/imaging"
)

// Asset is one encoded image ready for upload.
type Asset struct {
	// Name is a hint for the object name, e.g. "0.jpeg". Hosts may ignore it.
	Name   string
	Data   []byte
	Format imaging.Format
}

// ContentType returns the MIME type matching the asset's format.
func (a Asset) ContentType() string { return a.Format.ContentType() }

// Uploader stores one asset and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, a Asset) (string, error)
}

// UploaderFunc adapts a function to the Uploader interface.
type UploaderFunc func(ctx context.Context, a Asset) (string, error)

func (f UploaderFunc) Upload(ctx context.Context, a Asset) (string, error) { return f(ctx, a) }

const defaultConcurrency = 4

// UploadAll uploads assets with at most concurrency uploads in flight and
// returns URLs in the same order as assets. The first failure cancels the
// remaining uploads and is returned.
func UploadAll(ctx context.Context, u Uploader, backend string, assets []Asset, concurrency int) ([]string, error) {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	urls := make([]string, len(assets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, a := range assets {
		i, a := i, a
		g.Go(func() error {
			start := time.Now()
			url, err := u.Upload(gctx, a)
			observe(backend, start, err)
			if err != nil {
				return fmt.Errorf("upload %s: %w", a.Name, err)
			}
			zerolog.Ctx(ctx).Debug().Str("name", a.Name).Str("url", url).Dur("dur", time.Since(start)).Msg("uploaded")
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}
