// Package service turns a text prompt into hosted image URLs: it drives the
// model, encodes the results, optionally writes them to disk and uploads
// them.
package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"dalled/internal/imaging"
	"dalled/internal/model"
	"dalled/internal/store"
	"dalled/internal/upload"
	"dalled/pkg/types"
)

const defaultMaxImages = 16

// Model is the subset of *model.Model used by the service.
type Model interface {
	Generate(ctx context.Context, prompt string, n int) ([]image.Image, error)
	Ready() bool
	Snapshot() model.Snapshot
	StartTime() time.Time
}

// Options configures a Service.
type Options struct {
	Model    Model
	Uploader upload.Uploader
	// UploaderName labels upload metrics and the status payload.
	UploaderName string
	// Variants lists the selectable model versions for the status payload.
	Variants []types.ModelVariant
	// Disk is nil when save_to_disk is off.
	Disk              *store.DiskWriter
	Format            imaging.Format
	MaxImages         int
	UploadConcurrency int
	Logger            *zerolog.Logger
	// Now is the clock used for output directory names.
	Now func() time.Time
}

// Service orchestrates one generation request.
type Service struct {
	model       Model
	uploader    upload.Uploader
	uploaderNm  string
	variants    []types.ModelVariant
	disk        *store.DiskWriter
	format      imaging.Format
	maxImages   int
	concurrency int
	log         zerolog.Logger
	now         func() time.Time
}

// New validates opts and returns a Service.
func New(opts Options) (*Service, error) {
	if opts.Model == nil {
		return nil, errors.New("service: model is required")
	}
	if opts.Uploader == nil {
		return nil, errors.New("service: uploader is required")
	}
	if opts.Format == "" {
		opts.Format = imaging.JPEG
	}
	if _, err := imaging.ParseFormat(string(opts.Format)); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	s := &Service{
		model:       opts.Model,
		uploader:    opts.Uploader,
		uploaderNm:  opts.UploaderName,
		variants:    opts.Variants,
		disk:        opts.Disk,
		format:      opts.Format,
		maxImages:   opts.MaxImages,
		concurrency: opts.UploadConcurrency,
		now:         opts.Now,
	}
	if s.maxImages <= 0 {
		s.maxImages = defaultMaxImages
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.Logger != nil {
		s.log = opts.Logger.With().Str("component", "service").Logger()
	} else {
		s.log = zerolog.Nop()
	}
	return s, nil
}

// Format reports the configured output format.
func (s *Service) Format() imaging.Format { return s.format }

func (s *Service) validate(req types.GenerateRequest) (int, error) {
	if req.Text == nil {
		return 0, badRequest("text is required")
	}
	if req.NumImages == nil {
		return 0, badRequest("num_images is required")
	}
	n := *req.NumImages
	if n < 0 {
		return 0, badRequest("num_images must not be negative")
	}
	if n > s.maxImages {
		return 0, badRequest("num_images must not exceed " + strconv.Itoa(s.maxImages))
	}
	return n, nil
}

// Generate runs the full pipeline for req. URLs in the response follow the
// order the model produced the images in.
func (s *Service) Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error) {
	resp := types.GenerateResponse{GeneratedImgs: []string{}, GeneratedImgsFormat: s.format.String()}
	n, err := s.validate(req)
	if err != nil {
		return resp, err
	}
	if n == 0 {
		return resp, nil
	}

	start := time.Now()
	imgs, err := s.model.Generate(ctx, *req.Text, n)
	if err != nil {
		return resp, err
	}

	encoded := make([][]byte, len(imgs))
	for i, img := range imgs {
		b, err := imaging.EncodeBytes(img, s.format)
		if err != nil {
			return resp, fmt.Errorf("encode image %d: %w", i, err)
		}
		encoded[i] = b
	}

	if s.disk != nil {
		if _, err := s.disk.Save(ctx, s.now(), *req.Text, encoded, s.format); err != nil {
			return resp, fmt.Errorf("save to disk: %w", err)
		}
	}

	assets := lo.Map(encoded, func(b []byte, i int) upload.Asset {
		return upload.Asset{Name: strconv.Itoa(i) + "." + s.format.Ext(), Data: b, Format: s.format}
	})
	urls, err := upload.UploadAll(s.log.WithContext(ctx), s.uploader, s.uploaderNm, assets, s.concurrency)
	if err != nil {
		return resp, err
	}
	resp.GeneratedImgs = append(resp.GeneratedImgs, urls...)

	s.log.Info().Int("n", len(urls)).Dur("dur", time.Since(start)).Msgf("created %d images from text prompt", len(urls))
	return resp, nil
}

// Ready reports whether the model finished warm-up.
func (s *Service) Ready() bool { return s.model.Ready() }

// Status returns a point-in-time view of the model and service settings.
func (s *Service) Status() types.StatusResponse {
	snap := s.model.Snapshot()
	now := time.Now()
	return types.StatusResponse{
		State:            string(snap.State),
		Model:            snap.Variant,
		ModelVersions:    s.variants,
		ImageFormat:      s.format.String(),
		Uploader:         s.uploaderNm,
		SaveToDisk:       s.disk != nil,
		QueueLen:         snap.QueueLen,
		Inflight:         snap.Inflight,
		MaxQueueDepth:    snap.MaxQueueDepth,
		GenerationsTotal: snap.GenerationsTotal,
		ImagesTotal:      snap.ImagesTotal,
		LastError:        snap.Err,
		UptimeSeconds:    int64(now.Sub(s.model.StartTime()).Seconds()),
		ServerTimeUnix:   now.Unix(),
	}
}
