// Package inject wires the dalled components together with samber/do.
package inject

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/samber/do"

	"dalled/internal/config"
	"dalled/internal/httpapi"
	"dalled/internal/imaging"
	"dalled/internal/model"
	"dalled/internal/registry"
	"dalled/internal/service"
	"dalled/internal/store"
	"dalled/internal/upload"
)

// Setup registers lazy providers for every component. Nothing is constructed
// until the first Invoke, so callers may override providers (tests swap the
// model backend and uploader) before invoking.
func Setup(ctx context.Context, cfg config.Config, creds config.Credentials, log zerolog.Logger) *do.Injector {
	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug().Str("component", "inject").Msgf(format, args...)
		},
	})
	do.ProvideValue[zerolog.Logger](injector, log)
	do.ProvideValue[config.Config](injector, cfg)
	do.ProvideValue[config.Credentials](injector, creds)

	do.Provide[*registry.Registry](injector, func(i *do.Injector) (*registry.Registry, error) {
		return registry.New(cfg.ModelNames)
	})
	do.Provide[model.Backend](injector, func(i *do.Injector) (model.Backend, error) {
		return model.NewOpenAIBackend(cfg.ModelURL, creds.ModelAPIKey, 10*time.Second), nil
	})
	do.Provide[*model.Model](injector, NewModel)

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.Upload.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.Upload.Region))
		}
		return awsconfig.LoadDefaultConfig(ctx, opts...)
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[upload.Uploader](injector, NewUploader)

	do.Provide[*store.DiskWriter](injector, func(i *do.Injector) (*store.DiskWriter, error) {
		if !cfg.SaveToDisk {
			return nil, nil
		}
		return store.NewDiskWriter(cfg.OutputDir)
	})
	do.Provide[*service.Service](injector, NewService)
	do.Provide[http.Handler](injector, func(i *do.Injector) (http.Handler, error) {
		return httpapi.NewMux(do.MustInvoke[*service.Service](i)), nil
	})

	return injector
}

// NewModel builds the model handle for the configured variant.
func NewModel(i *do.Injector) (*model.Model, error) {
	cfg := do.MustInvoke[config.Config](i)
	log := do.MustInvoke[zerolog.Logger](i)
	reg, err := do.Invoke[*registry.Registry](i)
	if err != nil {
		return nil, err
	}
	v, err := registry.ParseVariant(cfg.ModelVersion)
	if err != nil {
		return nil, err
	}
	variant, err := reg.Lookup(v)
	if err != nil {
		return nil, err
	}
	backend, err := do.Invoke[model.Backend](i)
	if err != nil {
		return nil, err
	}
	return model.New(model.Config{
		Backend:       backend,
		Variant:       variant,
		Size:          cfg.ImageSize,
		MaxQueueDepth: cfg.MaxQueueDepth,
		MaxWait:       time.Duration(cfg.MaxWaitSeconds) * time.Second,
		Timeout:       time.Duration(cfg.GenerateTimeoutSeconds) * time.Second,
		Logger:        &log,
	}), nil
}

// NewUploader selects the upload backend named in the config.
func NewUploader(i *do.Injector) (upload.Uploader, error) {
	cfg := do.MustInvoke[config.Config](i)
	switch cfg.Uploader {
	case config.UploaderCloudinary:
		creds := do.MustInvoke[config.Credentials](i)
		return upload.NewCloudinaryUploader(upload.CloudinaryOptions{
			CloudName:    creds.CloudName,
			APIKey:       creds.APIKey,
			APISecret:    creds.APISecret,
			Folder:       cfg.Upload.Folder,
			Secure:       cfg.Upload.Secure,
			UploadPrefix: cfg.Upload.APIURL,
		})
	case config.UploaderS3:
		client, err := do.Invoke[*s3.Client](i)
		if err != nil {
			return nil, err
		}
		return upload.NewS3Uploader(client, cfg.Upload.Bucket, cfg.Upload.Prefix, cfg.Upload.PublicBaseURL)
	}
	return nil, fmt.Errorf("unknown uploader %q", cfg.Uploader)
}

// NewService assembles the generation pipeline.
func NewService(i *do.Injector) (*service.Service, error) {
	cfg := do.MustInvoke[config.Config](i)
	log := do.MustInvoke[zerolog.Logger](i)
	m, err := do.Invoke[*model.Model](i)
	if err != nil {
		return nil, err
	}
	u, err := do.Invoke[upload.Uploader](i)
	if err != nil {
		return nil, err
	}
	reg, err := do.Invoke[*registry.Registry](i)
	if err != nil {
		return nil, err
	}
	disk, err := do.Invoke[*store.DiskWriter](i)
	if err != nil {
		return nil, err
	}
	format, err := imaging.ParseFormat(cfg.ImgFormat)
	if err != nil {
		return nil, err
	}
	return service.New(service.Options{
		Model:             m,
		Uploader:          u,
		UploaderName:      cfg.Uploader,
		Variants:          reg.List(),
		Disk:              disk,
		Format:            format,
		MaxImages:         cfg.MaxImages,
		UploadConcurrency: cfg.UploadConcurrency,
		Logger:            &log,
	})
}
