package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"dalled/internal/imaging"
	"dalled/internal/registry"
)

// Uploader backends.
const (
	UploaderCloudinary = "cloudinary"
	UploaderS3         = "s3"
)

// ParseBoolArg accepts the boolean words used on the command line:
// yes/true/t/y/1 and no/false/f/n/0, case-insensitive.
func ParseBoolArg(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "t", "y", "1":
		return true, nil
	case "no", "false", "f", "n", "0":
		return false, nil
	}
	return false, fmt.Errorf("boolean value expected, got %q", s)
}

// Validate checks values that cannot be fixed up with defaults and
// normalizes enum-like fields to their canonical spelling.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if v, err := registry.ParseVariant(c.ModelVersion); err != nil {
		errs = append(errs, err)
	} else {
		c.ModelVersion = string(v)
	}
	if f, err := imaging.ParseFormat(c.ImgFormat); err != nil {
		errs = append(errs, err)
	} else {
		c.ImgFormat = string(f)
	}
	if c.SaveToDisk && strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, errors.New("output_dir is required when save_to_disk is on"))
	}
	if strings.TrimSpace(c.ModelURL) == "" {
		errs = append(errs, errors.New("model_url is required"))
	}
	if c.MaxImages <= 0 {
		errs = append(errs, fmt.Errorf("max_images must be positive, got %d", c.MaxImages))
	}
	if c.MaxQueueDepth <= 0 {
		errs = append(errs, fmt.Errorf("max_queue_depth must be positive, got %d", c.MaxQueueDepth))
	}
	if c.MaxWaitSeconds <= 0 {
		errs = append(errs, fmt.Errorf("max_wait_seconds must be positive, got %d", c.MaxWaitSeconds))
	}
	if c.GenerateTimeoutSeconds < 0 || c.UploadConcurrency < 0 {
		errs = append(errs, errors.New("generate_timeout_seconds and upload_concurrency must not be negative"))
	}
	switch c.Uploader = strings.ToLower(c.Uploader); c.Uploader {
	case UploaderCloudinary:
	case UploaderS3:
		if c.Upload.Bucket == "" {
			errs = append(errs, errors.New("upload.bucket is required for the s3 uploader"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown uploader %q (want %s or %s)", c.Uploader, UploaderCloudinary, UploaderS3))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q (want json or console)", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Addr returns host:port for the HTTP listener.
func (c Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
