package upload

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"

	"dalled/internal/imaging"
)

// CloudinaryOptions configures the Cloudinary uploader.
type CloudinaryOptions struct {
	CloudName string
	APIKey    string
	APISecret string
	// Folder is an optional destination folder for uploaded assets.
	Folder string
	// Secure selects the https delivery URL.
	Secure bool
	// UploadPrefix overrides the API host, e.g. https://api-eu.cloudinary.com.
	UploadPrefix string
}

// CloudinaryUploader uploads assets as base64 data URIs.
type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
	secure bool
}

// NewCloudinaryUploader validates credentials and constructs the client.
func NewCloudinaryUploader(opts CloudinaryOptions) (*CloudinaryUploader, error) {
	if opts.CloudName == "" || opts.APIKey == "" || opts.APISecret == "" {
		return nil, errors.New("cloudinary: cloud name, api key and api secret are required")
	}
	// The client copies its configuration into each API, so overrides go on
	// the configuration before the client is built.
	conf, err := config.NewFromParams(opts.CloudName, opts.APIKey, opts.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	if opts.UploadPrefix != "" {
		conf.API.UploadPrefix = opts.UploadPrefix
	}
	conf.URL.Secure = opts.Secure
	cld, err := cloudinary.NewFromConfiguration(*conf)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld, folder: opts.Folder, secure: opts.Secure}, nil
}

func (c *CloudinaryUploader) Upload(ctx context.Context, a Asset) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, imaging.DataURI(a.Format, a.Data), uploader.UploadParams{
		Folder: c.folder,
	})
	if err != nil {
		return "", err
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", resp.Error.Message)
	}
	url := resp.URL
	if c.secure || url == "" {
		url = resp.SecureURL
	}
	if url == "" {
		return "", errors.New("cloudinary: response carried no url")
	}
	return url, nil
}
