// Package config defines the runtime configuration of dalled and loads it
// from yaml, json or toml files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service. It is immutable once the
// server starts.
type Config struct {
	Host         string `json:"host" yaml:"host" toml:"host"`
	Port         int    `json:"port" yaml:"port" toml:"port"`
	ModelVersion string `json:"model_version" yaml:"model_version" toml:"model_version"`
	SaveToDisk   bool   `json:"save_to_disk" yaml:"save_to_disk" toml:"save_to_disk"`
	ImgFormat    string `json:"img_format" yaml:"img_format" toml:"img_format"`
	OutputDir    string `json:"output_dir" yaml:"output_dir" toml:"output_dir"`

	// ModelURL is the base URL of the OpenAI-compatible model server.
	ModelURL  string `json:"model_url" yaml:"model_url" toml:"model_url"`
	ImageSize string `json:"image_size" yaml:"image_size" toml:"image_size"`
	// ModelNames overrides the backend model name per variant.
	ModelNames map[string]string `json:"model_names" yaml:"model_names" toml:"model_names"`

	MaxImages              int   `json:"max_images" yaml:"max_images" toml:"max_images"`
	MaxQueueDepth          int   `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxWaitSeconds         int   `json:"max_wait_seconds" yaml:"max_wait_seconds" toml:"max_wait_seconds"`
	GenerateTimeoutSeconds int   `json:"generate_timeout_seconds" yaml:"generate_timeout_seconds" toml:"generate_timeout_seconds"`
	MaxBodyBytes           int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`

	Uploader          string   `json:"uploader" yaml:"uploader" toml:"uploader"`
	UploadConcurrency int      `json:"upload_concurrency" yaml:"upload_concurrency" toml:"upload_concurrency"`
	Upload            Upload   `json:"upload" yaml:"upload" toml:"upload"`
	CORSOrigins       []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`

	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`
}

// Upload holds uploader specific settings. Credentials never live here.
type Upload struct {
	Folder string `json:"folder" yaml:"folder" toml:"folder"`
	Secure bool   `json:"secure" yaml:"secure" toml:"secure"`
	// APIURL overrides the Cloudinary API host (proxies, tests).
	APIURL string `json:"api_url" yaml:"api_url" toml:"api_url"`

	Bucket        string `json:"bucket" yaml:"bucket" toml:"bucket"`
	Prefix        string `json:"prefix" yaml:"prefix" toml:"prefix"`
	PublicBaseURL string `json:"public_base_url" yaml:"public_base_url" toml:"public_base_url"`
	Region        string `json:"region" yaml:"region" toml:"region"`
}

// Default returns the configuration used when neither a file nor flags say
// otherwise.
func Default() Config {
	return Config{
		Host:              "0.0.0.0",
		Port:              8000,
		ModelVersion:      "Mini",
		ImgFormat:         "jpeg",
		OutputDir:         "generations",
		ModelURL:          "http://127.0.0.1:8080/v1",
		ImageSize:         "256x256",
		MaxImages:         16,
		MaxQueueDepth:     32,
		MaxWaitSeconds:    30,
		MaxBodyBytes:      1 << 20,
		Uploader:          UploaderCloudinary,
		UploadConcurrency: 4,
		CORSOrigins:       []string{"*"},
		LogLevel:          "info",
		LogFormat:         "json",
	}
}

// Load reads a configuration file based on its extension and lays it over
// Default(). Keys absent from the file keep their default value.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
