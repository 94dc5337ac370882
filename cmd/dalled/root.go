package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"dalled/internal/config"
)

// flagValues holds raw flag values. Only flags the user actually set are
// copied into the config so that file values survive.
type flagValues struct {
	configPath        string
	host              string
	port              int
	modelVersion      string
	saveToDisk        boolArg
	imgFormat         string
	outputDir         string
	modelURL          string
	imageSize         string
	uploader          string
	maxImages         int
	maxQueueDepth     int
	maxWaitSeconds    int
	generateTimeout   int
	uploadConcurrency int
	corsOrigins       string
	logLevel          string
	logFormat         string
}

// boolArg is a flag that accepts yes/no style words as well as true/false.
type boolArg bool

func (b *boolArg) String() string {
	if *b {
		return "true"
	}
	return "false"
}

func (b *boolArg) Set(s string) error {
	v, err := config.ParseBoolArg(s)
	if err != nil {
		return err
	}
	*b = boolArg(v)
	return nil
}

func (b *boolArg) Type() string { return "bool" }

func newRootCmd() *cobra.Command { return newRootCmdWith(&flagValues{}) }

// newRootCmdWith builds the command with flags bound to fv.
func newRootCmdWith(fv *flagValues) *cobra.Command {
	def := config.Default()
	root := &cobra.Command{
		Use:           "dalled",
		Short:         "HTTP service that turns text prompts into hosted images",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadDotEnv(".env"); err != nil {
				return err
			}
			cfg, err := resolveConfig(cmd.Flags(), fv)
			if err != nil {
				return err
			}
			creds, err := config.LoadCredentials(cfg.Uploader, os.Getenv)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, creds, log)
		},
	}

	f := root.Flags()
	f.StringVar(&fv.configPath, "config", "", "Config file (.yaml, .yml, .json or .toml)")
	f.StringVar(&fv.host, "host", def.Host, "Interface to listen on")
	f.IntVar(&fv.port, "port", def.Port, "Backend port")
	f.StringVar(&fv.modelVersion, "model_version", def.ModelVersion, "Mini, Mega, or Mega_full")
	f.Var(&fv.saveToDisk, "save_to_disk", "Save generated images to disk (yes/no)")
	f.StringVar(&fv.imgFormat, "img_format", def.ImgFormat, "Generated images format: jpeg or png")
	f.StringVar(&fv.outputDir, "output_dir", def.OutputDir, "Output directory for generated images")
	f.StringVar(&fv.modelURL, "model_url", def.ModelURL, "Base URL of the OpenAI-compatible model server")
	f.StringVar(&fv.imageSize, "image_size", def.ImageSize, "Image size requested from the model server (WxH)")
	f.StringVar(&fv.uploader, "uploader", def.Uploader, "Upload backend: cloudinary or s3")
	f.IntVar(&fv.maxImages, "max_images", def.MaxImages, "Maximum num_images per request")
	f.IntVar(&fv.maxQueueDepth, "max_queue_depth", def.MaxQueueDepth, "Requests allowed to wait for the model")
	f.IntVar(&fv.maxWaitSeconds, "max_wait_seconds", def.MaxWaitSeconds, "Seconds a request may wait for the model before 429")
	f.IntVar(&fv.generateTimeout, "generate_timeout_seconds", def.GenerateTimeoutSeconds, "Timeout in seconds for one model generation (0 = none)")
	f.IntVar(&fv.uploadConcurrency, "upload_concurrency", def.UploadConcurrency, "Parallel uploads per request")
	f.StringVar(&fv.corsOrigins, "cors_origins", strings.Join(def.CORSOrigins, ","), "Comma separated allowed CORS origins")
	f.StringVar(&fv.logLevel, "log_level", def.LogLevel, "Log level: debug|info|warn|error")
	f.StringVar(&fv.logFormat, "log_format", def.LogFormat, "Log format: json|console")
	return root
}

// resolveConfig layers defaults, the optional config file and explicitly
// set flags, in that order, and validates the result.
func resolveConfig(fs *pflag.FlagSet, fv *flagValues) (config.Config, error) {
	cfg := config.Default()
	if fv.configPath != "" {
		var err error
		if cfg, err = config.Load(fv.configPath); err != nil {
			return cfg, err
		}
	}
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("host", func() { cfg.Host = fv.host })
	set("port", func() { cfg.Port = fv.port })
	set("model_version", func() { cfg.ModelVersion = fv.modelVersion })
	set("save_to_disk", func() { cfg.SaveToDisk = bool(fv.saveToDisk) })
	set("img_format", func() { cfg.ImgFormat = fv.imgFormat })
	set("output_dir", func() { cfg.OutputDir = fv.outputDir })
	set("model_url", func() { cfg.ModelURL = fv.modelURL })
	set("image_size", func() { cfg.ImageSize = fv.imageSize })
	set("uploader", func() { cfg.Uploader = fv.uploader })
	set("max_images", func() { cfg.MaxImages = fv.maxImages })
	set("max_queue_depth", func() { cfg.MaxQueueDepth = fv.maxQueueDepth })
	set("max_wait_seconds", func() { cfg.MaxWaitSeconds = fv.maxWaitSeconds })
	set("generate_timeout_seconds", func() { cfg.GenerateTimeoutSeconds = fv.generateTimeout })
	set("upload_concurrency", func() { cfg.UploadConcurrency = fv.uploadConcurrency })
	set("cors_origins", func() { cfg.CORSOrigins = splitCSV(fv.corsOrigins) })
	set("log_level", func() { cfg.LogLevel = fv.logLevel })
	set("log_format", func() { cfg.LogFormat = fv.logFormat })

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadDotEnv loads path into the environment if it exists. Variables already
// set in the environment win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// splitCSV splits a comma separated list, trimming blanks and dropping empty
// items.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
