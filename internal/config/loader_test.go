package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Port != 8000 || cfg.ModelVersion != "Mini" || cfg.SaveToDisk || cfg.ImgFormat != "jpeg" || cfg.OutputDir != "generations" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Uploader != UploaderCloudinary || cfg.MaxImages != 16 || cfg.Addr() != "0.0.0.0:8000" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "port: 9999\nmodel_version: Mega\nsave_to_disk: true\nimg_format: png\noutput_dir: /tmp/out\nupload:\n  folder: dalle\n  secure: true\nmodel_names:\n  Mini: local-mini\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9999 || cfg.ModelVersion != "Mega" || !cfg.SaveToDisk || cfg.ImgFormat != "png" || cfg.OutputDir != "/tmp/out" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.Upload.Folder != "dalle" || !cfg.Upload.Secure || cfg.ModelNames["Mini"] != "local-mini" {
		t.Fatalf("unexpected nested cfg: %+v", cfg)
	}
	// untouched keys keep defaults
	if cfg.Host != "0.0.0.0" || cfg.MaxImages != 16 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"port":7070,"model_version":"Mega_full","uploader":"s3","upload":{"bucket":"imgs","prefix":"gen"}}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 7070 || cfg.ModelVersion != "Mega_full" || cfg.Uploader != "s3" || cfg.Upload.Bucket != "imgs" || cfg.Upload.Prefix != "gen" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "port=8081\nimg_format=\"PNG\"\nmax_images=4\n[upload]\nfolder=\"x\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8081 || cfg.ImgFormat != "PNG" || cfg.MaxImages != 4 || cfg.Upload.Folder != "x" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}
