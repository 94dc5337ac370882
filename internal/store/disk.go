// Package store persists generated images on local disk.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"dalled/internal/common/fsutil"
	"dalled/internal/imaging"
)

// dirTimeLayout renders as YYYY-MM-DD_HH:MM:SS.
const dirTimeLayout = "2006-01-02_15:04:05"

// DiskWriter writes each generation into its own directory under Root.
type DiskWriter struct {
	Root string
}

// NewDiskWriter expands a leading '~' in root. The directory itself is
// created lazily on the first Save.
func NewDiskWriter(root string) (*DiskWriter, error) {
	if root == "" {
		return nil, fmt.Errorf("output dir is empty")
	}
	p, err := fsutil.ExpandHome(root)
	if err != nil {
		return nil, err
	}
	return &DiskWriter{Root: p}, nil
}

// DirFor returns <root>/<timestamp>_<prompt>. The prompt is reduced to a
// single path element so it always stays inside root.
func (d *DiskWriter) DirFor(now time.Time, prompt string) string {
	return filepath.Join(d.Root, fsutil.SafeSegment(now.Format(dirTimeLayout)+"_"+prompt))
}

// Save writes images[i] to <dir>/<i>.<ext> and returns the directory used.
// Existing files with the same names are overwritten.
func (d *DiskWriter) Save(ctx context.Context, now time.Time, prompt string, images [][]byte, f imaging.Format) (string, error) {
	dir := d.DirFor(now, prompt)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	for i, b := range images {
		if err := ctx.Err(); err != nil {
			return dir, err
		}
		p := filepath.Join(dir, strconv.Itoa(i)+"."+f.Ext())
		if err := os.WriteFile(p, b, 0o644); err != nil {
			return dir, fmt.Errorf("write %s: %w", p, err)
		}
	}
	zerolog.Ctx(ctx).Debug().Str("dir", dir).Int("n", len(images)).Msg("saved images to disk")
	return dir, nil
}
