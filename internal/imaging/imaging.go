// Package imaging converts between the bytes a model server returns and the
// in-memory bitmaps the rest of the service passes around, and encodes
// bitmaps into the configured output format.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	_ "golang.org/x/image/webp"
)

// Format is an output image encoding.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
)

// jpegQuality matches what most hosted image services re-encode at.
const jpegQuality = 90

// ParseFormat accepts "jpeg" or "png" case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case JPEG:
		return JPEG, nil
	case PNG:
		return PNG, nil
	}
	return "", fmt.Errorf("unsupported image format %q (want jpeg or png)", s)
}

// Ext is the file extension, without the dot. It is the format name itself so
// saved files read <index>.jpeg / <index>.png.
func (f Format) Ext() string { return string(f) }

// ContentType is the MIME type for f.
func (f Format) ContentType() string { return "image/" + string(f) }

func (f Format) String() string { return string(f) }

// Decode parses PNG, JPEG, GIF or WebP bytes into a bitmap.
func Decode(b []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case JPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case PNG:
		return png.Encode(w, img)
	}
	return fmt.Errorf("unsupported image format %q", f)
}

// EncodeBytes is Encode into a fresh buffer.
func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURI renders b as a base64 data URI labelled with f's MIME type.
func DataURI(f Format, b []byte) string {
	return "data:" + f.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(b)
}
