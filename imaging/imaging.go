package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	minSize = 1 << 10  // 1KB
	maxSize = 10 << 20 // 10MB

	maxDimension = 1920
	webpQuality  = 80
)

// Validate rejects blobs outside the accepted size range or without a known
// image signature. The signature check runs before any decoder touches the
// bytes.
func Validate(data []byte) error {
	if len(data) < minSize {
		return fmt.Errorf("image too small: %d bytes", len(data))
	}
	if len(data) > maxSize {
		return fmt.Errorf("image too large: %d bytes", len(data))
	}
	if !knownSignature(data) {
		return fmt.Errorf("unrecognized image format")
	}
	return nil
}

var signatures = [][]byte{
	{0xff, 0xd8, 0xff},       // JPEG
	{0x89, 0x50, 0x4e, 0x47}, // PNG
	{0x47, 0x49, 0x46},       // GIF
	{0x52, 0x49, 0x46, 0x46}, // RIFF (WEBP)
	{0x42, 0x4d},             // BMP
}

func knownSignature(data []byte) bool {
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// Meta describes a decoded image without holding its pixels.
type Meta struct {
	Width  int
	Height int
	Format string
}

// Metadata decodes just the header of an image blob.
func Metadata(data []byte) (Meta, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Meta{}, fmt.Errorf("image header decode: %w", err)
	}
	return Meta{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// Compress decodes, scales down to fit within maxDimension (never up), and
// re-encodes as lossy WEBP.
func Compress(data []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("image decode: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxDimension || h > maxDimension {
		scale := float64(maxDimension) / float64(w)
		if h > w {
			scale = float64(maxDimension) / float64(h)
		}
		nw, nh := int(float64(w)*scale), int(float64(h)*scale)
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("webp encode (%s source): %w", format, err)
	}
	return buf.Bytes(), nil
}

// Pipeline bundles validation, metadata extraction and compression behind
// one call.
type Pipeline struct{}

func NewPipeline() *Pipeline { return &Pipeline{} }

func (Pipeline) Process(data []byte) ([]byte, Meta, error) {
	if err := Validate(data); err != nil {
		return nil, Meta{}, err
	}
	meta, err := Metadata(data)
	if err != nil {
		return nil, Meta{}, err
	}
	out, err := Compress(data)
	if err != nil {
		return nil, Meta{}, err
	}
	return out, meta, nil
}
