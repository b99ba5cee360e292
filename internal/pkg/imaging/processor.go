package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
)

// Variants are the encoded renditions of one uploaded vendor image.
type Variants struct {
	Display     []byte
	Thumbnail   []byte
	ContentType string
	Width       int
	Height      int
}

// Config controls rendition sizes.
type Config struct {
	MaxWidth    int
	MaxHeight   int
	ThumbWidth  int
	ThumbHeight int
	Quality     int
}

// LogoConfig renders square thumbnails suited to vendor cards.
func LogoConfig() Config {
	return Config{
		MaxWidth:    1200,
		MaxHeight:   1200,
		ThumbWidth:  256,
		ThumbHeight: 256,
		Quality:     85,
	}
}

// Processor resizes images into display and thumbnail variants.
type Processor struct {
	config Config
}

func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// Process decodes data, fits it into the display box and center-crops a thumbnail.
func (p *Processor) Process(data []byte) (*Variants, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	display := img
	b := img.Bounds()
	if b.Dx() > p.config.MaxWidth || b.Dy() > p.config.MaxHeight {
		display = imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)
	}
	thumb := imaging.Fill(img, p.config.ThumbWidth, p.config.ThumbHeight, imaging.Center, imaging.Lanczos)

	out := &Variants{
		ContentType: "image/jpeg",
		Width:       display.Bounds().Dx(),
		Height:      display.Bounds().Dy(),
	}
	if format == "png" {
		out.ContentType = "image/png"
	}

	if out.Display, err = p.encode(display, format); err != nil {
		return nil, fmt.Errorf("encode display: %w", err)
	}
	if out.Thumbnail, err = p.encode(thumb, format); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return out, nil
}

// PNG keeps transparency; every other input is re-encoded as JPEG.
func (p *Processor) encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if format == "png" {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.config.Quality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LogoKeys returns the storage keys for a vendor logo upload.
func LogoKeys(vendorID, uploadID, ext string) (display, thumb string) {
	display = fmt.Sprintf("vendors/%s/logo/%s%s", vendorID, uploadID, ext)
	thumb = fmt.Sprintf("vendors/%s/logo/%s_thumb%s", vendorID, uploadID, ext)
	return
}
