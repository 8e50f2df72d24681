// Package imaging reads image header metadata without decoding pixels.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/rumera-ai/rumera/internal/domain/analysis"
)

// Inspector implements analysis.ImageInspector.
type Inspector struct{}

func (Inspector) Inspect(data []byte) (analysis.ImageMetadata, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return analysis.ImageMetadata{}, fmt.Errorf("decode image header: %w", err)
	}
	return analysis.ImageMetadata{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Format:   format,
		HasAlpha: hasAlpha(cfg.ColorModel),
	}, nil
}

func hasAlpha(m color.Model) bool {
	switch m {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	}
	// paletted images carry alpha per entry
	if p, ok := m.(color.Palette); ok {
		for _, c := range p {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
