package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	srvErrors "github.com/proofpanel/docvault/pkg/errors"
)

// ImageRenderer rasterizes single-page image documents (PNG, JPEG, GIF).
// It is the reference implementation behind the Renderer boundary; richer
// document formats plug in through the same interface.
type ImageRenderer struct{}

func NewImageRenderer() *ImageRenderer {
	return &ImageRenderer{}
}

func (r *ImageRenderer) PageCount(ctx context.Context, doc []byte, onProgress ProgressFunc) (int, error) {
	if onProgress != nil {
		onProgress(0, int64(len(doc)))
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(doc)); err != nil {
		return 0, srvErrors.NewRenderFailureError(0, err)
	}
	if onProgress != nil {
		onProgress(int64(len(doc)), int64(len(doc)))
	}
	return 1, nil
}

func (r *ImageRenderer) PageDimensions(ctx context.Context, doc []byte, page int) (float64, float64, error) {
	if page != 1 {
		return 0, 0, srvErrors.NewRenderFailureError(page, fmt.Errorf("page out of range"))
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(doc))
	if err != nil {
		return 0, 0, srvErrors.NewRenderFailureError(page, err)
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}

func (r *ImageRenderer) RenderPage(ctx context.Context, doc []byte, page int, scale float64) (*Raster, error) {
	if page != 1 {
		return nil, srvErrors.NewRenderFailureError(page, fmt.Errorf("page out of range"))
	}
	src, _, err := image.Decode(bytes.NewReader(doc))
	if err != nil {
		return nil, srvErrors.NewRenderFailureError(page, err)
	}

	dst := resample(src, scale)
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, srvErrors.NewRenderFailureError(page, err)
	}

	bounds := dst.Bounds()
	return &Raster{
		Bytes:    buf.Bytes(),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		MimeType: "image/png",
	}, nil
}

// resample scales src by a nearest-neighbor pass. Thumbnails do not need
// filtering quality beyond that.
func resample(src image.Image, scale float64) *image.RGBA {
	b := src.Bounds()
	w := int(float64(b.Dx())*scale + 0.5)
	h := int(float64(b.Dy())*scale + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		sy := b.Min.Y + y*b.Dy()/h
		for x := 0; x < w; x++ {
			sx := b.Min.X + x*b.Dx()/w
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}
