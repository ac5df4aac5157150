// Package render is the boundary to the page-rasterizing capability. The
// upload pipeline consumes it as a black box: page count and dimensions for
// scale planning, then per-page rasters.
package render

import "context"

// ProgressFunc reports bytes loaded against the total while a document is
// parsed.
type ProgressFunc func(loaded, total int64)

// Raster is one rendered page image.
type Raster struct {
	Bytes    []byte
	Width    int
	Height   int
	MimeType string
}

// Renderer rasterizes pages of a binary document.
type Renderer interface {
	// PageCount parses the document and returns its page count. onProgress,
	// when non-nil, observes parse progress.
	PageCount(ctx context.Context, doc []byte, onProgress ProgressFunc) (int, error)

	// PageDimensions returns the intrinsic size of a page in document units.
	// Pages are numbered from 1.
	PageDimensions(ctx context.Context, doc []byte, page int) (width, height float64, err error)

	// RenderPage rasterizes one page at the given scale factor.
	RenderPage(ctx context.Context, doc []byte, page int, scale float64) (*Raster, error)
}

// ScaleFor computes the scale that brings a page of pageWidth units to
// targetWidth pixels, capped at maxScale so small pages are not blown up
// past recognition.
func ScaleFor(pageWidth, targetWidth, maxScale float64) float64 {
	if pageWidth <= 0 {
		return 1
	}
	scale := targetWidth / pageWidth
	if scale > maxScale {
		scale = maxScale
	}
	return scale
}
