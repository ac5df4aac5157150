package render

import (
	"context"
	"fmt"

	srvErrors "github.com/proofpanel/docvault/pkg/errors"
)

// Fake is a scriptable Renderer. Tests mark documents as failing and count
// render calls.
type Fake struct {
	Pages      int
	PageWidth  float64
	PageHeight float64

	failDocs    map[string]bool
	RenderCalls int
}

func NewFake() *Fake {
	return &Fake{
		Pages:      1,
		PageWidth:  612,
		PageHeight: 792,
		failDocs:   make(map[string]bool),
	}
}

// FailFor makes every operation on doc fail with RenderFailure.
func (f *Fake) FailFor(doc []byte) {
	f.failDocs[string(doc)] = true
}

func (f *Fake) check(doc []byte, page int) error {
	if f.failDocs[string(doc)] {
		return srvErrors.NewRenderFailureError(page, fmt.Errorf("scripted failure"))
	}
	return nil
}

func (f *Fake) PageCount(ctx context.Context, doc []byte, onProgress ProgressFunc) (int, error) {
	if err := f.check(doc, 0); err != nil {
		return 0, err
	}
	if onProgress != nil {
		onProgress(int64(len(doc)), int64(len(doc)))
	}
	return f.Pages, nil
}

func (f *Fake) PageDimensions(ctx context.Context, doc []byte, page int) (float64, float64, error) {
	if err := f.check(doc, page); err != nil {
		return 0, 0, err
	}
	return f.PageWidth, f.PageHeight, nil
}

func (f *Fake) RenderPage(ctx context.Context, doc []byte, page int, scale float64) (*Raster, error) {
	f.RenderCalls++
	if err := f.check(doc, page); err != nil {
		return nil, err
	}
	return &Raster{
		Bytes:    []byte(fmt.Sprintf("raster-page-%d", page)),
		Width:    int(f.PageWidth*scale + 0.5),
		Height:   int(f.PageHeight*scale + 0.5),
		MimeType: "image/png",
	}, nil
}
