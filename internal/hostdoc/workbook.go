package hostdoc

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const (
	partFolder       = "customXml/"
	contentTypesName = "[Content_Types].xml"
	xmlDefaultEntry  = `<Default Extension="xml" ContentType="application/xml"/>`
)

var partNameRe = regexp.MustCompile(`^customXml/item(\d+)\.xml$`)

// WorkbookHost stores parts inside the customXml/ folder of a workbook (zip)
// container on disk. All other archive entries are preserved verbatim across
// rewrites, so the workbook stays openable by its owning application.
//
// The host application may hold the file locked while it autosaves; Flush
// retries the container rewrite a bounded number of times before giving up.
type WorkbookHost struct {
	path string
	log  *zap.SugaredLogger

	mu        sync.Mutex
	available bool
	entries   map[string][]byte // non-part archive entries, preserved as-is
	order     []string          // original entry order
	parts     map[string]string // entry name -> fragment text
	added     map[string]string
	deleted   map[string]bool
	nextItem  int
}

// OpenWorkbook reads the container at path. A missing or unreadable file
// yields a host that reports itself unavailable rather than an error, so
// callers surface the condition through the usual availability gate.
func OpenWorkbook(path string) *WorkbookHost {
	h := &WorkbookHost{
		path:     path,
		log:      zap.S().Named("workbook_host"),
		entries:  make(map[string][]byte),
		parts:    make(map[string]string),
		added:    make(map[string]string),
		deleted:  make(map[string]bool),
		nextItem: 1,
	}
	if err := h.load(); err != nil {
		h.log.Warnw("workbook not available", "path", path, "error", err)
		return h
	}
	h.available = true
	return h
}

func (h *WorkbookHost) load() error {
	r, err := zip.OpenReader(h.path)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open entry %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("read entry %s: %w", f.Name, err)
		}

		if m := partNameRe.FindStringSubmatch(f.Name); m != nil {
			h.parts[f.Name] = string(data)
			if n, err := strconv.Atoi(m[1]); err == nil && n >= h.nextItem {
				h.nextItem = n + 1
			}
			continue
		}
		h.entries[f.Name] = data
		h.order = append(h.order, f.Name)
	}
	return nil
}

func (h *WorkbookHost) Available() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.available
}

func (h *WorkbookHost) AddPart(ctx context.Context, xmlText string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.available {
		return fmt.Errorf("workbook %s is not available", h.path)
	}
	name := fmt.Sprintf("%sitem%d.xml", partFolder, h.nextItem)
	h.nextItem++
	h.added[name] = xmlText
	return nil
}

func (h *WorkbookHost) Parts(ctx context.Context) ([]PartHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.available {
		return nil, fmt.Errorf("workbook %s is not available", h.path)
	}

	names := make([]string, 0, len(h.parts))
	for name := range h.parts {
		names = append(names, name)
	}
	sort.Strings(names)

	handles := make([]PartHandle, 0, len(names))
	for _, name := range names {
		handles = append(handles, &workbookPart{host: h, name: name, xml: h.parts[name]})
	}
	return handles, nil
}

// Flush rewrites the container with the staged mutations applied: the
// archive is written to a temporary sibling and renamed over the original.
// The in-memory part set only advances once the rewrite lands; on failure
// the staged changes stay pending for the next Flush.
func (h *WorkbookHost) Flush(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.available {
		return fmt.Errorf("workbook %s is not available", h.path)
	}

	merged := make(map[string]string, len(h.parts)+len(h.added))
	for name, xml := range h.parts {
		merged[name] = xml
	}
	for name, xml := range h.added {
		merged[name] = xml
	}
	for name := range h.deleted {
		delete(merged, name)
	}

	op := func() (struct{}, error) {
		return struct{}{}, h.writeArchive(merged)
	}
	if _, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(4),
	); err != nil {
		return fmt.Errorf("rewrite workbook %s: %w", h.path, err)
	}

	h.parts = merged
	h.added = make(map[string]string)
	h.deleted = make(map[string]bool)
	return nil
}

func (h *WorkbookHost) writeArchive(parts map[string]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(h.path), ".docvault-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	zw := zip.NewWriter(tmp)
	for _, name := range h.order {
		data := h.entries[name]
		if name == contentTypesName && len(parts) > 0 {
			data = ensureXMLDefault(data)
		}
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), h.path)
}

// ensureXMLDefault adds a default content type for .xml entries so the
// owning application accepts the customXml items we add.
func ensureXMLDefault(contentTypes []byte) []byte {
	text := string(contentTypes)
	if strings.Contains(text, `Extension="xml"`) {
		return contentTypes
	}
	return []byte(strings.Replace(text, "</Types>", xmlDefaultEntry+"</Types>", 1))
}

type workbookPart struct {
	host *WorkbookHost
	name string
	xml  string
}

func (p *workbookPart) XML() string {
	return p.xml
}

func (p *workbookPart) Delete(ctx context.Context) error {
	p.host.mu.Lock()
	defer p.host.mu.Unlock()
	p.host.deleted[p.name] = true
	return nil
}
