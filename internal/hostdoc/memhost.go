package hostdoc

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemHost is an in-memory Host. It enforces the same staging discipline as
// the real host: additions and deletions are invisible until Flush. Tests use
// its counters to assert on round-trip behavior.
type MemHost struct {
	mu        sync.Mutex
	available bool
	nextID    int
	committed map[int]string
	added     map[int]string
	deleted   map[int]bool

	// FlushCount and EnumerateCount track logical round trips.
	FlushCount     int
	EnumerateCount int

	// FailFlush, when set, makes the next Flush return this error once.
	FailFlush error
}

// NewMemHost creates an available, empty in-memory host.
func NewMemHost() *MemHost {
	return &MemHost{
		available: true,
		committed: make(map[int]string),
		added:     make(map[int]string),
		deleted:   make(map[int]bool),
	}
}

// SetAvailable toggles the availability gate, simulating execution outside
// the host application.
func (h *MemHost) SetAvailable(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.available = v
}

func (h *MemHost) Available() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.available
}

func (h *MemHost) AddPart(ctx context.Context, xmlText string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.available {
		return fmt.Errorf("no document attached")
	}
	h.added[h.nextID] = xmlText
	h.nextID++
	return nil
}

func (h *MemHost) Parts(ctx context.Context) ([]PartHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.available {
		return nil, fmt.Errorf("no document attached")
	}
	h.EnumerateCount++

	handles := make([]PartHandle, 0, len(h.committed))
	for id := 0; id < h.nextID; id++ {
		xml, ok := h.committed[id]
		if !ok {
			continue
		}
		handles = append(handles, &memPart{host: h, id: id, xml: xml})
	}
	return handles, nil
}

func (h *MemHost) Flush(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.FlushCount++
	if h.FailFlush != nil {
		err := h.FailFlush
		h.FailFlush = nil
		return err
	}
	for id, xml := range h.added {
		h.committed[id] = xml
	}
	for id := range h.deleted {
		delete(h.committed, id)
	}
	h.added = make(map[int]string)
	h.deleted = make(map[int]bool)
	return nil
}

// PartCount returns the number of committed parts.
func (h *MemHost) PartCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.committed)
}

// RemoveCommitted drops a committed part directly, bypassing staging. Tests
// use it to simulate a part removed behind the store's back.
func (h *MemHost) RemoveCommitted(substr string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, xml := range h.committed {
		if strings.Contains(xml, substr) {
			delete(h.committed, id)
			return true
		}
	}
	return false
}

// CommittedXML returns the committed parts' fragment texts.
func (h *MemHost) CommittedXML() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.committed))
	for id := 0; id < h.nextID; id++ {
		if xml, ok := h.committed[id]; ok {
			out = append(out, xml)
		}
	}
	return out
}

type memPart struct {
	host *MemHost
	id   int
	xml  string
}

func (p *memPart) XML() string {
	return p.xml
}

func (p *memPart) Delete(ctx context.Context) error {
	p.host.mu.Lock()
	defer p.host.mu.Unlock()
	p.host.deleted[p.id] = true
	return nil
}
