package hostdoc

import "context"

// PartHandle is one enumerated document part. The XML text is materialized
// when the handle is produced, so reading it is free of further round trips.
type PartHandle interface {
	// XML returns the part's raw fragment text.
	XML() string

	// Delete stages removal of the part. The removal becomes observable
	// after the next Flush.
	Delete(ctx context.Context) error
}

// Host is the document part store boundary. Implementations stage mutations
// until Flush, mirroring the synchronization round-trip the real host
// requires before results are visible.
type Host interface {
	// Available reports whether a document is attached in the current
	// execution context. Every other operation requires it.
	Available() bool

	// AddPart stages a new part holding the given fragment text.
	AddPart(ctx context.Context, xmlText string) error

	// Parts enumerates committed parts in one batched round trip.
	Parts(ctx context.Context) ([]PartHandle, error)

	// Flush commits staged additions and deletions.
	Flush(ctx context.Context) error
}
