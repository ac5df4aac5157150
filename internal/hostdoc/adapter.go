package hostdoc

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	srvErrors "github.com/proofpanel/docvault/pkg/errors"
)

// Adapter wraps a Host with the deterministic operations the stores need:
// a find over the unordered part collection, and mutation helpers that pair
// every staged change with its synchronization round trip.
type Adapter struct {
	host Host
	log  *zap.SugaredLogger
}

func NewAdapter(host Host) *Adapter {
	return &Adapter{
		host: host,
		log:  zap.S().Named("part_store"),
	}
}

// Host returns the wrapped host, for callers that only need the
// availability gate.
func (a *Adapter) Host() Host {
	return a.host
}

func (a *Adapter) ensureAvailable() error {
	if !a.host.Available() {
		return srvErrors.NewHostUnavailableError()
	}
	return nil
}

// FindPartByTagPrefix enumerates all parts in one batched round trip and
// returns the first whose fragment text contains "<prefix". The collection
// is unindexed, so a linear scan is the only lookup the host offers.
func (a *Adapter) FindPartByTagPrefix(ctx context.Context, prefix string) (PartHandle, bool, error) {
	if err := a.ensureAvailable(); err != nil {
		return nil, false, err
	}

	parts, err := a.host.Parts(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("enumerate parts: %w", err)
	}

	marker := "<" + prefix
	for _, part := range parts {
		if strings.Contains(part.XML(), marker) {
			return part, true, nil
		}
	}
	return nil, false, nil
}

// AddPart stages a new part and synchronizes.
func (a *Adapter) AddPart(ctx context.Context, xmlText string) error {
	if err := a.ensureAvailable(); err != nil {
		return err
	}
	if err := a.host.AddPart(ctx, xmlText); err != nil {
		return fmt.Errorf("add part: %w", err)
	}
	return a.host.Flush(ctx)
}

// DeletePart stages removal of the handle and synchronizes.
func (a *Adapter) DeletePart(ctx context.Context, part PartHandle) error {
	if err := a.ensureAvailable(); err != nil {
		return err
	}
	if err := part.Delete(ctx); err != nil {
		return fmt.Errorf("delete part: %w", err)
	}
	return a.host.Flush(ctx)
}

// DeletePartByTagPrefix removes the first part matching the prefix. Absence
// is not an error; the bool reports whether anything was removed.
func (a *Adapter) DeletePartByTagPrefix(ctx context.Context, prefix string) (bool, error) {
	part, found, err := a.FindPartByTagPrefix(ctx, prefix)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := a.DeletePart(ctx, part); err != nil {
		return false, err
	}
	return true, nil
}

// ReplacePart atomically swaps the part matching the prefix for a new one:
// find, delete the old part when present, add the new one, then synchronize
// once so both mutations land in the same round trip.
func (a *Adapter) ReplacePart(ctx context.Context, prefix, xmlText string) error {
	if err := a.ensureAvailable(); err != nil {
		return err
	}

	existing, found, err := a.FindPartByTagPrefix(ctx, prefix)
	if err != nil {
		return err
	}
	if found {
		if err := existing.Delete(ctx); err != nil {
			return fmt.Errorf("delete existing part: %w", err)
		}
	}
	if err := a.host.AddPart(ctx, xmlText); err != nil {
		return fmt.Errorf("add replacement part: %w", err)
	}
	return a.host.Flush(ctx)
}
