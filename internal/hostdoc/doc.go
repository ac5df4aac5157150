// Package hostdoc abstracts the host document's part store.
//
// The host exposes parts as opaque named XML fragments with no transactions,
// no indexed lookup and no ordering: only whole-document enumeration, and
// every mutation requires an explicit synchronization round-trip (Flush)
// before it is observable.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────┐
//	│                        Adapter                          │
//	│  FindPartByTagPrefix / AddPart / DeletePart /           │
//	│  ReplacePart  (availability gate, batched reads)        │
//	├────────────────────────────┬────────────────────────────┤
//	│       WorkbookHost         │         MemHost            │
//	│  parts embedded in the     │  in-memory store used by   │
//	│  customXml/ folder of a    │  tests and detached runs   │
//	│  workbook (zip) container  │                            │
//	└────────────────────────────┴────────────────────────────┘
//
// # Round-Trip Discipline
//
// Parts materializes every part's XML during enumeration, so a scan over all
// parts costs one logical round trip regardless of part count. AddPart and
// PartHandle.Delete stage mutations; Flush commits them. The Adapter pairs
// each mutation with its Flush so callers observe their own writes.
package hostdoc
