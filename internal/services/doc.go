// Package services implements the business logic layer of docvault.
//
// Services sit between the HTTP handlers (or CLI commands) and the store
// layer, each encapsulating one area of domain logic.
//
// # Service Dependency Graph
//
//	Handlers / CLI
//	    │
//	    ▼
//	Services Layer
//	    ├── DatabaseService ──► Store
//	    └── UploadService ────► Store, Renderer
//
// # DatabaseService
//
// DatabaseService exposes the embedded database: running statements, seeding,
// schema state against the required table set, and deletion. It is stateless;
// persistence decisions (read/write classification, background saves) live in
// the store layer.
//
// Usage:
//
//	dbService := services.NewDatabaseService(st, nil)
//	rs, err := dbService.RunQuery(ctx, "SELECT 1")
//	state, err := dbService.State(ctx)
//
// # UploadService
//
// UploadService owns the upload task list and the ingestion pipeline. Tasks
// move through six checkpoints, each advancing progress by one sixth:
//
//	┌────────┐   validate   thumbnail   encode   part    record   ┌──────────┐
//	│ Queued │──► 17% ──────► 33% ──────► 50% ───► 67% ──► 83% ───►│ Complete │
//	└────────┘                                                     └──────────┘
//	    ▲                                                               100%
//	    │                 (any step fails: revert to 0%)
//	    └───────────────────────────────────────────────────────────────┘
//
// Tasks are processed strictly one at a time: the engine and the snapshot
// part cannot tolerate interleaved save cycles. One task's failure reverts it
// to Queued for manual retry and never aborts the rest of the batch.
//
// The retrieval side prefers thumbnails stored with the metadata row and
// renders on demand for records predating thumbnail support (without writing
// the result back). Full-document viewing blends download and render progress
// into one percentage; see BlendProgress.
//
// Usage:
//
//	uploads := services.NewUploadService(st, renderer)
//	uploads.Submit("report.pdf", bytes)
//	uploads.ProcessQueued(ctx)
//	thumbs, err := uploads.Thumbnails(ctx)
//
// # Thread Safety
//
// Both services are designed for the single-caller model of the surrounding
// application: state is confined to one request-serving goroutine, and all
// snapshot writes are serialized by the store's sequencer.
package services
