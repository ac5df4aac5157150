// Package handlers implements the HTTP API layer of docvault.
//
// Handlers delegate business logic to the services layer and focus on
// request validation, error-to-status mapping, and model-to-API conversion.
//
//	┌──────────────────────────────────────────────┐
//	│               HTTP Request (Gin)             │
//	└──────────────────────────────────────────────┘
//	                      │
//	                      ▼
//	┌──────────────────────────────────────────────┐
//	│            Handler (this package)            │
//	│  - request validation                        │
//	│  - error mapping to HTTP status codes        │
//	│  - model-to-API conversion (api/v1)          │
//	└──────────────────────────────────────────────┘
//	                      │
//	                      ▼
//	┌──────────────────────────────────────────────┐
//	│  Services: DatabaseService │ UploadService   │
//	└──────────────────────────────────────────────┘
//
// # Error Mapping
//
//	QueryFailure      → 400 with the engine diagnostic
//	HostUnavailable   → 503
//	NoContent         → 404 (content lookups) / 422 (pipeline)
//	RenderFailure     → 422
//	anything else     → 500, logged
package handlers
