// Package store persists the embedded database and its attachments into the
// host document.
//
// Two repositories share one document and one engine:
//
//	                +-----------------+   snapshot part
//	 Execute/Save   |  DatabaseStore  |   <proofPanelData>base64(image)</...>
//	--------------> |                 | ----------------------------------+
//	                +-----------------+                                   |
//	                +-----------------+   payload parts                   |
//	 Save/Load/List | AttachmentStore |   <dataFile-name-xxxxxx>...</...> |
//	--------------> |                 | ----------------------------------+
//	                +-----------------+                                   |
//	                     |        |                                       v
//	                     v        v                               hostdoc.Adapter
//	              engine.Handle  DataFiles table
//
// The database snapshot is one part holding the full serialized engine image;
// every write-classified statement rewrites it whole. Attachment payloads are
// independent parts, one per file, mirrored by rows of the DataFiles table
// inside the snapshot. The engine/snapshot pair is singly owned, so all
// snapshot rewrites funnel through one sequencer; attachment parts are
// independent of the snapshot and of each other.
//
// The host offers no transactions: a metadata row is only written after its
// payload part is confirmed, so a mid-pipeline failure leaves at worst an
// orphan part, never a row pointing at a part that does not exist.
package store
