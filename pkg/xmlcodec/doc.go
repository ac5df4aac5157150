// Package xmlcodec converts binary payloads to and from the XML fragments
// stored as host document parts.
//
// A stored part is a single-element fragment whose body is the base64-encoded
// payload:
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<proofPanelData>AAAB...</proofPanelData>
//
// # Extraction Strategies
//
// ExtractBody runs an ordered chain of fallible extractors:
//
//  1. Token-stream parse: text content of the element matching the tag,
//     falling back to the document root when no exact match exists.
//  2. Raw substring scan for <tag ...> ... </tag>, used when the host
//     produces XML the parser rejects.
//
// TrySalvageDoubleEncoded is a separate backward-compatibility fallback for
// payloads whose whole fragment was base64-encoded one extra time. Callers
// try it only after ExtractBody fails on the raw part text.
package xmlcodec
