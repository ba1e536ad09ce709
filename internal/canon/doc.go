// Package canon produces canonical JSON (RFC 8785 key order, NFC strings).
//
// Persisted session blobs and harness traces go through Marshal so two
// equal values always produce identical bytes. Floats and null are
// rejected: nothing the sorter persists needs them, and allowing them
// would reintroduce platform-dependent encodings.
package canon
