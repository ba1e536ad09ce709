// Package items loads the lists users want ranked.
//
// Three file formats are accepted, chosen by extension:
//
//	.yaml, .yml  YAML document (strict: unknown fields are rejected)
//	.json        JSON document, decoded by the same YAML decoder
//	.cue         CUE document, unified with the embedded #Item schema
//
// Every format has the same shape: an optional name and an items list.
// In YAML and JSON an item may be written as a bare string, which
// becomes both its id and its label.
//
// Ids are NFC-normalized at load so the decision cache keys built from
// them stay stable across editors and platforms.
package items
