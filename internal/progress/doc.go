// Package progress persists per-topic completion and the unlock index as a
// small JSON document. Every completion is written through immediately.
package progress
