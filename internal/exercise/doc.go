// Package exercise implements the per-exercise state machines: the multiple
// choice quiz, the matching-pairs game and the sentence builder. Engines are
// not safe for concurrent use; front-ends drive them from one goroutine.
package exercise
