// Package testkit holds invariant checks shared by unit tests and fuzz
// harnesses: token tiling over the source and scan determinism.
package testkit
