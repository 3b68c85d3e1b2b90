//go:build debug

package core

// Debug builds check dispatcher invariants on every tick and halt on the
// first violation.
const assertsEnabled = true
