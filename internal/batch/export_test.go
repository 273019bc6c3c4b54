package batch

// Exported test-only accessors for unexported functions.
// This file is compiled only during tests and does not affect the public API.

// AllowedTransitionForTest exposes allowedTransition for tests in external
// package.
func AllowedTransitionForTest(from, to Status) bool { return allowedTransition(from, to) }
