// Package shared holds code used by several epicli packages that belongs to
// no single layer.
//
// The testutil subpackage provides:
//
//   - a capturing slog handler with assertion helpers
//   - small epidemiological tables in the layouts the loader accepts
//   - helpers that write those tables to a temporary directory
//
// Nothing in shared may import a domain package other than
// pkg/contracts/domain.
package shared
