// Package testutil provides deterministic test signals and tolerance
// assertions shared by the filter, parameter and measurement tests.
package testutil
