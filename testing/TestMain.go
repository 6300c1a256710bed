// Package testing forces test mode for any test binary that imports it,
// keeping cmd mains from starting servers during `go test ./...`.
package testing

import (
	"os"
	stdtesting "testing"
)

func init() {
	if os.Getenv("LINKFORGE_TEST_MODE") == "" {
		_ = os.Setenv("LINKFORGE_TEST_MODE", "1")
	}
}

// TestMain runs the package tests with the guard already applied by init.
func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
