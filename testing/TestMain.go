// Package testing is imported for its side effect by test packages: it marks
// the process as a test run and selects the in-memory document store.
package testing

import (
	"os"
	stdtesting "testing"
)

func init() {
	_ = os.Setenv("CLUB_TEST_MODE", "1")
	if os.Getenv("DOCSTORE") == "" {
		_ = os.Setenv("DOCSTORE", "memory")
	}
}

// TestMain lets a package delegate its TestMain here.
func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
