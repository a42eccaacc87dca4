package app

import (
	"os"
	"strconv"
)

// TestModeEnv is set by the testing package; binaries exit early under it.
const TestModeEnv = "CLUB_TEST_MODE"

// InTestMode reports whether CLUB_TEST_MODE holds a true value.
func InTestMode() bool {
	on, _ := strconv.ParseBool(os.Getenv(TestModeEnv))
	return on
}
