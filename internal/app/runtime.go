package app

import (
	"os"
	"sync"
)

const testModeEnv = "LINKFORGE_TEST_MODE"

var inTestMode = sync.OnceValue(func() bool {
	return os.Getenv(testModeEnv) == "1"
})

// InTestMode reports whether mains should skip runtime startup. Test
// binaries that import the root testing package set the flag before main
// runs.
func InTestMode() bool {
	return inTestMode()
}
