package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertLogged checks that some line of the captured log output contains msg
// and every given fragment, such as `key=value` pairs of the text handler.
func AssertLogged(t *testing.T, buf *SafeBuffer, msg string, fragments ...string) bool {
	t.Helper()
	for _, line := range strings.Split(buf.String(), "\n") {
		if !strings.Contains(line, msg) {
			continue
		}
		matched := true
		for _, f := range fragments {
			if !strings.Contains(line, f) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return assert.Fail(t, "log line not found", "message %q with %v not found in:\n%s", msg, fragments, buf.String())
}
