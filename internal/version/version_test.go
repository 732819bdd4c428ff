package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	prevV, prevSHA, prevTime := Version, GitSHA, BuildTime
	defer func() { Version, GitSHA, BuildTime = prevV, prevSHA, prevTime }()

	assert.Equal(t, "biovectors-plot dev (commit unknown, built unknown)", String("biovectors-plot"))

	Version, GitSHA, BuildTime = "1.2.0", "abc1234", "2026-01-02T03:04:05Z"
	assert.Equal(t, "biovectors-plot 1.2.0 (commit abc1234, built 2026-01-02T03:04:05Z)", String("biovectors-plot"))
}
