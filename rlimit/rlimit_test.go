package rlimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestForPass(t *testing.T) {
	assert.Equal(t, 20, ForPass(0))
	assert.Equal(t, 220, ForPass(100))
}

func TestRaiseOpenFiles_NeverLowersExisting(t *testing.T) {
	var before unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &before); err != nil {
		t.Skipf("getrlimit unavailable in this environment: %v", err)
	}
	cur, err := RaiseOpenFiles(1)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, cur, 1)
	assert.Equal(t, int(before.Cur), cur)
}
