package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackendMatchesBuild(t *testing.T) {
	name := backend().Name()
	if insecureBackend {
		assert.Equal(t, "testscheme", name)
		assert.True(t, strings.HasSuffix(version(), "testscheme-INSECURE"), version())
		return
	}
	assert.Equal(t, "tfhe-rs", name)
	assert.NotContains(t, version(), "testscheme")
}
