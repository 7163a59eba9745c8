package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	saved := version
	t.Cleanup(func() { version = saved })

	version = "v1.4.2"
	assert.Equal(t, "1.4.2", GetVersion())
	assert.True(t, IsRelease())

	version = "0.9.0"
	assert.Equal(t, "0.9.0", GetVersion())
}

func TestGetVersion_TestBinary(t *testing.T) {
	saved := version
	t.Cleanup(func() { version = saved })

	version = ""
	assert.NotEmpty(t, GetVersion())
}
