package tcon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentNameIsFixed(t *testing.T) {
	name, err := adapter{}.ComponentName(nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, componentName, name)
}

func TestPostProcessPassthrough(t *testing.T) {
	raw := []byte("tcon-firmware-bytes")
	out, err := adapter{}.PostProcess(nil, nil, nil, raw)
	require.NoError(t, err)
	data, ok := out.Data("FirmwareData")
	require.True(t, ok)
	assert.Equal(t, raw, data)
}
