package yonkers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restoreos/restored/internal/plist"
)

func TestPostProcessWrapsYonkersFirmware(t *testing.T) {
	raw := []byte("yonkers-payload")
	out, err := adapter{}.PostProcess(nil, nil, nil, raw)
	require.NoError(t, err)

	fw, ok := out.Dict("FirmwareData")
	require.True(t, ok)
	data, ok := fw.Data("YonkersFirmware")
	require.True(t, ok)
	assert.Equal(t, raw, data)
}

func TestComponentNameFromResponse(t *testing.T) {
	response := plist.Dict{componentNameKey: "Yonkers,Firmware"}
	name, err := adapter{}.ComponentName(nil, nil, response)
	require.NoError(t, err)
	assert.Equal(t, "Yonkers,Firmware", name)
}
