package firmware_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/firmware"
	_ "github.com/restoreos/restored/pkg/firmware/rose"
	_ "github.com/restoreos/restored/pkg/firmware/savage"
	_ "github.com/restoreos/restored/pkg/firmware/se"
	_ "github.com/restoreos/restored/pkg/firmware/tcon"
	_ "github.com/restoreos/restored/pkg/firmware/timer"
	_ "github.com/restoreos/restored/pkg/firmware/veridian"
	_ "github.com/restoreos/restored/pkg/firmware/yonkers"
)

func TestDispatchResolvesPlainFamilies(t *testing.T) {
	for _, name := range []string{"SE", "Rose", "T200", "AppleTCON", "AppleTypeCRetimer"} {
		a, err := firmware.Dispatch(name, plist.Dict{})
		require.NoError(t, err, name)
		assert.NotEmpty(t, a.Name())
	}
}

func TestDispatchRoutesSavageToYonkersWhenPresent(t *testing.T) {
	a, err := firmware.Dispatch("Savage", plist.Dict{"YonkersDeviceInfo": plist.Dict{}})
	require.NoError(t, err)
	assert.Equal(t, "Yonkers", a.Name())
}

func TestDispatchPlainSavageWithoutYonkersInfo(t *testing.T) {
	a, err := firmware.Dispatch("Savage", plist.Dict{})
	require.NoError(t, err)
	assert.Equal(t, "Savage", a.Name())
}

func TestDispatchUnknownUpdater(t *testing.T) {
	_, err := firmware.Dispatch("NotReal", plist.Dict{})
	assert.Error(t, err)
}
