package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/binformat/ftab"
	"github.com/restoreos/restored/pkg/identity"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/transport/transporttest"
)

func infoWithTag(tag string) plist.Dict {
	return plist.Dict{
		"InfoArray": []any{
			plist.Dict{"HardwareID": plist.Dict{"Tag": tag}},
		},
	}
}

func TestHardwareTagMinedFromInfoArray(t *testing.T) {
	assert.Equal(t, "3", hardwareTag(infoWithTag("3")))
}

func TestHardwareTagDefaultsWhenAbsent(t *testing.T) {
	assert.Equal(t, "0", hardwareTag(plist.Dict{}))
}

func TestTagKeyIncludesHardwareTag(t *testing.T) {
	assert.Equal(t, "Timer,Ticket,3", adapter{}.TagKey(infoWithTag("3")))
}

func TestComponentNameIncludesHardwareTag(t *testing.T) {
	name, err := adapter{}.ComponentName(nil, infoWithTag("3"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Timer,RTKitOS,3", name)
}

func TestPostProcessSplicesRestorePatchForTag(t *testing.T) {
	primary := &ftab.FTAB{Tag: primaryTag, Entries: []ftab.Entry{{Tag: "rkos", Data: []byte("kernel")}}}
	restore := &ftab.FTAB{Tag: "rrko", Entries: []ftab.Entry{{Tag: patchTag, Data: []byte("patch-bytes")}}}

	c := session.New(session.Device{}, session.Flags{}, "")
	c.BuildIdentity = identity.New(plist.Dict{
		"Manifest": plist.Dict{
			"Timer,RestoreRTKitOS,3": plist.Dict{"Info": plist.Dict{"Path": "Firmware/restore.rkos"}},
		},
	})
	c.IPSW = transporttest.NewMemIPSW(map[string][]byte{"Firmware/restore.rkos": restore.Write()})

	out, err := adapter{}.PostProcess(c, infoWithTag("3"), nil, primary.Write())
	require.NoError(t, err)

	fwBytes, ok := out.Data("FirmwareData")
	require.True(t, ok)
	result, err := ftab.Parse(fwBytes)
	require.NoError(t, err)

	data, ok := result.GetEntryPtr(patchTag)
	require.True(t, ok)
	assert.Equal(t, []byte("patch-bytes"), data)
}
