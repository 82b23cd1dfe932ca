package restore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/identity"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/ticket"
	"github.com/restoreos/restored/pkg/transport/transporttest"
)

func norManifestContext() (*session.Context, *transporttest.QueueTransport) {
	manifest := plist.Dict{
		"LLB":        plist.Dict{"Info": plist.Dict{"Path": "Firmware/all_flash/LLB.img3"}},
		"iBoot":      plist.Dict{"Info": plist.Dict{"Path": "Firmware/all_flash/iBoot.img3"}},
		"applelogo":  plist.Dict{"Info": plist.Dict{"Path": "Firmware/all_flash/applelogo.img3"}},
	}
	ipsw := transporttest.NewMemIPSW(map[string][]byte{
		"Firmware/all_flash/manifest":    []byte("LLB.img3\niBoot.img3\napplelogo.img3\n"),
		"Firmware/all_flash/LLB.img3":    []byte("llb-bytes"),
		"Firmware/all_flash/iBoot.img3":  []byte("iboot-bytes"),
		"Firmware/all_flash/applelogo.img3": []byte("logo-bytes"),
	})
	tr := &transporttest.QueueTransport{}
	c := session.New(session.Device{}, session.Flags{}, "")
	c.BuildIdentity = identity.New(plist.Dict{"Manifest": manifest})
	c.IPSW = ipsw
	c.Personalizer = &transporttest.StaticPersonalizer{}
	c.AppTicket = ticket.Wrap(plist.Dict{})
	c.Transport = tr
	return c, tr
}

func TestHandleNORDataArrayModeIBootFirst(t *testing.T) {
	c, tr := norManifestContext()

	err := handleNORData(context.Background(), c, plist.Dict{})
	require.NoError(t, err)

	require.Len(t, tr.Sent, 1)
	reply := tr.Sent[0]

	llb, ok := reply.Data("LlbImageData")
	require.True(t, ok)
	assert.Equal(t, []byte("llb-bytes"), llb)

	arr, ok := reply.Array("NorImageData")
	require.True(t, ok)
	require.Len(t, arr, 2)
	assert.Equal(t, []byte("iboot-bytes"), arr[0])
	assert.Equal(t, []byte("logo-bytes"), arr[1])
}

func TestHandleNORDataFlashVersion1Dict(t *testing.T) {
	c, tr := norManifestContext()

	err := handleNORData(context.Background(), c, plist.Dict{"FlashVersion1": true})
	require.NoError(t, err)

	require.Len(t, tr.Sent, 1)
	dict, ok := tr.Sent[0].Dict("NorImageData")
	require.True(t, ok)
	assert.Equal(t, []byte("iboot-bytes"), dict["iBoot"])
	assert.Equal(t, []byte("logo-bytes"), dict["applelogo"])
}

func TestHandleNORDataFallbackWithoutManifestFile(t *testing.T) {
	manifest := plist.Dict{
		"LLB": plist.Dict{"Info": plist.Dict{"Path": "Firmware/all_flash/LLB.img3"}},
		"iBoot": plist.Dict{"Info": plist.Dict{
			"Path":                          "Firmware/all_flash/iBoot.img3",
			identity.FlagIsFirmwarePayload: true,
		}},
	}
	ipsw := transporttest.NewMemIPSW(map[string][]byte{
		"Firmware/all_flash/LLB.img3":   []byte("llb-bytes"),
		"Firmware/all_flash/iBoot.img3": []byte("iboot-bytes"),
	})
	tr := &transporttest.QueueTransport{}
	c := session.New(session.Device{}, session.Flags{}, "")
	c.BuildIdentity = identity.New(plist.Dict{"Manifest": manifest})
	c.IPSW = ipsw
	c.Personalizer = &transporttest.StaticPersonalizer{}
	c.AppTicket = ticket.Wrap(plist.Dict{})
	c.Transport = tr

	err := handleNORData(context.Background(), c, plist.Dict{})
	require.NoError(t, err)

	arr, ok := tr.Sent[0].Array("NorImageData")
	require.True(t, ok)
	require.Len(t, arr, 1)
	assert.Equal(t, []byte("iboot-bytes"), arr[0])
}

func TestHandleNORDataMissingLLB(t *testing.T) {
	c := session.New(session.Device{}, session.Flags{}, "")
	c.BuildIdentity = identity.New(plist.Dict{"Manifest": plist.Dict{}})
	c.Transport = &transporttest.QueueTransport{}

	err := handleNORData(context.Background(), c, plist.Dict{})
	assert.Error(t, err)
}
