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

func fudContext() (*session.Context, *transporttest.QueueTransport) {
	manifest := plist.Dict{
		"FUD,Thing1": plist.Dict{
			"Info": plist.Dict{"Path": "Firmware/thing1.im4p", identity.FlagIsFUDFirmware: true},
		},
		"FUD,Thing2": plist.Dict{
			"Info": plist.Dict{"Path": "Firmware/thing2.im4p", identity.FlagIsFUDFirmware: true},
		},
		"NotFUD": plist.Dict{
			"Info": plist.Dict{"Path": "Firmware/other.im4p"},
		},
	}
	ipsw := transporttest.NewMemIPSW(map[string][]byte{
		"Firmware/thing1.im4p": []byte("thing1-bytes"),
		"Firmware/thing2.im4p": []byte("thing2-bytes"),
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

func TestHandleImageFamilyListMode(t *testing.T) {
	c, tr := fudContext()

	err := handleImageFamily(context.Background(), c, plist.Dict{"FUDImageList": true}, fudImageFamily)
	require.NoError(t, err)

	require.Len(t, tr.Sent, 1)
	names, ok := tr.Sent[0].Array("FUDImageList")
	require.True(t, ok)
	assert.Equal(t, []any{"FUD,Thing1", "FUD,Thing2"}, names)
}

func TestHandleImageFamilySingleNamed(t *testing.T) {
	c, tr := fudContext()

	err := handleImageFamily(context.Background(), c, plist.Dict{"ImageName": "FUD,Thing1"}, fudImageFamily)
	require.NoError(t, err)

	require.Len(t, tr.Sent, 1)
	data, ok := tr.Sent[0].Data("FUDImageData")
	require.True(t, ok)
	assert.Equal(t, []byte("thing1-bytes"), data)
	name, _ := tr.Sent[0].String("ImageName")
	assert.Equal(t, "FUD,Thing1", name)
}

func TestHandleImageFamilyAllMatching(t *testing.T) {
	c, tr := fudContext()

	err := handleImageFamily(context.Background(), c, plist.Dict{}, fudImageFamily)
	require.NoError(t, err)

	require.Len(t, tr.Sent, 1)
	data, ok := tr.Sent[0].Dict("FUDImageData")
	require.True(t, ok)
	assert.Len(t, data, 2)
	assert.Contains(t, data, "FUD,Thing1")
	assert.Contains(t, data, "FUD,Thing2")
}
