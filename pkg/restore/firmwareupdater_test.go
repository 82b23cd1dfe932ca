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

	_ "github.com/restoreos/restored/pkg/firmware/se"
)

func TestHandleFirmwareUpdaterDataSE(t *testing.T) {
	manifest := plist.Dict{
		"SE,UpdatePayload": plist.Dict{"Info": plist.Dict{"Path": "Firmware/se.bin"}},
	}
	ipsw := transporttest.NewMemIPSW(map[string][]byte{
		"Firmware/se.bin": []byte("se-update-bytes"),
	})
	tssClient := &transporttest.StaticTSSClient{Response: plist.Dict{"SE,Ticket": []byte("se-ticket")}}
	tr := &transporttest.QueueTransport{}

	c := session.New(session.Device{ECID: 7}, session.Flags{}, "https://tss.example/")
	c.BuildIdentity = identity.New(plist.Dict{"Manifest": manifest})
	c.IPSW = ipsw
	c.TSSClient = tssClient
	c.Transport = tr
	c.AppTicket = ticket.Wrap(plist.Dict{})

	err := handleFirmwareUpdaterData(context.Background(), c, plist.Dict{
		"MessageArgUpdaterName": "SE",
		"MessageArgInfo":        plist.Dict{},
	})
	require.NoError(t, err)

	require.Len(t, tr.Sent, 1)
	resp, ok := tr.Sent[0].Dict("FirmwareResponseData")
	require.True(t, ok)
	assert.Equal(t, []byte("se-update-bytes"), resp["FirmwareData"])
	assert.Equal(t, []byte("se-ticket"), resp["SE,Ticket"])

	assert.Equal(t, 1, tssClient.Calls)
}

func TestHandleFirmwareUpdaterDataUnknownUpdater(t *testing.T) {
	c := session.New(session.Device{}, session.Flags{}, "")
	c.Transport = &transporttest.QueueTransport{}

	err := handleFirmwareUpdaterData(context.Background(), c, plist.Dict{
		"MessageArgUpdaterName": "Nonexistent",
	})
	assert.Error(t, err)
}

func TestHandleFirmwareUpdaterDataMissingUpdaterName(t *testing.T) {
	c := session.New(session.Device{}, session.Flags{}, "")
	c.Transport = &transporttest.QueueTransport{}

	err := handleFirmwareUpdaterData(context.Background(), c, plist.Dict{})
	assert.Error(t, err)
}
