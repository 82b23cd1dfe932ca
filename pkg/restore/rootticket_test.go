package restore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/ticket"
	"github.com/restoreos/restored/pkg/transport/transporttest"
)

func TestHandleRootTicketExplicitArgWins(t *testing.T) {
	tr := &transporttest.QueueTransport{}
	c := session.New(session.Device{}, session.Flags{}, "")
	c.AppTicket = ticket.Wrap(plist.Dict{"ApImg4Ticket": []byte("from-apptticket")})
	c.Transport = tr

	err := handleRootTicket(context.Background(), c, plist.Dict{"RootTicketData": []byte("explicit")})
	require.NoError(t, err)

	blob, ok := tr.Sent[0].Data("RootTicketData")
	require.True(t, ok)
	assert.Equal(t, []byte("explicit"), blob)
}

func TestHandleRootTicketFallsBackToApImg4Ticket(t *testing.T) {
	tr := &transporttest.QueueTransport{}
	c := session.New(session.Device{}, session.Flags{}, "")
	c.AppTicket = ticket.Wrap(plist.Dict{"ApImg4Ticket": []byte("img4-ticket")})
	c.Transport = tr

	err := handleRootTicket(context.Background(), c, plist.Dict{})
	require.NoError(t, err)

	blob, _ := tr.Sent[0].Data("RootTicketData")
	assert.Equal(t, []byte("img4-ticket"), blob)
}

func TestHandleRootTicketFallsBackToLegacyAPTicket(t *testing.T) {
	tr := &transporttest.QueueTransport{}
	c := session.New(session.Device{}, session.Flags{}, "")
	c.AppTicket = ticket.Wrap(plist.Dict{"APTicket": []byte("legacy-ticket")})
	c.Transport = tr

	err := handleRootTicket(context.Background(), c, plist.Dict{})
	require.NoError(t, err)

	blob, _ := tr.Sent[0].Data("RootTicketData")
	assert.Equal(t, []byte("legacy-ticket"), blob)
}

func TestHandleRootTicketNoneAvailable(t *testing.T) {
	c := session.New(session.Device{}, session.Flags{}, "")
	c.AppTicket = ticket.Wrap(plist.Dict{})
	c.Transport = &transporttest.QueueTransport{}

	err := handleRootTicket(context.Background(), c, plist.Dict{})
	assert.Error(t, err)
}

func TestHandleRecoveryOSRootTicket(t *testing.T) {
	tr := &transporttest.QueueTransport{}
	c := session.New(session.Device{}, session.Flags{}, "")
	c.RecoveryOSTicket = ticket.Wrap(plist.Dict{"RecoveryOSRootTicketData": []byte("recovery-ticket")})
	c.Transport = tr

	err := handleRecoveryOSRootTicket(context.Background(), c, plist.Dict{})
	require.NoError(t, err)

	blob, _ := tr.Sent[0].Data("RecoveryOSRootTicketData")
	assert.Equal(t, []byte("recovery-ticket"), blob)
}

func TestHandleRecoveryOSRootTicketMissing(t *testing.T) {
	c := session.New(session.Device{}, session.Flags{}, "")
	c.RecoveryOSTicket = ticket.Wrap(plist.Dict{})
	c.Transport = &transporttest.QueueTransport{}

	err := handleRecoveryOSRootTicket(context.Background(), c, plist.Dict{})
	assert.Error(t, err)
}
