package restore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/identity"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/transport/transporttest"
)

func TestHandleLocalPolicy(t *testing.T) {
	tr := &transporttest.QueueTransport{}
	tssClient := &transporttest.StaticTSSClient{Response: plist.Dict{"LocalPolicy-Blob": []byte("lpol-ticket")}}

	c := session.New(session.Device{ECID: 42}, session.Flags{}, "https://tss.example/")
	c.BuildIdentity = identity.New(plist.Dict{"Manifest": plist.Dict{}})
	c.IPSW = transporttest.NewMemIPSW(map[string][]byte{localPolicyTemplate: []byte("lpol-template")})
	c.Personalizer = &transporttest.StaticPersonalizer{}
	c.TSSClient = tssClient
	c.Transport = tr

	err := handleLocalPolicy(context.Background(), c, plist.Dict{})
	require.NoError(t, err)

	require.Len(t, tr.Sent, 1)
	out, ok := tr.Sent[0].Data("RecoveryOSLocalPolicy")
	require.True(t, ok)
	assert.Equal(t, []byte("lpol-template"), out)

	assert.Equal(t, c.LocalPolicyTicket.Raw["LocalPolicy-Blob"], []byte("lpol-ticket"))
	assert.Equal(t, uint64(42), tssClient.LastParams["ApECID"])
}

func TestHandleLocalPolicyMissingTemplate(t *testing.T) {
	tr := &transporttest.QueueTransport{}
	c := session.New(session.Device{}, session.Flags{}, "")
	c.BuildIdentity = identity.New(plist.Dict{"Manifest": plist.Dict{}})
	c.IPSW = transporttest.NewMemIPSW(map[string][]byte{})
	c.Transport = tr

	err := handleLocalPolicy(context.Background(), c, plist.Dict{})
	assert.Error(t, err)
}
