package restore

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/transport/transporttest"
)

func TestBootabilityDestNameRemapsTrustcache(t *testing.T) {
	dest, ok := bootabilityDestName("BootabilityBundle/Restore/Firmware/Bootability.dmg.trustcache")
	require.True(t, ok)
	assert.Equal(t, "Bootability.trustcache", dest)
}

func TestBootabilityDestNameStripsPrefix(t *testing.T) {
	dest, ok := bootabilityDestName("BootabilityBundle/Restore/Bootability/usr/lib/foo.dylib")
	require.True(t, ok)
	assert.Equal(t, "usr/lib/foo.dylib", dest)
}

func TestBootabilityDestNameExcludesUnrelated(t *testing.T) {
	_, ok := bootabilityDestName("SomeOtherBundle/file")
	assert.False(t, ok)
}

func TestHandleBootabilityBundleStreamsAndTerminates(t *testing.T) {
	ipsw := transporttest.NewMemIPSW(map[string][]byte{
		"BootabilityBundle/Restore/Bootability/usr/lib/foo.dylib":      []byte("dylib-bytes"),
		"BootabilityBundle/Restore/Firmware/Bootability.dmg.trustcache": []byte("trustcache-bytes"),
		"SomeOtherBundle/unrelated": []byte("should-not-stream"),
	})
	conn := &transporttest.MemSecondaryConn{}
	c := session.New(session.Device{}, session.Flags{}, "")
	c.IPSW = ipsw
	c.Secondary = &transporttest.StaticSecondaryDialer{Conn: conn}

	err := handleBootabilityBundle(context.Background(), c, plist.Dict{"DataPort": int64(1234)})
	require.NoError(t, err)

	assert.True(t, conn.Closed)
	assert.Contains(t, conn.String(), "dylib-bytes")
	assert.Contains(t, conn.String(), "trustcache-bytes")
	assert.NotContains(t, conn.String(), "should-not-stream")
	assert.True(t, bytes.HasSuffix(conn.Bytes(), []byte("TRAILER!!!\x00")))
}

func TestHandleBootabilityBundleRetriesSecondaryDial(t *testing.T) {
	ipsw := transporttest.NewMemIPSW(map[string][]byte{})
	conn := &transporttest.MemSecondaryConn{}
	dialer := &transporttest.StaticSecondaryDialer{Conn: conn, FailCount: 2}
	c := session.New(session.Device{}, session.Flags{}, "")
	c.IPSW = ipsw
	c.Secondary = dialer

	err := handleBootabilityBundle(context.Background(), c, plist.Dict{"DataPort": int64(1234)})
	require.NoError(t, err)
	assert.Len(t, dialer.DialedPorts, 3)
}

func TestHandleBootabilityBundleMissingDataPort(t *testing.T) {
	c := session.New(session.Device{}, session.Flags{}, "")
	err := handleBootabilityBundle(context.Background(), c, plist.Dict{})
	assert.Error(t, err)
}
