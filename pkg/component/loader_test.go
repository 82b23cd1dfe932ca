package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/identity"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/ticket"
	"github.com/restoreos/restored/pkg/transport/transporttest"
)

func buildContext() (*session.Context, *transporttest.StaticPersonalizer) {
	manifest := plist.Dict{
		"iBEC": plist.Dict{
			"Info": plist.Dict{"Path": "Firmware/iBEC.n71.RELEASE.im4p"},
		},
	}
	ipsw := transporttest.NewMemIPSW(map[string][]byte{
		"Firmware/iBEC.n71.RELEASE.im4p": []byte("raw-ibec-bytes"),
	})
	personalizer := &transporttest.StaticPersonalizer{}

	c := session.New(session.Device{ECID: 1}, session.Flags{}, "https://tss.example/")
	c.BuildIdentity = identity.New(plist.Dict{"Manifest": manifest})
	c.IPSW = ipsw
	c.Personalizer = personalizer
	c.AppTicket = ticket.Wrap(plist.Dict{})
	return c, personalizer
}

func TestResolvePathPrefersOverride(t *testing.T) {
	id := identity.New(plist.Dict{"Manifest": plist.Dict{
		"iBEC": plist.Dict{"Info": plist.Dict{"Path": "Firmware/iBEC.im4p"}},
	}})
	path, err := ResolvePath(id, "iBEC", "override/path.im4p")
	require.NoError(t, err)
	assert.Equal(t, "override/path.im4p", path)
}

func TestResolvePathFallsBackToManifest(t *testing.T) {
	id := identity.New(plist.Dict{"Manifest": plist.Dict{
		"iBEC": plist.Dict{"Info": plist.Dict{"Path": "Firmware/iBEC.im4p"}},
	}})
	path, err := ResolvePath(id, "iBEC", "")
	require.NoError(t, err)
	assert.Equal(t, "Firmware/iBEC.im4p", path)
}

func TestResolvePathMissingComponent(t *testing.T) {
	id := identity.New(plist.Dict{"Manifest": plist.Dict{}})
	_, err := ResolvePath(id, "iBEC", "")
	assert.Error(t, err)
}

func TestLoadAndPersonalize(t *testing.T) {
	c, personalizer := buildContext()

	out, err := LoadAndPersonalize(c, "iBEC")
	require.NoError(t, err)
	assert.Equal(t, []byte("raw-ibec-bytes"), out)
	assert.Equal(t, "iBEC", personalizer.LastName)
}

func TestLoadMissingFile(t *testing.T) {
	c, _ := buildContext()
	c.IPSW = transporttest.NewMemIPSW(map[string][]byte{})

	_, err := Load(c, "iBEC")
	assert.Error(t, err)
}
