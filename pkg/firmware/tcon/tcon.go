// Package tcon implements the Baobab/TCON firmware-updater adapter.
package tcon

import (
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/firmware"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/ticket"
)

const componentName = "Baobab,TCON"

type adapter struct{}

// Adapter is the Baobab/TCON firmware-updater adapter.
var Adapter firmware.Adapter = adapter{}

func (adapter) Name() string                 { return "TCON" }
func (adapter) TagKey(info plist.Dict) string { return "Baobab,Ticket" }

func (adapter) BuildParams(c *session.Context, common, info plist.Dict) plist.Dict {
	params := plist.New()
	params.Merge(common)
	params.Merge(info)
	return ticket.AddTCONTags(params, c.Device.ECID, c.Device.Image4Supported)
}

func (adapter) ComponentName(c *session.Context, info, response plist.Dict) (string, error) {
	return componentName, nil
}

func (adapter) PostProcess(c *session.Context, info, response plist.Dict, raw []byte) (plist.Dict, error) {
	return plist.Dict{"FirmwareData": raw}, nil
}

func init() {
	firmware.Register("AppleTCON", Adapter)
}
