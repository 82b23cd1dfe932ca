// Package yonkers implements the Yonkers firmware-updater adapter: the
// Savage-family variant selected when MessageArgInfo carries
// YonkersDeviceInfo (spec.md §4.5).
package yonkers

import (
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/firmware"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/ticket"
)

const componentNameKey = "Yonkers,ComponentName"

type adapter struct{}

// Adapter is the Yonkers firmware-updater adapter.
var Adapter firmware.Adapter = adapter{}

func (adapter) Name() string   { return "Yonkers" }
func (adapter) TagKey(info plist.Dict) string { return "Yonkers,Ticket" }

func (adapter) BuildParams(c *session.Context, common, info plist.Dict) plist.Dict {
	params := plist.New()
	params.Merge(common)
	params.Merge(info)
	return ticket.AddYonkersTags(params, c.Device.ECID, c.Device.Image4Supported)
}

func (adapter) ComponentName(c *session.Context, info, response plist.Dict) (string, error) {
	return response.RequireString(componentNameKey)
}

// PostProcess wraps the payload as {YonkersFirmware=<bytes>} under
// FirmwareData, the one family whose payload post-processing is a plain
// re-wrap rather than a binary transform (spec.md §4.5). The 16-byte Savage
// header is not applied here — Yonkers carries its own framing downstream.
func (adapter) PostProcess(c *session.Context, info, response plist.Dict, raw []byte) (plist.Dict, error) {
	return plist.Dict{"FirmwareData": plist.Dict{"YonkersFirmware": raw}}, nil
}

func init() {
	firmware.Register("Yonkers", Adapter)
}
