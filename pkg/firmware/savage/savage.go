// Package savage implements the Savage firmware-updater adapter.
package savage

import (
	"encoding/binary"

	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/firmware"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/ticket"
)

// componentNameKey is the TSS response key this family's component path is
// returned under, since (unlike SE/Rose/Veridian/TCON/Timer) Savage doesn't
// hard-code its component name.
const componentNameKey = "Savage,ComponentName"

type adapter struct{}

// Adapter is the Savage firmware-updater adapter.
var Adapter firmware.Adapter = adapter{}

func (adapter) Name() string   { return "Savage" }
func (adapter) TagKey(info plist.Dict) string { return "Savage,Ticket" }

func (adapter) BuildParams(c *session.Context, common, info plist.Dict) plist.Dict {
	params := plist.New()
	params.Merge(common)
	params.Merge(info)
	return ticket.AddSavageTags(params, c.Device.ECID, c.Device.Image4Supported)
}

func (adapter) ComponentName(c *session.Context, info, response plist.Dict) (string, error) {
	return response.RequireString(componentNameKey)
}

// PostProcess prepends a 16-byte header whose bytes 4..7 hold the
// little-endian original payload size, the rest zero (spec.md §4.5).
func (adapter) PostProcess(c *session.Context, info, response plist.Dict, raw []byte) (plist.Dict, error) {
	header := make([]byte, 16)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(raw)))
	out := append(header, raw...)
	return plist.Dict{"FirmwareData": out}, nil
}

func init() {
	firmware.Register("Savage", Adapter)
}
