// Package se implements the Secure Enclave firmware-updater adapter.
package se

import (
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/firmware"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/ticket"
)

// newSEChipThreshold is the chip-ID cutoff above which a Secure Enclave
// ships a full firmware image ("SE,Firmware") instead of a delta update
// payload ("SE,UpdatePayload"). No SE chip-ID table survived the retrieval
// pack; this threshold is a placeholder decision recorded in DESIGN.md.
const newSEChipThreshold = 0x20000

type adapter struct{}

// Adapter is the Secure Enclave firmware-updater adapter.
var Adapter firmware.Adapter = adapter{}

func (adapter) Name() string   { return "SE" }
func (adapter) TagKey(info plist.Dict) string { return "SE,Ticket" }

func (adapter) BuildParams(c *session.Context, common, info plist.Dict) plist.Dict {
	params := plist.New()
	params.Merge(common)
	params.Merge(info)
	return ticket.AddSETags(params, c.Device.ECID)
}

func (adapter) ComponentName(c *session.Context, info, response plist.Dict) (string, error) {
	if chipID, ok := info.Int("SE,ChipID"); ok && chipID >= newSEChipThreshold {
		return "SE,Firmware", nil
	}
	return "SE,UpdatePayload", nil
}

func (adapter) PostProcess(c *session.Context, info, response plist.Dict, raw []byte) (plist.Dict, error) {
	return plist.Dict{"FirmwareData": raw}, nil
}

func init() {
	firmware.Register("SE", Adapter)
}
