// Package veridian implements the Veridian (BMU) firmware-updater adapter.
package veridian

import (
	"fmt"

	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/firmware"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/ticket"
)

const componentName = "BMU,FirmwareMap"

type adapter struct{}

// Adapter is the Veridian firmware-updater adapter.
var Adapter firmware.Adapter = adapter{}

func (adapter) Name() string                           { return "Veridian" }
func (adapter) TagKey(info plist.Dict) string           { return "BMU,Ticket" }

func (adapter) BuildParams(c *session.Context, common, info plist.Dict) plist.Dict {
	params := plist.New()
	params.Merge(common)
	params.Merge(info)
	return ticket.AddVeridianTags(params, c.Device.ECID, c.Device.Image4Supported)
}

func (adapter) ComponentName(c *session.Context, info, response plist.Dict) (string, error) {
	return componentName, nil
}

// PostProcess parses the payload as a property list, adds fw_map_digest
// from the build identity's manifest digest for this component, and
// re-serializes as binary plist (spec.md §4.5).
func (adapter) PostProcess(c *session.Context, info, response plist.Dict, raw []byte) (plist.Dict, error) {
	fw, err := plist.Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("veridian firmware map: %w", err)
	}

	digest, ok := c.BuildIdentity.Digest(componentName)
	if !ok {
		return nil, fmt.Errorf("veridian: no manifest digest for %s", componentName)
	}
	fw["fw_map_digest"] = digest

	out, err := plist.Marshal(fw, plist.FormatBinary)
	if err != nil {
		return nil, fmt.Errorf("veridian firmware map re-encode: %w", err)
	}
	return plist.Dict{"FirmwareData": out}, nil
}

func init() {
	firmware.Register("T200", Adapter)
}
