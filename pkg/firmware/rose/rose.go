// Package rose implements the Rose (RTKitOS) firmware-updater adapter.
package rose

import (
	"github.com/restoreos/restored/internal/logger"
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/binformat/ftab"
	"github.com/restoreos/restored/pkg/component"
	"github.com/restoreos/restored/pkg/firmware"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/ticket"
)

const (
	componentName       = "Rap,RTKitOS"
	restoreComponentName = "Rap,RestoreRTKitOS"
	primaryTag           = "rkos"
	patchTag             = "rrko"
)

type adapter struct{}

// Adapter is the Rose firmware-updater adapter.
var Adapter firmware.Adapter = adapter{}

func (adapter) Name() string   { return "Rose" }
func (adapter) TagKey(info plist.Dict) string { return "Rap,Ticket" }

func (adapter) BuildParams(c *session.Context, common, info plist.Dict) plist.Dict {
	params := plist.New()
	params.Merge(common)
	params.Merge(info)
	return ticket.AddRoseTags(params, c.Device.ECID, c.Device.Image4Supported)
}

func (adapter) ComponentName(c *session.Context, info, response plist.Dict) (string, error) {
	return componentName, nil
}

// PostProcess parses the primary payload as an FTAB (expecting tag "rkos",
// a mismatch only warns), and if the build identity names a matching
// "Rap,RestoreRTKitOS" component, splices its "rrko" entry into the primary
// table (spec.md §4.5).
func (adapter) PostProcess(c *session.Context, info, response plist.Dict, raw []byte) (plist.Dict, error) {
	primary, err := ftab.Parse(raw)
	if err != nil {
		return nil, err
	}
	if primary.Tag != primaryTag {
		logger.Warn("rose firmware ftab tag mismatch", "expected", primaryTag, "got", primary.Tag)
	}

	if _, ok := c.BuildIdentity.Path(restoreComponentName); ok {
		restoreRaw, err := component.Load(c, restoreComponentName)
		if err == nil {
			restoreTab, err := ftab.Parse(restoreRaw)
			if err == nil {
				if data, ok := restoreTab.GetEntryPtr(patchTag); ok {
					primary.AddEntry(patchTag, data)
				}
			}
		}
	}

	return plist.Dict{"FirmwareData": primary.Write()}, nil
}

func init() {
	firmware.Register("Rose", Adapter)
}
