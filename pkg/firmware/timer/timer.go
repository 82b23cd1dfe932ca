// Package timer implements the Timer (USB-C retimer) firmware-updater
// adapter. Unlike the other families, its component name, ticket key, and
// TSS tags are all suffixed by a per-request hardware tag mined from
// MessageArgInfo.InfoArray[0].HardwareID (spec.md §4.5).
package timer

import (
	"fmt"

	"github.com/restoreos/restored/internal/logger"
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/binformat/ftab"
	"github.com/restoreos/restored/pkg/component"
	"github.com/restoreos/restored/pkg/firmware"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/ticket"
)

const primaryTag = "rkos"
const patchTag = "rrko"

type adapter struct{}

// Adapter is the Timer firmware-updater adapter.
var Adapter firmware.Adapter = adapter{}

func (adapter) Name() string { return "Timer" }

func (adapter) TagKey(info plist.Dict) string {
	return fmt.Sprintf("Timer,Ticket,%s", hardwareTag(info))
}

func (adapter) BuildParams(c *session.Context, common, info plist.Dict) plist.Dict {
	params := plist.New()
	params.Merge(common)
	params.Merge(info)

	tag := hardwareTag(info)
	hw := hardwareDict(info)
	return ticket.AddTimerTags(params, c.Device.ECID, c.Device.Image4Supported, tag, hw)
}

func (adapter) ComponentName(c *session.Context, info, response plist.Dict) (string, error) {
	return fmt.Sprintf("Timer,RTKitOS,%s", hardwareTag(info)), nil
}

// PostProcess mirrors Rose: parse the primary payload as an FTAB, splice in
// the matching Timer,RestoreRTKitOS,<tag> component's "rrko" entry if the
// build identity has one (spec.md §4.5).
func (adapter) PostProcess(c *session.Context, info, response plist.Dict, raw []byte) (plist.Dict, error) {
	tag := hardwareTag(info)
	primary, err := ftab.Parse(raw)
	if err != nil {
		return nil, err
	}
	if primary.Tag != primaryTag {
		logger.Warn("timer firmware ftab tag mismatch", "tag", tag, "expected", primaryTag, "got", primary.Tag)
	}

	restoreComponent := fmt.Sprintf("Timer,RestoreRTKitOS,%s", tag)
	if _, ok := c.BuildIdentity.Path(restoreComponent); ok {
		restoreRaw, err := component.Load(c, restoreComponent)
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

func hardwareTag(info plist.Dict) string {
	if hw := hardwareDict(info); hw != nil {
		if tag, ok := hw.String("Tag"); ok {
			return tag
		}
	}
	return "0"
}

func hardwareDict(info plist.Dict) plist.Dict {
	arr, ok := info.Array("InfoArray")
	if !ok || len(arr) == 0 {
		return nil
	}
	first, ok := arr[0].(plist.Dict)
	if !ok {
		if m, ok := arr[0].(map[string]any); ok {
			first = plist.Dict(m)
		} else {
			return nil
		}
	}
	hw, ok := first.Dict("HardwareID")
	if !ok {
		return nil
	}
	return hw
}

func init() {
	firmware.Register("AppleTypeCRetimer", Adapter)
}
