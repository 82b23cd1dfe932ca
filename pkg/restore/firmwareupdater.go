package restore

import (
	"context"

	"github.com/restoreos/restored/internal/engineerr"
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/firmware"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/ticket"
)

// handleFirmwareUpdaterData implements spec.md §4.5: resolve the named
// co-processor family adapter (routing Savage to Yonkers when
// YonkersDeviceInfo is present), run its common build/request/load/
// post-process pipeline, and wrap the result under FirmwareResponseData.
func handleFirmwareUpdaterData(ctx context.Context, c *session.Context, msg plist.Dict) error {
	updaterName, err := msg.RequireString("MessageArgUpdaterName")
	if err != nil {
		return engineerr.Content("FirmwareUpdaterData", err.Error())
	}
	info, ok := msg.Dict("MessageArgInfo")
	if !ok {
		info = plist.New()
	}

	adapter, err := firmware.Dispatch(updaterName, info)
	if err != nil {
		return engineerr.Content(updaterName, err.Error())
	}

	common := ticket.AddCommonTags(plist.New(), c.BuildIdentity)
	out, err := firmware.Process(ctx, c, adapter, common, info)
	if err != nil {
		return err
	}

	return send(ctx, c, plist.Dict{"FirmwareResponseData": out})
}
