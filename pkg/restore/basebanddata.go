package restore

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/restoreos/restored/internal/engineerr"
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/baseband"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/ticket"
)

const basebandFirmwareComponent = "BasebandFirmware"

// handleBasebandData implements spec.md §4.6: acquire (or reuse the cached)
// baseband ticket, extract the baseband archive to a tempfile, re-sign it
// in place via pkg/baseband, and reply with the signed bytes. The tempfile
// always uses os.CreateTemp rather than a udid-derived name, which resolves
// spec.md's "filename composition" open question (path-traversal risk from
// an untrusted udid) by construction instead of by validation.
func handleBasebandData(ctx context.Context, c *session.Context, msg plist.Dict) error {
	nonce, _ := msg.Data("Nonce")

	bbtss, cached := c.BBTSS()
	if !cached {
		if len(nonce) == 0 {
			return engineerr.Ticket("BasebandData", fmt.Errorf("no cached baseband ticket and no nonce to request one"))
		}
		chipID, _ := msg.Data("ChipID")
		certID, _ := msg.Data("CertID")
		serialNo, _ := msg.Data("ChipSerialNo")

		params := ticket.AddCommonTags(plist.New(), c.BuildIdentity)
		params = ticket.AddBasebandTags(params, c.BuildIdentity, c.Device.ECID, chipID, certID, serialNo, nonce)

		start := time.Now()
		resp, err := ticket.RequestTicket(ctx, c.TSSClient, params, c.TSSURL)
		if c.Metrics != nil {
			c.Metrics.RecordTSSRequest("BB", time.Since(start), err == nil)
		}
		if err != nil {
			return engineerr.Ticket("BasebandData", err)
		}
		c.SetBBTSS(resp)
		bbtss = resp
	}

	archivePath, ok := c.BuildIdentity.Path(basebandFirmwareComponent)
	if !ok {
		return engineerr.Content(basebandFirmwareComponent, "component not present in build identity manifest")
	}

	tmp, err := os.CreateTemp("", "bbfw_*.tmp")
	if err != nil {
		return engineerr.Archive(archivePath, fmt.Errorf("create baseband tempfile: %w", err))
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.IPSW.ExtractToFile(archivePath, tmpPath); err != nil {
		return engineerr.Archive(archivePath, err)
	}

	signErr := baseband.Sign(tmpPath, bbtss.Raw, bbtss, nonce)
	if c.Metrics != nil {
		c.Metrics.RecordBasebandSign(cached, signErr == nil)
	}
	if signErr != nil {
		return signErr
	}

	signed, err := os.ReadFile(tmpPath)
	if err != nil {
		return engineerr.Archive(tmpPath, fmt.Errorf("read signed baseband archive: %w", err))
	}

	return send(ctx, c, plist.Dict{"BasebandData": signed})
}
