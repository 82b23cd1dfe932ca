package restore

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/restoreos/restored/internal/engineerr"
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/binformat/cpio"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/transport"
)

const bootabilityPrefix = "BootabilityBundle/Restore/Bootability/"
const bootabilityTrustcacheSource = "BootabilityBundle/Restore/Firmware/Bootability.dmg.trustcache"
const bootabilityTrustcacheDest = "Bootability.trustcache"

// secondaryConnectAttempts/secondaryConnectInterval are the 10-attempts,
// 1s-apart secondary-socket connect retry spec.md §5 mandates.
const secondaryConnectAttempts = 10
const secondaryConnectInterval = time.Second

// handleBootabilityBundle implements spec.md §4.7: open a secondary
// connection to the request's DataPort, walk the IPSW for members under
// BootabilityBundle/Restore/Bootability/ (remapping the firmware
// trustcache), and stream each as a cpio odc record terminated by the
// TRAILER!!! sentinel.
func handleBootabilityBundle(ctx context.Context, c *session.Context, msg plist.Dict) error {
	dataPort, ok := msg.Int("DataPort")
	if !ok {
		return engineerr.Content("BootabilityBundle", "missing DataPort")
	}

	conn, err := dialSecondaryWithRetry(ctx, c, int(dataPort))
	if err != nil {
		return engineerr.Transport("BootabilityBundle", err)
	}
	defer conn.Close()

	cw := cpio.NewWriter(conn)

	walkErr := c.IPSW.ListContents(func(member transport.IPSWMember) error {
		dest, include := bootabilityDestName(member.Name)
		if !include {
			return nil
		}
		if member.Symlink && member.Size <= 0 {
			return nil
		}

		data, err := c.IPSW.ExtractToMemory(member.Name)
		if err != nil {
			return err
		}

		hdr := cpio.Header{Mode: member.Mode, Nlink: 1, Size: uint32(len(data)), Name: dest}
		return cw.WriteFile(hdr, data)
	})
	if walkErr != nil {
		return engineerr.Archive("BootabilityBundle", walkErr)
	}

	if err := cw.Close(); err != nil {
		return engineerr.Archive("BootabilityBundle", err)
	}
	return nil
}

func bootabilityDestName(name string) (string, bool) {
	if name == bootabilityTrustcacheSource {
		return bootabilityTrustcacheDest, true
	}
	if strings.HasPrefix(name, bootabilityPrefix) {
		return strings.TrimPrefix(name, bootabilityPrefix), true
	}
	return "", false
}

func dialSecondaryWithRetry(ctx context.Context, c *session.Context, dataPort int) (transport.SecondaryConn, error) {
	var conn transport.SecondaryConn
	op := func() error {
		dialed, err := c.Secondary.DialSecondary(ctx, dataPort)
		if err != nil {
			return err
		}
		conn = dialed
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(secondaryConnectInterval), secondaryConnectAttempts-1)
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}
	return conn, nil
}
