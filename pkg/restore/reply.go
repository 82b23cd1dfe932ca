package restore

import (
	"context"

	"github.com/restoreos/restored/internal/engineerr"
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/session"
)

// send writes reply to the daemon, wrapping a transport failure as an
// engineerr.Error so the dispatcher's fatal/non-fatal classification applies
// uniformly to every handler.
func send(ctx context.Context, c *session.Context, reply plist.Dict) error {
	if err := c.Transport.Send(ctx, reply); err != nil {
		return engineerr.Transport("send reply", err)
	}
	return nil
}
