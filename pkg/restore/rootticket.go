package restore

import (
	"context"
	"fmt"

	"github.com/restoreos/restored/internal/engineerr"
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/session"
)

// handleRootTicket implements spec.md §4.2's RootTicket handler: an
// explicit RootTicketData argument wins, else ApImg4Ticket (image4), else
// the legacy APTicket, both from the session's application ticket.
func handleRootTicket(ctx context.Context, c *session.Context, msg plist.Dict) error {
	if blob, ok := msg.Data("RootTicketData"); ok {
		return send(ctx, c, plist.Dict{"RootTicketData": blob})
	}
	if blob, ok := c.AppTicket.ApImg4Ticket(); ok {
		return send(ctx, c, plist.Dict{"RootTicketData": blob})
	}
	if blob, ok := c.AppTicket.APTicket(); ok {
		return send(ctx, c, plist.Dict{"RootTicketData": blob})
	}
	return engineerr.Ticket("RootTicket", fmt.Errorf("no root ticket available"))
}

// handleRecoveryOSRootTicket implements spec.md §4.2's
// RecoveryOSRootTicketData handler, sourced from the recovery-OS ticket.
func handleRecoveryOSRootTicket(ctx context.Context, c *session.Context, msg plist.Dict) error {
	if blob, ok := c.RecoveryOSTicket.Raw.Data("RecoveryOSRootTicketData"); ok {
		return send(ctx, c, plist.Dict{"RecoveryOSRootTicketData": blob})
	}
	if blob, ok := c.RecoveryOSTicket.Raw.Data("RootTicketData"); ok {
		return send(ctx, c, plist.Dict{"RecoveryOSRootTicketData": blob})
	}
	return engineerr.Ticket("RecoveryOSRootTicketData", fmt.Errorf("no recovery-OS root ticket available"))
}
