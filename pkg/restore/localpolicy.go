package restore

import (
	"context"

	"github.com/restoreos/restored/internal/engineerr"
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/component"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/ticket"
)

const localPolicyComponent = "Ap,LocalPolicy"
const localPolicyTemplate = "lpol_file"

// handleLocalPolicy implements spec.md §4.2's RecoveryOSLocalPolicy handler:
// build Ap,LocalPolicy from the embedded lpol_file template, personalized
// with a freshly obtained local-policy ticket (stored on the session
// context for reuse, mirroring AppTicket/RecoveryOSTicket).
func handleLocalPolicy(ctx context.Context, c *session.Context, msg plist.Dict) error {
	raw, err := component.Extract(c, localPolicyTemplate)
	if err != nil {
		return err
	}

	params := ticket.AddCommonTags(plist.New(), c.BuildIdentity)
	params["ApECID"] = c.Device.ECID

	tkt, err := ticket.RequestTicket(ctx, c.TSSClient, params, c.TSSURL)
	if err != nil {
		return engineerr.Ticket(localPolicyComponent, err)
	}
	c.LocalPolicyTicket = tkt

	out, err := component.Personalize(c, localPolicyComponent, raw, tkt)
	if err != nil {
		return err
	}

	return send(ctx, c, plist.Dict{"RecoveryOSLocalPolicy": out})
}
