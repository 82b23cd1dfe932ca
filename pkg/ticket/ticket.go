// Package ticket models the TSS ticket: the signed dictionary returned by
// the ticket-signing service, and the parameter-dictionary builders used to
// request one. A Ticket is acquired once per class (Ap, Recovery,
// LocalPolicy, BB, SE, Savage, Yonkers, Rose, Veridian, TCON, Timer) and is
// immutable once stored on the session context.
package ticket

import (
	"context"
	"fmt"

	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/transport"
)

// Ticket is a signed response from the ticket-signing service: a dictionary
// of per-component "<Name>-Blob" entries, plus optionally an ApImg4Ticket
// (IMG4-era devices) or an APTicket (legacy).
type Ticket struct {
	Raw plist.Dict
}

// Wrap adapts a raw TSS response dictionary into a Ticket.
func Wrap(raw plist.Dict) Ticket { return Ticket{Raw: raw} }

// IsZero reports whether the ticket carries no data at all.
func (t Ticket) IsZero() bool { return len(t.Raw) == 0 }

// Blob returns the "<component>-Blob" entry.
func (t Ticket) Blob(component string) ([]byte, bool) {
	return t.Raw.Data(component + "-Blob")
}

// ApImg4Ticket returns the IMG4-era root ticket, if present.
func (t Ticket) ApImg4Ticket() ([]byte, bool) { return t.Raw.Data("ApImg4Ticket") }

// APTicket returns the legacy root ticket, if present.
func (t Ticket) APTicket() ([]byte, bool) { return t.Raw.Data("APTicket") }

// BBTicket returns the baseband ticket blob, if present. A session's main
// `tss` may carry a copy that gets pre-populated into `bbtss` (spec.md §4.1).
func (t Ticket) BBTicket() ([]byte, bool) { return t.Raw.Data("BBTicket") }

// RequestTicket sends params to the ticket server at url via client and
// wraps the response.
func RequestTicket(ctx context.Context, client transport.TSSClient, params plist.Dict, url string) (Ticket, error) {
	resp, err := client.RequestSend(ctx, params, url)
	if err != nil {
		return Ticket{}, fmt.Errorf("tss request: %w", err)
	}
	return Wrap(resp), nil
}
