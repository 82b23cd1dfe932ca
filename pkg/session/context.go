// Package session holds the restore session's shared mutable state: the
// single context value threaded through every data-request handler, as
// spec.md §9 asks for ("package as a single context value threaded through
// handlers; initialize once at session start; cache writes occur under the
// cooperative main loop only, removing lock requirements"). Because the
// engine runs as a single-threaded cooperative event loop (spec.md §5), no
// package-level locking is needed around the cache fields below — only the
// main dispatch loop ever writes them, and it never writes concurrently
// with itself.
package session

import (
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/identity"
	"github.com/restoreos/restored/pkg/metrics"
	"github.com/restoreos/restored/pkg/ticket"
	"github.com/restoreos/restored/pkg/transport"
)

// Flags mirrors the restore flags a caller supplies up front (spec.md §3).
type Flags struct {
	Erase        bool
	Custom       bool
	Exclude      bool
	IgnoreErrors bool
	Debug        bool
	Quit         bool
}

// Device carries the identity fields the orchestrator records from
// HardwareInfo/SavedDebugInfo at session open (spec.md §4.1).
type Device struct {
	ECID           uint64
	UDID           string
	Serial         string
	HardwareModel  string
	Image4Supported bool
}

// Context is the session's shared state. Handlers receive a *Context and
// read/write its cache fields; the orchestrator owns its lifetime.
type Context struct {
	Device Device
	Flags  Flags

	ProtocolVersion int
	TSSURL          string

	IPSW          transport.IPSW
	Transport     transport.Transport
	TSSClient     transport.TSSClient
	Personalizer  transport.Personalizer
	Secondary     transport.SecondaryDialer
	Progress      transport.ProgressReporter
	ASR           transport.ASRStreamer

	// Metrics is optional; a nil value disables collection with zero
	// overhead (pkg/metrics.EngineMetrics methods are nil-receiver safe).
	Metrics metrics.EngineMetrics

	BuildManifest  plist.Dict        // the whole BuildManifest.plist
	BuildIdentity  identity.BuildIdentity

	// Tickets. Each is written at most once by the dispatcher, then
	// read-only for the remainder of the session (spec.md §5).
	AppTicket        ticket.Ticket
	RecoveryOSTicket ticket.Ticket
	LocalPolicyTicket ticket.Ticket

	bbtss    ticket.Ticket
	bbtssSet bool

	// lastProgressOp tracks the last-logged progress operation code so the
	// progress-bucket remapper can suppress duplicate log lines (spec.md
	// §4.10). hasLastProgressOp is false until the first ProgressMsg.
	lastProgressOp    uint64
	hasLastProgressOp bool

	// FirstError is the first fatal error recorded by the dispatcher; it
	// becomes the orchestrator's returned error on exit (spec.md §7).
	FirstError error
}

// LastProgressOp returns the most recently logged progress operation code
// and whether one has been recorded yet.
func (c *Context) LastProgressOp() (uint64, bool) {
	return c.lastProgressOp, c.hasLastProgressOp
}

// SetLastProgressOp records op as the most recently logged progress
// operation code.
func (c *Context) SetLastProgressOp(op uint64) {
	c.lastProgressOp = op
	c.hasLastProgressOp = true
}

// New creates a Context. Collaborators (Transport, IPSW, TSSClient,
// Personalizer) must be set by the caller before Open is invoked.
func New(device Device, flags Flags, tssURL string) *Context {
	return &Context{Device: device, Flags: flags, TSSURL: tssURL}
}

// BBTSS returns the cached baseband ticket and whether one has been
// obtained yet (spec.md §4.6's "idempotent cache" property).
func (c *Context) BBTSS() (ticket.Ticket, bool) {
	return c.bbtss, c.bbtssSet
}

// SetBBTSS caches the baseband ticket after the first successful
// round-trip. Only called from the cooperative main loop.
func (c *Context) SetBBTSS(t ticket.Ticket) {
	c.bbtss = t
	c.bbtssSet = true
}

// PrimeBBTSSFromAppTicket pre-populates bbtss with the whole main `tss`
// ticket (AppTicket) when that ticket carries a BBTicket entry (spec.md
// §4.1, at session open).
func (c *Context) PrimeBBTSSFromAppTicket() {
	if _, ok := c.AppTicket.BBTicket(); ok {
		c.SetBBTSS(c.AppTicket)
	}
}

// RecordError stores the first fatal error seen this session and, unless
// IgnoreErrors masks it, requests that the main loop stop at its next
// iteration (spec.md §7).
func (c *Context) RecordError(err error, fatal bool) {
	if err == nil {
		return
	}
	if c.FirstError == nil {
		c.FirstError = err
	}
	if fatal && !c.Flags.IgnoreErrors {
		c.Flags.Quit = true
	}
}
