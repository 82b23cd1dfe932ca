// Package transport declares the external collaborators the restore session
// engine dialogs with, but does not implement: transport to the on-device
// restore daemon, the IPSW archive reader, the TSS ticket-server client, the
// ASR image-restore protocol, and the personalize_component primitive. Per
// spec.md §1, each is out of scope for this engine and is specified only at
// its interface here; production binaries supply concrete implementations
// (pairing/discovery, an IPSW zip reader, an HTTP TSS client, etc.) and wire
// them into pkg/session.Context.
package transport

import (
	"context"
	"errors"
	"time"

	"github.com/restoreos/restored/internal/plist"
)

// ErrTimeout is returned by Receive when no message arrived before the
// transport's own read deadline. A single timeout is benign (spec.md §7);
// it is up to the caller to decide whether repeated timeouts are fatal.
var ErrTimeout = errors.New("transport: receive timeout")

// Device identifies the restore daemon the engine is talking to.
type Device struct {
	ProtocolVersion int
	ServiceType     string // expected "com.apple.mobile.restored"
}

// Transport is the property-list framed RPC channel to restored.
type Transport interface {
	// Open discovers and connects to the device identified by udid.
	Open(ctx context.Context, udid string) error
	// QueryType returns the reported lockdown service type and restore
	// protocol version.
	QueryType(ctx context.Context) (Device, error)
	// QueryValue fetches a single lockdown value (e.g. HardwareInfo).
	QueryValue(ctx context.Context, key string) (plist.Dict, error)
	// GetValue fetches a single top-level lockdown key.
	GetValue(ctx context.Context, key string) (any, error)
	// Send writes a dictionary to the daemon.
	Send(ctx context.Context, msg plist.Dict) error
	// Receive blocks for the next inbound message, or returns ErrTimeout.
	Receive(ctx context.Context) (plist.Dict, error)
	// StartRestore sends the start-restore options and protocol version.
	StartRestore(ctx context.Context, options plist.Dict, protocolVersion int) error
	// Reboot asks the device to reboot out of restore mode.
	Reboot(ctx context.Context) error
	// Close releases the underlying connection.
	Close() error
}

// SecondaryDialer opens the secondary data connections used for
// BootabilityBundle streaming and baseband updater output (spec.md §4.7,
// §6). Implementations retry internally per spec.md §5 (10 attempts, 1s
// apart) only when DialSecondary is asked to; the engine itself also
// retries at the call site so either layer may own it depending on the
// concrete transport.
type SecondaryDialer interface {
	DialSecondary(ctx context.Context, dataPort int) (SecondaryConn, error)
}

// SecondaryConn is a raw byte-stream connection opened out-of-band from the
// main message loop (e.g. for CPIO streaming).
type SecondaryConn interface {
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
	Close() error
}

// IPSWMember describes one entry returned while walking an IPSW.
type IPSWMember struct {
	Name    string
	Size    int64
	Symlink bool
	Mode    uint32
}

// IPSW is a read-only accessor over an Apple firmware archive (a zip).
type IPSW interface {
	FileExists(path string) bool
	ExtractToMemory(path string) ([]byte, error)
	ExtractToFile(path, outPath string) error
	ListContents(fn func(member IPSWMember) error) error
}

// TSSClient issues HTTP(S) requests to the ticket-signing service.
type TSSClient interface {
	RequestSend(ctx context.Context, request plist.Dict, url string) (plist.Dict, error)
}

// Personalizer wraps a raw payload and a ticket into the device-expected
// container (IMG4 or legacy).
type Personalizer interface {
	PersonalizeComponent(name string, payload []byte, ticket plist.Dict) ([]byte, error)
}

// ProgressReporter receives host-facing progress notifications (spec.md
// §4.10). Implementations render a progress bar, log a line, or both.
type ProgressReporter interface {
	Notify(bucket string, progress int)
	NotifyText(text string)
}

// ASRStreamer streams a disk image to the device-side image-restore service
// and reports progress while doing so.
type ASRStreamer interface {
	StreamImage(ctx context.Context, dataPort int, image IPSWMember, source func() ([]byte, error), progress ProgressReporter) error
}

// ConnectTimeout is the default timeout used when dialing secondary data
// connections (spec.md §5).
const ConnectTimeout = 5 * time.Second
