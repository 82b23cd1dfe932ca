package restore

import (
	"context"
	"fmt"

	"github.com/restoreos/restored/internal/engineerr"
	"github.com/restoreos/restored/internal/logger"
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/transport"
)

const restoredServiceType = "com.apple.mobile.restored"

// SupportedMessageTypes lists every MsgType the main loop understands
// (spec.md §4.1), included verbatim in the start-restore options.
func SupportedMessageTypes() []string {
	return []string{
		MsgTypeDataRequest,
		MsgTypeProgress,
		MsgTypeStatus,
		MsgTypeCheckpoint,
		MsgTypePreviousRestoreLog,
		MsgTypeBBUpdateStatus,
		MsgTypeBasebandUpdaterOutput,
	}
}

// Run opens the transport, emits the start-restore options, and drives the
// message loop until a terminal status or a fatal error sets c.Flags.Quit
// (spec.md §4.1). Exactly one of macOS/mobile should be non-nil, matching
// c.BuildIdentity's variant; cleanup (closing the transport) is
// unconditional via defer.
func Run(ctx context.Context, c *session.Context, macOS *session.MacOSOptions, mobile *session.MobileOptions) error {
	if err := c.Transport.Open(ctx, c.Device.UDID); err != nil {
		return engineerr.Transport("open", err)
	}
	defer c.Transport.Close()

	if c.Metrics != nil {
		c.Metrics.SetSessionActive(true)
		defer c.Metrics.SetSessionActive(false)
	}

	dev, err := c.Transport.QueryType(ctx)
	if err != nil {
		return engineerr.Transport("query type", err)
	}
	if dev.ServiceType != restoredServiceType {
		return engineerr.Transport("query type", fmt.Errorf("unexpected service type %q", dev.ServiceType))
	}
	c.ProtocolVersion = dev.ProtocolVersion

	if _, err := c.Transport.QueryValue(ctx, "HardwareInfo"); err != nil {
		logger.Warn("HardwareInfo query failed", "error", err)
	}
	if _, err := c.Transport.QueryValue(ctx, "SavedDebugInfo"); err != nil {
		logger.Warn("SavedDebugInfo query failed", "error", err)
	}

	c.PrimeBBTSSFromAppTicket()

	options := session.BuildStartRestoreOptions(c, SupportedDataTypes(), SupportedMessageTypes(), macOS, mobile)
	if err := c.Transport.StartRestore(ctx, options, c.ProtocolVersion); err != nil {
		return engineerr.Transport("start restore", err)
	}

	for !c.Flags.Quit {
		msg, err := c.Transport.Receive(ctx)
		if err != nil {
			if err == transport.ErrTimeout {
				continue
			}
			c.RecordError(engineerr.Transport("receive", err), true)
			break
		}
		if stop := handleMessage(ctx, c, msg); stop {
			break
		}
	}

	return c.FirstError
}

// handleMessage processes one inbound message and reports whether the main
// loop should stop.
func handleMessage(ctx context.Context, c *session.Context, msg plist.Dict) bool {
	msgType, ok := msg.String("MsgType")
	if !ok {
		logger.Warn("message missing MsgType")
		return false
	}

	switch msgType {
	case MsgTypeDataRequest:
		if err := Dispatch(ctx, c, msg); err != nil {
			c.RecordError(err, engineerr.IsFatal(err))
		}
	case MsgTypeProgress:
		HandleProgress(c, msg)
	case MsgTypeStatus:
		return handleStatus(ctx, c, msg)
	case MsgTypeCheckpoint, MsgTypePreviousRestoreLog, MsgTypeBBUpdateStatus, MsgTypeBasebandUpdaterOutput:
		logger.Debug("informational message", "msgType", msgType)
	default:
		logger.Warn("unknown message type", "msgType", msgType)
	}
	return false
}

// handleStatus implements spec.md §4.1's terminal-status handling: status 0
// sends ReceivedFinalStatusMsg and ends the loop in success; any other
// status records the failure and ends the loop too, since a StatusMsg is
// always terminal regardless of its code.
func handleStatus(ctx context.Context, c *session.Context, msg plist.Dict) bool {
	status, _ := msg.Uint("Status")
	if status == StatusFinished {
		if err := send(ctx, c, plist.Dict{"MsgType": MsgTypeReceivedFinalStatus}); err != nil {
			c.RecordError(err, true)
		}
		return true
	}
	logger.Error("restore session failed", "status", status)
	c.RecordError(engineerr.Content("StatusMsg", fmt.Sprintf("status %d", status)), true)
	return true
}
