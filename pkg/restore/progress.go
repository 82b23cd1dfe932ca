package restore

import (
	"strconv"

	"github.com/restoreos/restored/internal/logger"
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/session"
)

// Progress buckets the host-facing progress reporter understands (spec.md §4.10).
const (
	BucketVerifyFS       = "VerifyFS"
	BucketFlashFirmware  = "FlashFirmware"
	BucketFlashBaseband  = "FlashBaseband"
	BucketFud            = "Fud"
)

// protocolVersionDriftCutover is the protocol version below which operation
// codes above 35 need +1 compensation (spec.md §4.10, testable property 8).
const protocolVersionDriftCutover = 14
const driftOperationThreshold = 35

// operationBuckets maps a (drift-compensated) operation code to its host
// progress bucket. No third-party table survived the retrieval pack for the
// full on-device operation enum; this maps only the families spec.md names
// explicitly (UPDATE_BASEBAND and UPDATE_IR_MCU_FIRMWARE both bucket to
// FlashBaseband) and leaves everything else unrecognized, per spec.md
// "Unrecognized operations are logged without a progress bucket update."
var operationBuckets = map[uint64]string{
	1:  BucketVerifyFS,
	3:  BucketFlashFirmware,
	11: BucketFlashBaseband, // UPDATE_BASEBAND
	22: BucketFlashBaseband, // UPDATE_IR_MCU_FIRMWARE
	29: BucketFud,
}

// HandleProgress remaps an inbound ProgressMsg to a host progress bucket
// notification, applying the pre-14 protocol drift compensation and
// suppressing duplicate logs for a repeated operation code (spec.md §4.10).
func HandleProgress(c *session.Context, msg plist.Dict) {
	op, ok := msg.Uint("Operation")
	if !ok {
		return
	}
	progress, _ := msg.Int("Progress")

	if c.ProtocolVersion < protocolVersionDriftCutover && op > driftOperationThreshold {
		op++
	}

	if progress < 0 || progress > 100 {
		if c.Progress != nil {
			c.Progress.NotifyText(unrecognizedProgressText(op, progress))
		}
		return
	}

	if last, ok := c.LastProgressOp(); !ok || last != op {
		c.SetLastProgressOp(op)
		logger.Debug("progress operation", "op", op, "progress", progress)
	}

	bucket, ok := operationBuckets[op]
	if !ok {
		logger.Debug("unrecognized progress operation", "op", op)
		return
	}
	if c.Progress != nil {
		c.Progress.Notify(bucket, int(progress))
	}
	if c.Metrics != nil {
		c.Metrics.RecordProgressBucket(bucket, int(progress))
	}
}

func unrecognizedProgressText(op uint64, progress int64) string {
	return "progress out of range for operation " + strconv.FormatUint(op, 10) + ": " + strconv.FormatInt(progress, 10)
}
