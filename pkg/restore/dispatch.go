package restore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/restoreos/restored/internal/engineerr"
	"github.com/restoreos/restored/internal/logger"
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/transport"
)

// Handler answers one DataRequestMsg. It sends its own reply — a single
// dict, a multi-chunk FileData stream, or a raw ASR handoff — through
// c.Transport rather than returning one, since the reply shapes differ too
// much to unify behind a single return type (spec.md §4.2).
type Handler func(ctx context.Context, c *session.Context, msg plist.Dict) error

// dispatchTable is the complete DataType → handler map (spec.md §4.2).
var dispatchTable = map[string]Handler{
	DataTypeBuildIdentityDict:            handleBuildIdentityDict,
	DataTypePersonalizedBootObjectV3:     handleBootObjectV3,
	DataTypeSourceBootObjectV4:           handleBootObjectV4,
	DataTypeRecoveryOSLocalPolicy:        handleLocalPolicy,
	DataTypeRootTicket:                   handleRootTicket,
	DataTypeRecoveryOSRootTicketData:     handleRecoveryOSRootTicket,
	DataTypeKernelCache:                  singleShotHandler(DataTypeKernelCache, "KernelCache"),
	DataTypeDeviceTree:                   singleShotHandler(DataTypeDeviceTree, "DeviceTree"),
	DataTypeSystemImageRootHash:          singleShotHandler(DataTypeSystemImageRootHash, "SystemVolume"),
	DataTypeSystemImageCanonicalMetadata: singleShotHandler(DataTypeSystemImageCanonicalMetadata, "Ap,SystemVolumeCanonicalMetadata"),
	DataTypeNORData:                      handleNORData,
	DataTypeBasebandData:                 handleBasebandData,
	DataTypeFDRTrustData:                 handleFDRTrustData,
	DataTypeFUDData:                      imageFamilyHandler(fudImageFamily),
	DataTypePersonalizedData:             imageFamilyHandler(personalizedImageFamily),
	DataTypeEANData:                      imageFamilyHandler(eanImageFamily),
	DataTypeFirmwareUpdaterData:          handleFirmwareUpdaterData,
	DataTypeBootabilityBundle:            handleBootabilityBundle,
	DataTypeSystemImage:                  handleASRStream,
	DataTypeRecoveryOSASRImage:           handleASRStream,
}

// Dispatch routes one inbound DataRequestMsg's arguments to its handler.
// An unrecognized DataType is logged and ignored (spec.md §4.2's "non-fatal").
func Dispatch(ctx context.Context, c *session.Context, msg plist.Dict) error {
	dataType, ok := msg.String("DataType")
	if !ok {
		logger.Warn("data request missing DataType")
		return nil
	}
	handler, ok := dispatchTable[dataType]
	if !ok {
		logger.Warn("unknown data request type", "dataType", dataType)
		return nil
	}

	start := time.Now()
	err := handler(ctx, c, msg)
	if c.Metrics != nil {
		c.Metrics.RecordDataRequest(dataType, time.Since(start), errorCodeOf(err))
	}
	return err
}

// errorCodeOf returns a short metrics label for err: its engineerr.Kind if
// it classifies as one, "error" for any other non-nil error, or "" on
// success.
func errorCodeOf(err error) string {
	if err == nil {
		return ""
	}
	var e *engineerr.Error
	if errors.As(err, &e) {
		return e.Kind.String()
	}
	return "error"
}

// SupportedDataTypes lists every DataType this dispatcher handles, for the
// start-restore options dictionary (spec.md §4.1).
func SupportedDataTypes() []string {
	names := make([]string, 0, len(dispatchTable))
	for name := range dispatchTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// handleASRStream hands SystemImageData/RecoveryOSASRImage off to the
// session's ASR collaborator instead of producing a dict reply (spec.md
// §4.2, §4.8): the core contract is external, but the engine still has to
// locate the named member and invoke it with a progress callback.
func handleASRStream(ctx context.Context, c *session.Context, msg plist.Dict) error {
	dataType, _ := msg.String("DataType")
	name, ok := msg.String("ImageName")
	if !ok {
		return engineerr.Content(dataType, "missing ImageName")
	}
	dataPort, ok := msg.Int("DataPort")
	if !ok {
		return engineerr.Content(dataType, "missing DataPort")
	}
	if c.ASR == nil {
		return engineerr.Transport(dataType, fmt.Errorf("no ASR streamer configured"))
	}

	var member transport.IPSWMember
	found := false
	if err := c.IPSW.ListContents(func(m transport.IPSWMember) error {
		if m.Name == name {
			member, found = m, true
		}
		return nil
	}); err != nil {
		return engineerr.Archive(name, err)
	}
	if !found {
		return engineerr.Content(name, "component file missing from IPSW")
	}

	source := func() ([]byte, error) { return c.IPSW.ExtractToMemory(name) }
	if err := c.ASR.StreamImage(ctx, int(dataPort), member, source, c.Progress); err != nil {
		return engineerr.Transport(dataType, err)
	}
	return nil
}
