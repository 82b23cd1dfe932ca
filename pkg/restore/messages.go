// Package restore implements the restore session engine proper: the
// message-driven event loop (spec.md §4.1), the data-request dispatcher
// (§4.2), and every handler it routes to. It is the package that ties
// pkg/session, pkg/ticket, pkg/component, pkg/firmware, pkg/baseband and
// pkg/binformat together into the end-to-end protocol spec.md describes.
package restore

// MsgType values the restore daemon sends (spec.md §6).
const (
	MsgTypeDataRequest             = "DataRequestMsg"
	MsgTypeProgress                = "ProgressMsg"
	MsgTypeStatus                  = "StatusMsg"
	MsgTypeCheckpoint               = "CheckpointMsg"
	MsgTypePreviousRestoreLog       = "PreviousRestoreLogMsg"
	MsgTypeBBUpdateStatus           = "BBUpdateStatusMsg"
	MsgTypeBasebandUpdaterOutput    = "BasebandUpdaterOutputData"
	MsgTypeReceivedFinalStatus      = "ReceivedFinalStatusMsg"
)

// DataType values the dispatcher routes on (spec.md §4.2).
const (
	DataTypeSystemImage                  = "SystemImageData"
	DataTypeRecoveryOSASRImage           = "RecoveryOSASRImage"
	DataTypeBuildIdentityDict            = "BuildIdentityDict"
	DataTypePersonalizedBootObjectV3     = "PersonalizedBootObjectV3"
	DataTypeSourceBootObjectV4           = "SourceBootObjectV4"
	DataTypeRecoveryOSLocalPolicy        = "RecoveryOSLocalPolicy"
	DataTypeRootTicket                   = "RootTicket"
	DataTypeRecoveryOSRootTicketData     = "RecoveryOSRootTicketData"
	DataTypeKernelCache                  = "KernelCache"
	DataTypeDeviceTree                   = "DeviceTree"
	DataTypeSystemImageRootHash          = "SystemImageRootHash"
	DataTypeSystemImageCanonicalMetadata = "SystemImageCanonicalMetadata"
	DataTypeNORData                      = "NORData"
	DataTypeBasebandData                 = "BasebandData"
	DataTypeFDRTrustData                 = "FDRTrustData"
	DataTypeFUDData                      = "FUDData"
	DataTypePersonalizedData             = "PersonalizedData"
	DataTypeEANData                      = "EANData"
	DataTypeFirmwareUpdaterData          = "FirmwareUpdaterData"
	DataTypeBootabilityBundle            = "BootabilityBundle"
)

// Status codes (selected, spec.md §6).
const (
	StatusFinished            = 0
	StatusDiskFailure         = 6
	StatusFail                = 14
	StatusMountFailed         = 27
	StatusSEPLoadFailed       = 51
	StatusFDRRecoverFailed    = 53
	StatusBasebandFailed      = 1015
	StatusVerificationError   = 0xFFFFFFFFFFFFFFFF
)

// pseudoComponent names §4.2 carries alongside real build-identity
// components for PersonalizedBootObjectV3/SourceBootObjectV4.
const (
	PseudoGlobalManifest = "__GlobalManifest__"
	PseudoRestoreVersion = "__RestoreVersion__"
	PseudoSystemVersion  = "__SystemVersion__"
)

// ChunkSize is the FileData chunk size used by the V3/V4 boot-object replies
// (spec.md §4.2, testable property 9).
const ChunkSize = 8192
