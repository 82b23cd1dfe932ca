package logger

// Standard field keys for structured logging across the restore session
// engine. Using these consistently keeps log lines greppable across
// handlers, adapters and the orchestrator.
const (
	KeyECID      = "ecid"
	KeyUDID      = "udid"
	KeySerial    = "serial"
	KeyComponent = "component"
	KeyDataType  = "data_type"
	KeyMsgType   = "msg_type"
	KeyStatus    = "status"
	KeyOperation = "operation"
	KeyProgress  = "progress"
	KeyFamily    = "family"
	KeyBytes     = "bytes"
	KeyPath      = "path"
	KeyError     = "error"
)
