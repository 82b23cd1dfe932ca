package session

import (
	"github.com/google/uuid"

	"github.com/restoreos/restored/internal/plist"
)

// MacOSOptions carries the extra start-restore keys a macOS-variant build
// identity needs (spec.md §4.1).
type MacOSOptions struct {
	Erase                   bool // true => AuthInstallRestoreBehavior="Erase", else "Update"
	FormatForAPFS           bool
	InstallRecoveryOS       bool
	RecoveryOSPartitionSize int64
	RecoveryOSVariant       string
}

// MobileOptions carries the extra start-restore keys a mobile-variant build
// identity needs (spec.md §4.1).
type MobileOptions struct {
	// TZ0RequiredCapacity is only included when non-nil, matching "if
	// present" in spec.md.
	TZ0RequiredCapacity *int64
}

// BuildStartRestoreOptions assembles the start-restore options dictionary
// sent once per session. supportedDataTypes/supportedMessageTypes are the
// DataType/MsgType sets the dispatcher knows how to handle (spec.md §4.1,
// §4.2). Exactly one of macOS/mobile should be non-nil, matching the build
// identity's variant.
func BuildStartRestoreOptions(
	c *Context,
	supportedDataTypes []string,
	supportedMessageTypes []string,
	macOS *MacOSOptions,
	mobile *MobileOptions,
) plist.Dict {
	opts := plist.Dict{
		"AutoBootDelay":              int64(0),
		"SupportedDataTypes":         toAny(supportedDataTypes),
		"SupportedMessageTypes":      toAny(supportedMessageTypes),
		"SystemPartitionPadding":     c.BuildIdentity.SystemPartitionPadding(),
		"CreateFilesystemPartitions": true,
		"SystemImage":                true,
		"UUID":                       uuid.NewString(),
	}

	if macOS != nil {
		behavior := "Update"
		if macOS.Erase {
			behavior = "Erase"
		}
		opts["AuthInstallRestoreBehavior"] = behavior
		opts["FormatForAPFS"] = macOS.FormatForAPFS
		opts["InstallRecoveryOS"] = macOS.InstallRecoveryOS
		opts["recoveryOSPartitionSize"] = macOS.RecoveryOSPartitionSize
		opts["AuthInstallRecoveryOSVariant"] = macOS.RecoveryOSVariant
	}

	if mobile != nil {
		opts["BootImageType"] = "UserOrInternal"
		opts["DFUFileType"] = "RELEASE"
		opts["NORImageType"] = "production"
		opts["KernelCacheType"] = "Release"
		opts["SystemImageType"] = "User"
		opts["PersonalizedDuringPreflight"] = true
		opts["RestoreBundlePath"] = "/tmp/Per2.tmp"
		if mobile.TZ0RequiredCapacity != nil {
			opts["TZ0RequiredCapacity"] = *mobile.TZ0RequiredCapacity
		}
	}

	return opts
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
