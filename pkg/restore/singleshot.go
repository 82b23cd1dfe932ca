package restore

import (
	"context"

	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/component"
	"github.com/restoreos/restored/pkg/session"
)

// handleBuildIdentityDict implements spec.md §4.2's BuildIdentityDict reply.
func handleBuildIdentityDict(ctx context.Context, c *session.Context, msg plist.Dict) error {
	variant := msg.StringOr("Variant", "Erase")
	return send(ctx, c, plist.Dict{"BuildIdentityDict": c.BuildIdentity.Raw, "Variant": variant})
}

// handleFDRTrustData implements spec.md §4.2's intentionally empty reply.
func handleFDRTrustData(ctx context.Context, c *session.Context, msg plist.Dict) error {
	return send(ctx, c, plist.Dict{})
}

// singleShotHandler builds the single-shot "{<DataType>File = personalize}"
// handlers spec.md §4.2 shares across KernelCache, DeviceTree,
// SystemImageRootHash (component "SystemVolume"), and
// SystemImageCanonicalMetadata (component "Ap,SystemVolumeCanonicalMetadata").
func singleShotHandler(dataType, componentName string) Handler {
	replyKey := dataType + "File"
	return func(ctx context.Context, c *session.Context, msg plist.Dict) error {
		raw, err := component.LoadAndPersonalize(c, componentName)
		if err != nil {
			return err
		}
		return send(ctx, c, plist.Dict{replyKey: raw})
	}
}
