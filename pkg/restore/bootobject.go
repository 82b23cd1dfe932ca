package restore

import (
	"context"

	"github.com/restoreos/restored/internal/engineerr"
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/component"
	"github.com/restoreos/restored/pkg/session"
)

// pseudoComponentFiles maps spec.md §4.2's three pseudo component names to
// the conventional top-level IPSW metadata plists they stand in for. These
// are informational, not firmware, so they are never personalized.
var pseudoComponentFiles = map[string]string{
	PseudoGlobalManifest: "BuildManifest.plist",
	PseudoRestoreVersion: "RestoreVersion.plist",
	PseudoSystemVersion:  "SystemVersion.plist",
}

// handleBootObjectV3 streams a personalized component in chunked FileData
// replies (spec.md §4.2).
func handleBootObjectV3(ctx context.Context, c *session.Context, msg plist.Dict) error {
	return handleBootObject(ctx, c, msg, true)
}

// handleBootObjectV4 is the same framing as V3 but sends raw,
// un-personalized component bytes (spec.md §4.2).
func handleBootObjectV4(ctx context.Context, c *session.Context, msg plist.Dict) error {
	return handleBootObject(ctx, c, msg, false)
}

func handleBootObject(ctx context.Context, c *session.Context, msg plist.Dict, personalize bool) error {
	name, err := msg.RequireString("ImageName")
	if err != nil {
		return engineerr.Content("BootObject", err.Error())
	}

	raw, err := loadBootObjectBytes(c, name, personalize)
	if err != nil {
		return err
	}

	return streamFileData(ctx, c, raw)
}

func loadBootObjectBytes(c *session.Context, name string, personalize bool) ([]byte, error) {
	if file, ok := pseudoComponentFiles[name]; ok {
		return component.Extract(c, file)
	}
	if personalize {
		return component.LoadAndPersonalize(c, name)
	}
	return component.Load(c, name)
}

// streamFileData sends data in ChunkSize-byte FileData replies followed by a
// single terminating FileDataDone=true (spec.md §4.2, testable property 9):
// exactly ⌈len(data)/ChunkSize⌉ FileData messages precede it.
func streamFileData(ctx context.Context, c *session.Context, data []byte) error {
	for offset := 0; offset < len(data); offset += ChunkSize {
		end := offset + ChunkSize
		if end > len(data) {
			end = len(data)
		}
		if err := send(ctx, c, plist.Dict{"FileData": data[offset:end]}); err != nil {
			return err
		}
	}
	return send(ctx, c, plist.Dict{"FileDataDone": true})
}
