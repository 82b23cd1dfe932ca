// Package firmware implements the co-processor firmware-updater adapters
// dispatched by FirmwareUpdaterData requests (spec.md §4.5): one adapter
// per family (SE, Savage, Yonkers, Rose, Veridian, TCON, Timer), each
// building its own TSS request parameters, resolving its own component
// name, and post-processing its own payload shape before the response is
// assembled. The shared Adapter interface and the registry/dispatch table
// below follow the teacher's per-protocol pkg/adapter split: one adapter
// package per concrete protocol, registered into a name-keyed dispatch
// table that the caller drives generically.
package firmware

import (
	"context"
	"fmt"
	"time"

	"github.com/restoreos/restored/internal/logger"
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/component"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/ticket"
)

// Adapter is the per-family co-processor firmware update strategy.
type Adapter interface {
	// Name is the adapter's family name as it would appear in logs.
	Name() string

	// TagKey is the ticket key the TSS response is expected to carry; its
	// absence is a warning, not a fatal error (spec.md §4.5 step 3). It
	// takes info because Timer's key is tag-suffixed per hardware ID.
	TagKey(info plist.Dict) string

	// BuildParams returns the family-specific TSS parameter dictionary,
	// given the dispatcher's already-seeded common tags and the inbound
	// MessageArgInfo dict.
	BuildParams(c *session.Context, common plist.Dict, info plist.Dict) plist.Dict

	// ComponentName resolves which build-identity component to load.
	ComponentName(c *session.Context, info plist.Dict, response plist.Dict) (string, error)

	// PostProcess transforms the raw component bytes into the
	// family-specific entries that go under FirmwareResponseData's
	// FirmwareData key.
	PostProcess(c *session.Context, info, response plist.Dict, raw []byte) (plist.Dict, error)
}

// Process runs the common adapter pipeline (spec.md §4.5 steps 1-6): build
// params, send the TSS request, resolve and load the component, post-process
// it, and assemble the FirmwareResponseData dict. The caller supplies common
// (already primed with the manifest's per-component digest/trust tags).
func Process(ctx context.Context, c *session.Context, a Adapter, common, info plist.Dict) (plist.Dict, error) {
	params := a.BuildParams(c, common, info)

	start := time.Now()
	tssResp, err := ticket.RequestTicket(ctx, c.TSSClient, params, c.TSSURL)
	if c.Metrics != nil {
		c.Metrics.RecordTSSRequest(a.Name(), time.Since(start), err == nil)
	}
	if err != nil {
		return nil, fmt.Errorf("firmware: %s TSS request: %w", a.Name(), err)
	}

	tagKey := a.TagKey(info)
	if _, ok := tssResp.Raw[tagKey]; !ok {
		// Warning only, per spec.md §4.5 step 3: continue without the key.
		logger.Warn("firmware: TSS response missing ticket key", logger.KeyFamily, a.Name(), "key", tagKey)
	}

	name, err := a.ComponentName(c, info, tssResp.Raw)
	if err != nil {
		return nil, fmt.Errorf("firmware: %s component resolution: %w", a.Name(), err)
	}

	raw, err := component.Load(c, name)
	if err != nil {
		return nil, err
	}

	out, err := a.PostProcess(c, info, tssResp.Raw, raw)
	if err != nil {
		return nil, fmt.Errorf("firmware: %s post-process: %w", a.Name(), err)
	}

	if blob, ok := tssResp.Raw[tagKey]; ok {
		out[tagKey] = blob
	}
	return out, nil
}

// Dispatch resolves an updater name (and, for Savage, the presence of
// YonkersDeviceInfo) to the adapter that should handle it.
func Dispatch(updaterName string, info plist.Dict) (Adapter, error) {
	if updaterName == "Savage" {
		if _, hasYonkers := info["YonkersDeviceInfo"]; hasYonkers {
			updaterName = "Yonkers"
		}
	}
	a, ok := registry[updaterName]
	if !ok {
		return nil, fmt.Errorf("firmware: unknown updater %q", updaterName)
	}
	return a, nil
}

var registry map[string]Adapter

// Register adds a onto the updater-name dispatch table. Family packages
// call this from an init() so importing cmd/restored's firmware family
// blank-imports is enough to wire every adapter into Dispatch.
func Register(updaterName string, a Adapter) {
	if registry == nil {
		registry = make(map[string]Adapter)
	}
	registry[updaterName] = a
}
