// Package identity wraps the build-identity manifest: the portion of a
// BuildManifest.plist describing one variant (erase/update/recovery) of a
// single hardware model. It stays a thin typed view over the raw
// property-list dictionary rather than a fully decoded struct, since
// handlers frequently need to forward untouched sub-dictionaries (e.g. the
// whole BuildIdentityDict reply) alongside the few fields they inspect.
package identity

import (
	"fmt"

	"github.com/restoreos/restored/internal/plist"
)

// Flag names used against a manifest entry's Info dict (spec.md §3, §4.4).
const (
	FlagIsFirmwarePayload          = "IsFirmwarePayload"
	FlagIsSecondaryFirmwarePayload = "IsSecondaryFirmwarePayload"
	FlagIsLoadedByiBoot            = "IsLoadedByiBoot"
	FlagIsFUDFirmware              = "IsFUDFirmware"
	FlagIsEarlyAccessFirmware      = "IsEarlyAccessFirmware"
)

// BuildIdentity is one entry of a BuildManifest's BuildIdentities array.
type BuildIdentity struct {
	Raw plist.Dict
}

// New wraps a raw build-identity dictionary.
func New(raw plist.Dict) BuildIdentity { return BuildIdentity{Raw: raw} }

// Info returns the identity's Info dictionary (DeviceClass, MacOSVariant,
// MinimumSystemPartition, SystemPartitionPadding, FDRSupport, ...).
func (b BuildIdentity) Info() plist.Dict {
	info, _ := b.Raw.Dict("Info")
	return info
}

// Manifest returns the component-name -> entry-dict map.
func (b BuildIdentity) Manifest() plist.Dict {
	m, _ := b.Raw.Dict("Manifest")
	return m
}

// Entry returns the manifest entry for component name.
func (b BuildIdentity) Entry(name string) (plist.Dict, bool) {
	return b.Manifest().Dict(name)
}

// EntryInfo returns the Info sub-dictionary of a manifest entry.
func (b BuildIdentity) EntryInfo(name string) (plist.Dict, bool) {
	entry, ok := b.Entry(name)
	if !ok {
		return nil, false
	}
	return entry.Dict("Info")
}

// Path returns Manifest.<name>.Info.Path.
func (b BuildIdentity) Path(name string) (string, bool) {
	info, ok := b.EntryInfo(name)
	if !ok {
		return "", false
	}
	return info.String("Path")
}

// Digest returns Manifest.<name>.Digest.
func (b BuildIdentity) Digest(name string) ([]byte, bool) {
	entry, ok := b.Entry(name)
	if !ok {
		return nil, false
	}
	return entry.Data("Digest")
}

// Flag returns Manifest.<name>.Info.<flag>, defaulting to false.
func (b BuildIdentity) Flag(name, flag string) bool {
	info, ok := b.EntryInfo(name)
	if !ok {
		return false
	}
	return info.BoolOr(flag, false)
}

// ComponentsWithFlag returns every component name whose Info.<flag> is true,
// in manifest iteration order. Go map iteration order is randomized, so
// callers that need deterministic ordering (e.g. §4.4's "iBoot first")
// must sort or otherwise post-process the result themselves.
func (b BuildIdentity) ComponentsWithFlag(flag string) []string {
	var names []string
	for name, v := range b.Manifest() {
		entry, ok := v.(plist.Dict)
		if !ok {
			if m, ok2 := v.(map[string]any); ok2 {
				entry = plist.Dict(m)
			} else {
				continue
			}
		}
		info, ok := entry.Dict("Info")
		if !ok {
			continue
		}
		if info.BoolOr(flag, false) {
			names = append(names, name)
		}
	}
	return names
}

// DeviceClass returns Info.DeviceClass.
func (b BuildIdentity) DeviceClass() string { return b.Info().StringOr("DeviceClass", "") }

// IsMacOSVariant reports whether Info.MacOSVariant is set and non-empty.
func (b BuildIdentity) IsMacOSVariant() bool {
	v, ok := b.Info().String("MacOSVariant")
	return ok && v != ""
}

// SystemPartitionPadding returns Info.SystemPartitionPadding, 0 if absent.
func (b BuildIdentity) SystemPartitionPadding() int64 {
	v, _ := b.Info().Int("SystemPartitionPadding")
	return v
}

// FDRSupport returns Info.FDRSupport.
func (b BuildIdentity) FDRSupport() bool { return b.Info().BoolOr("FDRSupport", false) }

// SelectFromManifest picks the BuildIdentities entry of manifest (a parsed
// BuildManifest.plist) whose Info.RestoreBehavior matches variant ("Erase"
// or "Update"), falling back to the manifest's first entry if none match.
// Production tooling typically also filters on DeviceClass/BoardID; this
// selects on variant alone since the CLI only ever targets one connected
// device's IPSW at a time.
func SelectFromManifest(manifest plist.Dict, variant string) (BuildIdentity, error) {
	arr, ok := manifest.Array("BuildIdentities")
	if !ok {
		return BuildIdentity{}, fmt.Errorf("identity: BuildManifest.plist missing BuildIdentities array")
	}
	var fallback *BuildIdentity
	for _, v := range arr {
		var raw plist.Dict
		switch t := v.(type) {
		case plist.Dict:
			raw = t
		case map[string]any:
			raw = plist.Dict(t)
		default:
			continue
		}
		candidate := New(raw)
		if fallback == nil {
			fallback = &candidate
		}
		if candidate.Info().StringOr("RestoreBehavior", "") == variant {
			return candidate, nil
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return BuildIdentity{}, fmt.Errorf("identity: no build identities found in manifest")
}
