package restore

import (
	"context"
	"sort"

	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/component"
	"github.com/restoreos/restored/pkg/identity"
	"github.com/restoreos/restored/pkg/session"
)

// imageFamily names the three keys shared by every image-family reply
// (spec.md §4.3): the inbound "return the list" flag, the manifest Info
// flag selecting candidate components, and the outbound data key. No
// per-DataType key table survived the retrieval pack, so these three
// families (FUDData, PersonalizedData, EANData) each get the naming
// convention spec.md §4.2 implies from their DataType name.
type imageFamily struct {
	ListKey string
	TypeKey string
	DataKey string
}

var (
	fudImageFamily = imageFamily{
		ListKey: "FUDImageList",
		TypeKey: identity.FlagIsFUDFirmware,
		DataKey: "FUDImageData",
	}
	personalizedImageFamily = imageFamily{
		ListKey: "PersonalizedImageList",
		TypeKey: identity.FlagIsFirmwarePayload,
		DataKey: "PersonalizedData",
	}
	eanImageFamily = imageFamily{
		ListKey: "EANImageList",
		TypeKey: identity.FlagIsEarlyAccessFirmware,
		DataKey: "EANData",
	}
)

// imageFamilyHandler adapts one family's key triple into a Handler.
func imageFamilyHandler(f imageFamily) Handler {
	return func(ctx context.Context, c *session.Context, msg plist.Dict) error {
		return handleImageFamily(ctx, c, msg, f)
	}
}

// handleImageFamily implements spec.md §4.3: list-mode returns component
// names only; a named single image returns its bytes plus the echoed name;
// otherwise every matching component is personalized into a name-keyed dict.
func handleImageFamily(ctx context.Context, c *session.Context, msg plist.Dict, f imageFamily) error {
	typeKey := f.TypeKey
	if override, ok := msg.String("ImageType"); ok {
		typeKey = override
	}

	if msg.BoolOr(f.ListKey, false) {
		names := matchingComponents(c, typeKey)
		return send(ctx, c, plist.Dict{f.ListKey: stringsToAny(names)})
	}

	if name, ok := msg.String("ImageName"); ok {
		raw, err := component.LoadAndPersonalize(c, name)
		if err != nil {
			return err
		}
		return send(ctx, c, plist.Dict{f.DataKey: raw, "ImageName": name})
	}

	names := matchingComponents(c, typeKey)
	data := plist.New()
	for _, name := range names {
		raw, err := component.LoadAndPersonalize(c, name)
		if err != nil {
			return err
		}
		data[name] = raw
	}
	return send(ctx, c, plist.Dict{f.DataKey: data})
}

func matchingComponents(c *session.Context, typeKey string) []string {
	names := c.BuildIdentity.ComponentsWithFlag(typeKey)
	sort.Strings(names)
	return names
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
