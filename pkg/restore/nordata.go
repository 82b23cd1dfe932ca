package restore

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/restoreos/restored/internal/engineerr"
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/component"
	"github.com/restoreos/restored/pkg/identity"
	"github.com/restoreos/restored/pkg/session"
)

const norLLBComponent = "LLB"
const norRestoreSEPComponent = "RestoreSEP"
const norSEPComponent = "SEP"

// handleNORData implements the NOR data pipeline (spec.md §4.4): resolve the
// firmware-file list (manifest-file-driven if the LLB's directory carries
// one, otherwise derived from the build-identity's firmware-payload flags),
// send LLB separately, and shape the remainder into NorImageData either as
// an array (iBoot first) or, under FlashVersion1, as a name-keyed dict.
func handleNORData(ctx context.Context, c *session.Context, msg plist.Dict) error {
	llbPath, ok := c.BuildIdentity.Path(norLLBComponent)
	if !ok {
		return engineerr.Content(norLLBComponent, "component not present in build identity manifest")
	}

	names, err := resolveFirmwareFileComponents(c, llbPath)
	if err != nil {
		return err
	}

	llbRaw, err := component.LoadAndPersonalize(c, norLLBComponent)
	if err != nil {
		return err
	}
	reply := plist.Dict{"LlbImageData": llbRaw}

	flashVersion1 := msg.BoolOr("FlashVersion1", false)
	norDict := plist.New()
	var norArray []any
	var iBootEntry any

	for _, name := range names {
		if name == norLLBComponent || name == norRestoreSEPComponent {
			continue
		}
		raw, err := component.LoadAndPersonalize(c, name)
		if err != nil {
			return err
		}
		switch {
		case flashVersion1:
			norDict[name] = raw
		case iBootEntry == nil && strings.HasPrefix(name, "iBoot"):
			iBootEntry = raw
		default:
			norArray = append(norArray, raw)
		}
	}

	if flashVersion1 {
		reply["NorImageData"] = norDict
	} else {
		arr := make([]any, 0, len(norArray)+1)
		if iBootEntry != nil {
			arr = append(arr, iBootEntry)
		}
		arr = append(arr, norArray...)
		reply["NorImageData"] = arr
	}

	if raw, ok, err := loadOptionalComponent(c, norRestoreSEPComponent); err != nil {
		return err
	} else if ok {
		reply["RestoreSEPImageData"] = raw
	}
	if raw, ok, err := loadOptionalComponent(c, norSEPComponent); err != nil {
		return err
	} else if ok {
		reply["SEPImageData"] = raw
	}

	return send(ctx, c, reply)
}

func loadOptionalComponent(c *session.Context, name string) ([]byte, bool, error) {
	if _, ok := c.BuildIdentity.Path(name); !ok {
		return nil, false, nil
	}
	raw, err := component.LoadAndPersonalize(c, name)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// resolveFirmwareFileComponents implements spec.md §4.4's two-path firmware
// file list resolution.
func resolveFirmwareFileComponents(c *session.Context, llbPath string) ([]string, error) {
	manifestPath := path.Join(path.Dir(llbPath), "manifest")
	if c.IPSW.FileExists(manifestPath) {
		raw, err := component.Extract(c, manifestPath)
		if err != nil {
			return nil, err
		}
		table := filenameToComponentTable(c.BuildIdentity)
		var names []string
		for _, line := range strings.Split(string(raw), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if name, ok := table[path.Base(line)]; ok {
				names = append(names, name)
			}
		}
		return names, nil
	}

	var names []string
	for name := range c.BuildIdentity.Manifest() {
		info, ok := c.BuildIdentity.EntryInfo(name)
		if !ok {
			continue
		}
		if info.BoolOr(identity.FlagIsFirmwarePayload, false) ||
			(info.BoolOr(identity.FlagIsSecondaryFirmwarePayload, false) && info.BoolOr(identity.FlagIsLoadedByiBoot, false)) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// filenameToComponentTable maps each manifest component's archive basename
// back to its component name. spec.md §4.4 calls for "a shared
// filename-to-name table" but no fixed table survived the retrieval pack;
// deriving it from the manifest itself (which already carries every
// component's path) avoids inventing filenames the manifest doesn't use.
func filenameToComponentTable(id identity.BuildIdentity) map[string]string {
	table := make(map[string]string)
	for name := range id.Manifest() {
		if p, ok := id.Path(name); ok {
			table[path.Base(p)] = name
		}
	}
	return table
}
