package ticket

import (
	"encoding/binary"

	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/identity"
)

// AddCommonTags copies the per-component digest/trust entries every TSS
// request needs from the build identity manifest into params. Every
// family-specific tag adder below is layered on top of this.
func AddCommonTags(params plist.Dict, id identity.BuildIdentity) plist.Dict {
	for name, v := range id.Manifest() {
		entry, ok := toDict(v)
		if !ok {
			continue
		}
		if digest, ok := entry.Data("Digest"); ok {
			params[name+",Digest"] = digest
		}
		if trusted, ok := entry.Bool("Trusted"); ok {
			params[name+",Trusted"] = trusted
		}
	}
	return params
}

// AddBasebandTags adds the baseband-specific request parameters (spec.md
// §4.6): ApECID, BbChipID, BbGoldCertId, BbSNUM, BbNonce. When the build
// identity declares FDRSupport, ApProductionMode/ApSecurityMode are also
// set, matching what an FDR-capable device additionally demands.
func AddBasebandTags(params plist.Dict, id identity.BuildIdentity, ecid uint64, chipID, certID, serialNo, nonce []byte) plist.Dict {
	params["ApECID"] = ecid
	params["BbChipID"] = chipID
	params["BbGoldCertId"] = certID
	params["BbSNUM"] = serialNo
	params["BbNonce"] = nonce
	if id.FDRSupport() {
		params["ApProductionMode"] = true
		params["ApSecurityMode"] = true
	}
	return params
}

// AddSETags adds the Secure Enclave family's parameters: just the shared
// ApECID, since SE has no extra security-mode negotiation.
func AddSETags(params plist.Dict, ecid uint64) plist.Dict {
	params["ApECID"] = ecid
	return params
}

// AddSavageTags adds the Savage/Yonkers co-processor family's parameters.
func AddSavageTags(params plist.Dict, ecid uint64, image4Supported bool) plist.Dict {
	params["ApECID"] = ecid
	params["ApSecurityMode"] = image4Supported
	params["ApSupportsImg4"] = image4Supported
	return params
}

// AddYonkersTags adds the Yonkers variant's parameters; identical shape to
// Savage, the two differ only in post-processing of the response.
func AddYonkersTags(params plist.Dict, ecid uint64, image4Supported bool) plist.Dict {
	return AddSavageTags(params, ecid, image4Supported)
}

// AddRoseTags adds the Rose co-processor family's parameters, which
// additionally claims production mode (spec.md §4.5).
func AddRoseTags(params plist.Dict, ecid uint64, image4Supported bool) plist.Dict {
	params["ApECID"] = ecid
	params["ApProductionMode"] = true
	params["ApSecurityMode"] = image4Supported
	params["ApSupportsImg4"] = image4Supported
	return params
}

// AddVeridianTags adds the BMU/Veridian co-processor family's parameters.
func AddVeridianTags(params plist.Dict, ecid uint64, image4Supported bool) plist.Dict {
	params["ApECID"] = ecid
	params["ApSecurityMode"] = image4Supported
	params["ApSupportsImg4"] = image4Supported
	return params
}

// AddTCONTags adds the Baobab/TCON co-processor family's parameters.
func AddTCONTags(params plist.Dict, ecid uint64, image4Supported bool) plist.Dict {
	params["ApECID"] = ecid
	params["ApSecurityMode"] = image4Supported
	params["ApSupportsImg4"] = image4Supported
	return params
}

// AddTimerTags adds the Timer co-processor family's parameters, including
// production mode like Rose, plus the per-tag hardware-identity keys mined
// from MessageArgInfo.InfoArray[0].HardwareID (spec.md §4.5).
func AddTimerTags(params plist.Dict, ecid uint64, image4Supported bool, tag string, hw plist.Dict) plist.Dict {
	params["ApECID"] = ecid
	params["ApProductionMode"] = true
	params["ApSecurityMode"] = image4Supported
	params["ApSupportsImg4"] = image4Supported

	if v, ok := hw.Int("ChipID"); ok {
		params["Timer,ChipID,"+tag] = v
	}
	if v, ok := hw.Int("BoardID"); ok {
		params["Timer,BoardID,"+tag] = v
	}
	if v, ok := hw.Uint("ECID"); ok {
		params["Timer,ECID,"+tag] = v
	}
	if v, ok := hw.Data("Nonce"); ok {
		params["Timer,Nonce,"+tag] = v
	}
	if v, ok := hw.Int("SecurityMode"); ok {
		params["Timer,SecurityMode,"+tag] = v
	}
	if v, ok := hw.Int("SecurityDomain"); ok {
		params["Timer,SecurityDomain,"+tag] = v
	}
	if v, ok := hw.Int("ProductionMode"); ok {
		params["Timer,ProductionMode,"+tag] = v
	}
	return params
}

// ECIDBytes renders an ECID as the big-endian byte form some TSS parameters
// expect instead of a bare integer.
func ECIDBytes(ecid uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, ecid)
	return b
}

func toDict(v any) (plist.Dict, bool) {
	switch d := v.(type) {
	case plist.Dict:
		return d, true
	case map[string]any:
		return plist.Dict(d), true
	default:
		return nil, false
	}
}
