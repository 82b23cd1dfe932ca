package baseband

import "strings"

// elementFile is the static element-name -> zip-member-name table the
// signer uses to resolve a "<Element>-Blob" key from a TSS baseband
// response into the archive member it patches.
var elementFile = map[string]string{
	"RamPSI":       "psi_ram.fls",
	"FlashPSI":     "psi_flash.fls",
	"eDBL":         "dbl.mbn",
	"RestoreDBL":   "restoredbl.mbn",
	"DBL":          "dbl.mbn",
	"ENANDPRG":     "ENPRG.mbn",
	"RestoreSBL1":  "restoresbl1.mbn",
	"SBL1":         "sbl1.mbn",
	"RestorePSI":   "restorepsi.bin",
	"PSI":          "psi_ram.bin",
	"RestorePSI2":  "restorepsi2.bin",
	"PSI2":         "psi_ram2.bin",
	"Misc":         "multi_image.mbn",
}

// fileForElement resolves a "<Element>-Blob" TSS response key's base
// element name to the zip member it signs.
func fileForElement(element string) (string, bool) {
	f, ok := elementFile[element]
	return f, ok
}

const blobSuffix = "-Blob"

func elementFromBlobKey(key string) (string, bool) {
	if !strings.HasSuffix(key, blobSuffix) {
		return "", false
	}
	return strings.TrimSuffix(key, blobSuffix), true
}

func isSignableFile(name string) bool {
	for _, ext := range []string{".fls", ".mbn", ".elf", ".bin"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
