// Package families blank-imports every co-processor firmware-updater
// family adapter so their init() registration (pkg/firmware.Register)
// runs in any binary that imports this package, instead of only in the
// per-family test binaries that import the family packages directly.
package families

import (
	_ "github.com/restoreos/restored/pkg/firmware/rose"
	_ "github.com/restoreos/restored/pkg/firmware/savage"
	_ "github.com/restoreos/restored/pkg/firmware/se"
	_ "github.com/restoreos/restored/pkg/firmware/tcon"
	_ "github.com/restoreos/restored/pkg/firmware/timer"
	_ "github.com/restoreos/restored/pkg/firmware/veridian"
	_ "github.com/restoreos/restored/pkg/firmware/yonkers"
)
