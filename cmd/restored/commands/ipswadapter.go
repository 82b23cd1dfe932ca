package commands

import (
	"github.com/restoreos/restored/pkg/transport"
	"github.com/restoreos/restored/pkg/ziparchive"
)

// zipIPSW adapts a pkg/ziparchive.Archive to transport.IPSW. The two
// differ only in ListContents's shape (a slice vs. a callback), so the
// adapter is the sole translation needed; every other method already has
// an identical signature.
type zipIPSW struct {
	archive *ziparchive.Archive
}

// openIPSW opens path as a zip-backed transport.IPSW.
func openIPSW(path string) (*zipIPSW, error) {
	a, err := ziparchive.Open(path)
	if err != nil {
		return nil, err
	}
	return &zipIPSW{archive: a}, nil
}

func (z *zipIPSW) Close() error { return z.archive.Close() }

func (z *zipIPSW) FileExists(path string) bool { return z.archive.FileExists(path) }

func (z *zipIPSW) ExtractToMemory(path string) ([]byte, error) {
	return z.archive.ExtractToMemory(path)
}

func (z *zipIPSW) ExtractToFile(path, outPath string) error {
	return z.archive.ExtractToFile(path, outPath)
}

func (z *zipIPSW) ListContents(fn func(member transport.IPSWMember) error) error {
	for _, name := range z.archive.ListContents() {
		if err := fn(transport.IPSWMember{Name: name}); err != nil {
			return err
		}
	}
	return nil
}
