// Package transporttest provides small in-memory fakes of the
// pkg/transport interfaces for use in other packages' tests.
package transporttest

import (
	"fmt"
	"os"

	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/transport"
)

// MemIPSW is an in-memory transport.IPSW backed by a name -> bytes map.
type MemIPSW struct {
	Files map[string][]byte
}

// NewMemIPSW wraps files as an IPSW.
func NewMemIPSW(files map[string][]byte) *MemIPSW {
	return &MemIPSW{Files: files}
}

func (m *MemIPSW) FileExists(path string) bool {
	_, ok := m.Files[path]
	return ok
}

func (m *MemIPSW) ExtractToMemory(path string) ([]byte, error) {
	data, ok := m.Files[path]
	if !ok {
		return nil, fmt.Errorf("transporttest: %s not found", path)
	}
	return data, nil
}

func (m *MemIPSW) ExtractToFile(path, outPath string) error {
	data, ok := m.Files[path]
	if !ok {
		return fmt.Errorf("transporttest: %s not found", path)
	}
	return os.WriteFile(outPath, data, 0o644)
}

func (m *MemIPSW) ListContents(fn func(member transport.IPSWMember) error) error {
	for name, data := range m.Files {
		if err := fn(transport.IPSWMember{Name: name, Size: int64(len(data))}); err != nil {
			return err
		}
	}
	return nil
}

// StaticPersonalizer returns its input payload unchanged, recording the
// name/ticket it was called with for assertions.
type StaticPersonalizer struct {
	LastName    string
	LastPayload []byte
}

func (p *StaticPersonalizer) PersonalizeComponent(name string, payload []byte, ticket plist.Dict) ([]byte, error) {
	p.LastName = name
	p.LastPayload = payload
	return payload, nil
}
