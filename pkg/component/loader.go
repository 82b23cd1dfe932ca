// Package component resolves a component name to its archive path, extracts
// its bytes from the IPSW, and applies personalization with the current
// ticket (spec.md §4, component loader, ~7% of the implementation).
package component

import (
	"fmt"

	"github.com/restoreos/restored/internal/engineerr"
	"github.com/restoreos/restored/pkg/identity"
	"github.com/restoreos/restored/pkg/session"
	"github.com/restoreos/restored/pkg/ticket"
)

// ResolvePath finds name's archive path. An explicit override (e.g. an
// inbound request's ImageName-scoped path) always wins; otherwise the
// build-identity manifest's Info.Path is used.
func ResolvePath(id identity.BuildIdentity, name, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	path, ok := id.Path(name)
	if !ok {
		return "", engineerr.Content(name, "component not present in build identity manifest")
	}
	return path, nil
}

// Extract reads a component's raw bytes out of the IPSW at path.
func Extract(c *session.Context, path string) ([]byte, error) {
	if !c.IPSW.FileExists(path) {
		return nil, engineerr.Content(path, "component file missing from IPSW")
	}
	raw, err := c.IPSW.ExtractToMemory(path)
	if err != nil {
		return nil, engineerr.Archive(path, fmt.Errorf("extract component: %w", err))
	}
	return raw, nil
}

// Load resolves name to a path via the session's build identity and
// extracts its raw, un-personalized bytes.
func Load(c *session.Context, name string) ([]byte, error) {
	path, err := ResolvePath(c.BuildIdentity, name, "")
	if err != nil {
		return nil, err
	}
	return Extract(c, path)
}

// Personalize wraps raw with tkt into the device-expected container via the
// session's injected Personalizer.
func Personalize(c *session.Context, name string, raw []byte, tkt ticket.Ticket) ([]byte, error) {
	out, err := c.Personalizer.PersonalizeComponent(name, raw, tkt.Raw)
	if err != nil {
		return nil, engineerr.Ticket(name, fmt.Errorf("personalize: %w", err))
	}
	return out, nil
}

// LoadAndPersonalize loads name from the IPSW and personalizes it with the
// session's current application ticket — the common case used throughout
// the single-shot and boot-object handlers.
func LoadAndPersonalize(c *session.Context, name string) ([]byte, error) {
	raw, err := Load(c, name)
	if err != nil {
		return nil, err
	}
	return Personalize(c, name, raw, c.AppTicket)
}
