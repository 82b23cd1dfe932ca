package plist

import (
	"bytes"
	"fmt"

	applist "github.com/groob/plist"
)

// Format selects the on-wire plist serialization.
type Format int

const (
	// FormatXML is the default text property-list format.
	FormatXML Format = iota
	// FormatBinary is the compact bplist00 format the restore daemon
	// prefers for large payloads (e.g. BuildManifest.plist echoes).
	FormatBinary
)

// Marshal serializes d using format.
func Marshal(d Dict, format Format) ([]byte, error) {
	var buf bytes.Buffer
	enc := applist.NewEncoder(&buf)
	if format == FormatBinary {
		enc = applist.NewBinaryEncoder(&buf)
	}
	if err := enc.Encode(map[string]any(d)); err != nil {
		return nil, fmt.Errorf("plist: marshal: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal parses raw plist bytes (binary or XML, auto-detected by the
// underlying codec) into a Dict.
func Unmarshal(raw []byte) (Dict, error) {
	var v map[string]any
	if err := applist.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("plist: unmarshal: %w", err)
	}
	return Dict(v), nil
}
