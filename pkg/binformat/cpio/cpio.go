// Package cpio writes the "odc" (POSIX portable ASCII) cpio archive format
// used to stream the bootability bundle to a device's secondary connection
// (spec.md §4.7). Only writing is implemented: the engine never needs to
// read a cpio archive back.
//
// Each header is eleven ASCII-octal fields with fixed widths, no padding
// between fields, followed by the NUL-terminated name and then the file
// data (neither is padded to a word boundary in this format):
//
//	field      width
//	magic      6   always "070707"
//	dev        6
//	ino        6
//	mode       6
//	uid        6
//	gid        6
//	nlink      6
//	rdev       6
//	mtime      11
//	namesize   6   includes the trailing NUL
//	filesize   11
//
// The archive ends with a zero-size entry named "TRAILER!!!".
package cpio

import (
	"fmt"
	"io"
)

const (
	magicODC  = "070707"
	trailerName = "TRAILER!!!"
)

// Header describes one archive entry. Name must not already include its
// terminating NUL; Write appends it when computing namesize.
type Header struct {
	Dev    uint32
	Ino    uint32
	Mode   uint32
	UID    uint32
	GID    uint32
	Nlink  uint32
	Rdev   uint32
	Mtime  uint32
	Name   string
	Size   uint32
}

// Writer emits odc-formatted cpio entries to an underlying io.Writer.
type Writer struct {
	w      io.Writer
	closed bool
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteHeader writes hdr's header and NUL-terminated name; the caller must
// follow with exactly hdr.Size bytes written directly to the underlying
// writer (cpio odc interleaves header/name/data per entry with no seeking).
func (cw *Writer) WriteHeader(hdr Header) error {
	if cw.closed {
		return fmt.Errorf("cpio: write on closed writer")
	}
	return cw.writeEntry(hdr.Dev, hdr.Ino, hdr.Mode, hdr.UID, hdr.GID, hdr.Nlink, hdr.Rdev, hdr.Mtime, hdr.Name, hdr.Size)
}

// WriteFile writes hdr's header, name, and data in one call.
func (cw *Writer) WriteFile(hdr Header, data []byte) error {
	if int(hdr.Size) != len(data) {
		return fmt.Errorf("cpio: header size %d does not match data length %d", hdr.Size, len(data))
	}
	if err := cw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := cw.w.Write(data)
	return err
}

// Close writes the TRAILER!!! sentinel entry that terminates the archive.
func (cw *Writer) Close() error {
	if cw.closed {
		return nil
	}
	cw.closed = true
	return cw.writeEntry(0, 0, 0, 0, 0, 1, 0, 0, trailerName, 0)
}

func (cw *Writer) writeEntry(dev, ino, mode, uid, gid, nlink, rdev, mtime uint32, name string, size uint32) error {
	nameField := name + "\x00"

	fields := []struct {
		value uint64
		width int
	}{
		{uint64(dev), 6},
		{uint64(ino), 6},
		{uint64(mode), 6},
		{uint64(uid), 6},
		{uint64(gid), 6},
		{uint64(nlink), 6},
		{uint64(rdev), 6},
		{uint64(mtime), 11},
		{uint64(len(nameField)), 6},
		{uint64(size), 11},
	}

	if _, err := io.WriteString(cw.w, magicODC); err != nil {
		return err
	}
	for _, f := range fields {
		if err := writeOctalField(cw.w, f.value, f.width); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(cw.w, nameField); err != nil {
		return err
	}
	return nil
}

func writeOctalField(w io.Writer, v uint64, width int) error {
	s := fmt.Sprintf("%0*o", width, v)
	if len(s) != width {
		return fmt.Errorf("cpio: value %d overflows %d-digit octal field", v, width)
	}
	_, err := io.WriteString(w, s)
	return err
}
