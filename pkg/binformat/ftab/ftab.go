// Package ftab parses and rewrites FTAB containers: an ordered table of
// 4-character tag to contiguous byte-range entries, used to bundle
// multi-part co-processor firmware images (e.g. Rose/Timer's rkos FTAB
// embedding an rkos and rrko entry). Round-tripping an unmutated FTAB must
// reproduce the original bytes exactly; add_entry appends a new entry
// without disturbing the order or contents of the existing ones.
//
// Layout (all integers little-endian):
//
//	offset  size  field
//	0       4     magic ("ftab")
//	4       4     overall tag (the FTAB's own 4-character identity)
//	8       4     entry count
//	12      4     header size (always 16)
//	16      -     entry table, entry count of them:
//	                4   tag
//	                4   offset (absolute, from start of buffer)
//	                4   length
//	...     -     entry payloads, contiguous and in table order
package ftab

import (
	"encoding/binary"
	"fmt"
)

const (
	headerSize   = 16
	entryRecSize = 12
	magic        = "ftab"
)

// Entry is one tagged byte range.
type Entry struct {
	Tag  string
	Data []byte
}

// FTAB is a parsed firmware table.
type FTAB struct {
	Tag     string
	Entries []Entry
}

// Parse reads buf into an FTAB.
func Parse(buf []byte) (*FTAB, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("ftab: buffer too small for header (%d bytes)", len(buf))
	}
	if string(buf[0:4]) != magic {
		return nil, fmt.Errorf("ftab: bad magic %q", buf[0:4])
	}

	tag := string(buf[4:8])
	count := binary.LittleEndian.Uint32(buf[8:12])

	tableEnd := headerSize + int(count)*entryRecSize
	if tableEnd > len(buf) {
		return nil, fmt.Errorf("ftab: entry table needs %d bytes, buffer has %d", tableEnd, len(buf))
	}

	entries := make([]Entry, 0, count)
	for i := uint32(0); i < count; i++ {
		rec := buf[headerSize+int(i)*entryRecSize:]
		entryTag := string(rec[0:4])
		offset := binary.LittleEndian.Uint32(rec[4:8])
		length := binary.LittleEndian.Uint32(rec[8:12])
		if int(offset)+int(length) > len(buf) {
			return nil, fmt.Errorf("ftab: entry %q region [%d:%d] out of bounds for %d-byte buffer", entryTag, offset, offset+length, len(buf))
		}
		entries = append(entries, Entry{
			Tag:  entryTag,
			Data: append([]byte(nil), buf[offset:offset+length]...),
		})
	}

	return &FTAB{Tag: tag, Entries: entries}, nil
}

// Write reconstructs the FTAB's on-disk representation, recomputing entry
// offsets from the current entry order and contents.
func (f *FTAB) Write() []byte {
	tableSize := headerSize + len(f.Entries)*entryRecSize
	total := tableSize
	for _, e := range f.Entries {
		total += len(e.Data)
	}

	buf := make([]byte, total)
	copy(buf[0:4], magic)
	copy(buf[4:8], padTag(f.Tag))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(f.Entries)))
	binary.LittleEndian.PutUint32(buf[12:16], headerSize)

	payloadPos := tableSize
	for i, e := range f.Entries {
		rec := buf[headerSize+i*entryRecSize:]
		copy(rec[0:4], padTag(e.Tag))
		binary.LittleEndian.PutUint32(rec[4:8], uint32(payloadPos))
		binary.LittleEndian.PutUint32(rec[8:12], uint32(len(e.Data)))
		copy(buf[payloadPos:payloadPos+len(e.Data)], e.Data)
		payloadPos += len(e.Data)
	}

	return buf
}

func padTag(tag string) []byte {
	b := make([]byte, 4)
	copy(b, tag)
	return b
}

// AddEntry appends a new tagged entry. If tag already exists its data is
// replaced in place instead, keeping entry order stable.
func (f *FTAB) AddEntry(tag string, data []byte) {
	for i := range f.Entries {
		if f.Entries[i].Tag == tag {
			f.Entries[i].Data = append([]byte(nil), data...)
			return
		}
	}
	f.Entries = append(f.Entries, Entry{Tag: tag, Data: append([]byte(nil), data...)})
}

// GetEntryPtr returns the bytes stored under tag, if present.
func (f *FTAB) GetEntryPtr(tag string) ([]byte, bool) {
	for _, e := range f.Entries {
		if e.Tag == tag {
			return e.Data, true
		}
	}
	return nil, false
}
