// Package fls parses and rewrites FLS (firmware load script) containers:
// the ELF-segment-based scripts used for baseband bootloader stages such as
// ebl.fls. Unlike MBN, an FLS can carry an optional trailing ticket region
// that insert_ticket creates or replaces; because that region isn't part of
// the fixed header, adding a ticket changes the serialized length.
//
// Layout (all integers little-endian):
//
//	offset  size  field
//	0       4     magic ("FLS1")
//	4       4     segment count
//	8       4     signature size
//	12      4     header size (always 16)
//	16      -     segment records, segment count of them:
//	                4   name length (uint32)
//	                -   name bytes
//	                4   data length (uint32)
//	                -   data bytes
//	...     -     signature bytes (signature size of them)
//	...     4     ticket trailer magic ("TKT1"), only if a ticket is present
//	...     4     ticket length (uint32)
//	...     -     ticket bytes
package fls

import (
	"encoding/binary"
	"fmt"
)

const (
	headerSize    = 16
	magic         = "FLS1"
	ticketMagic   = "TKT1"
	ticketTrailer = 8 // magic + length, not counting ticket bytes
)

// Segment is one embedded ELF-like load-script segment.
type Segment struct {
	Name string
	Data []byte
}

// FLS is a parsed firmware load script.
type FLS struct {
	Segments  []Segment
	Signature []byte

	// Ticket is nil when the script carries no spliced ticket.
	Ticket []byte
}

// Parse reads buf into an FLS.
func Parse(buf []byte) (*FLS, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("fls: buffer too small for header (%d bytes)", len(buf))
	}
	if string(buf[0:4]) != magic {
		return nil, fmt.Errorf("fls: bad magic %q", buf[0:4])
	}

	segCount := binary.LittleEndian.Uint32(buf[4:8])
	sigSize := binary.LittleEndian.Uint32(buf[8:12])

	pos := headerSize
	segments := make([]Segment, 0, segCount)
	for i := uint32(0); i < segCount; i++ {
		name, next, err := readLenPrefixed(buf, pos)
		if err != nil {
			return nil, fmt.Errorf("fls: segment %d name: %w", i, err)
		}
		pos = next

		data, next, err := readLenPrefixed(buf, pos)
		if err != nil {
			return nil, fmt.Errorf("fls: segment %d data: %w", i, err)
		}
		pos = next

		segments = append(segments, Segment{Name: string(name), Data: data})
	}

	if pos+int(sigSize) > len(buf) {
		return nil, fmt.Errorf("fls: signature region [%d:%d] out of bounds for %d-byte buffer", pos, pos+int(sigSize), len(buf))
	}
	signature := append([]byte(nil), buf[pos:pos+int(sigSize)]...)
	pos += int(sigSize)

	var ticket []byte
	if rem := buf[pos:]; len(rem) >= ticketTrailer && string(rem[0:4]) == ticketMagic {
		tlen := binary.LittleEndian.Uint32(rem[4:8])
		if int(tlen) > len(rem)-ticketTrailer {
			return nil, fmt.Errorf("fls: ticket trailer declares %d bytes, only %d available", tlen, len(rem)-ticketTrailer)
		}
		ticket = append([]byte(nil), rem[ticketTrailer:ticketTrailer+int(tlen)]...)
	}

	return &FLS{Segments: segments, Signature: signature, Ticket: ticket}, nil
}

func readLenPrefixed(buf []byte, pos int) ([]byte, int, error) {
	if pos+4 > len(buf) {
		return nil, 0, fmt.Errorf("length prefix out of bounds at offset %d", pos)
	}
	n := binary.LittleEndian.Uint32(buf[pos : pos+4])
	pos += 4
	if pos+int(n) > len(buf) {
		return nil, 0, fmt.Errorf("value of length %d out of bounds at offset %d", n, pos)
	}
	val := append([]byte(nil), buf[pos:pos+int(n)]...)
	return val, pos + int(n), nil
}

func putLenPrefixed(buf []byte, pos int, val []byte) int {
	binary.LittleEndian.PutUint32(buf[pos:pos+4], uint32(len(val)))
	pos += 4
	copy(buf[pos:pos+len(val)], val)
	return pos + len(val)
}

// Serialize reproduces the FLS's on-disk representation.
func (f *FLS) Serialize() []byte {
	size := headerSize
	for _, seg := range f.Segments {
		size += 4 + len(seg.Name) + 4 + len(seg.Data)
	}
	size += len(f.Signature)
	if f.Ticket != nil {
		size += ticketTrailer + len(f.Ticket)
	}

	buf := make([]byte, size)
	copy(buf[0:4], magic)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(f.Segments)))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(f.Signature)))
	binary.LittleEndian.PutUint32(buf[12:16], headerSize)

	pos := headerSize
	for _, seg := range f.Segments {
		pos = putLenPrefixed(buf, pos, []byte(seg.Name))
		pos = putLenPrefixed(buf, pos, seg.Data)
	}

	copy(buf[pos:pos+len(f.Signature)], f.Signature)
	pos += len(f.Signature)

	if f.Ticket != nil {
		copy(buf[pos:pos+4], ticketMagic)
		binary.LittleEndian.PutUint32(buf[pos+4:pos+8], uint32(len(f.Ticket)))
		copy(buf[pos+8:], f.Ticket)
	}

	return buf
}

// UpdateSigBlob replaces the signature region; like MBN, the slot is
// fixed-size and blob must match it exactly.
func (f *FLS) UpdateSigBlob(blob []byte) error {
	if len(blob) != len(f.Signature) {
		return fmt.Errorf("fls: signature blob is %d bytes, expected %d", len(blob), len(f.Signature))
	}
	f.Signature = append([]byte(nil), blob...)
	return nil
}

// InsertTicket splices ticket into the script's trailing ticket region,
// creating it if absent. Unlike UpdateSigBlob this may change the
// serialized length.
func (f *FLS) InsertTicket(ticket []byte) {
	f.Ticket = append([]byte(nil), ticket...)
}
