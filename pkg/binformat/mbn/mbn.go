// Package mbn parses and rewrites MBN (modem binary) containers: a single
// signed binary blob used by several baseband firmware files (sbl1.mbn,
// dbl.mbn, ENPRG.mbn, ...). The format is pure: parse bytes into a
// structure, mutate the structure, serialize back to bytes.
//
// Layout (all integers little-endian):
//
//	offset  size  field
//	0       4     magic ("QCSD")
//	4       4     version
//	8       4     total image size (must equal len(buffer))
//	12      4     code size
//	16      4     signature offset
//	20      4     signature size
//	24      4     cert-chain offset
//	28      4     cert-chain size
//	32      -     code bytes ([code size] bytes)
//	...     -     signature bytes ([signature size] bytes)
//	...     -     cert-chain bytes ([cert-chain size] bytes)
package mbn

import (
	"encoding/binary"
	"fmt"
)

const (
	headerSize = 32
	magic      = "QCSD"
)

// MBN is a parsed modem binary container.
type MBN struct {
	Version   uint32
	Code      []byte
	Signature []byte
	CertChain []byte
}

// Parse reads buf into an MBN. The signature region's byte offset and size
// are validated against the buffer length.
func Parse(buf []byte) (*MBN, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("mbn: buffer too small for header (%d bytes)", len(buf))
	}
	if string(buf[0:4]) != magic {
		return nil, fmt.Errorf("mbn: bad magic %q", buf[0:4])
	}

	version := binary.LittleEndian.Uint32(buf[4:8])
	imageSize := binary.LittleEndian.Uint32(buf[8:12])
	codeSize := binary.LittleEndian.Uint32(buf[12:16])
	sigOffset := binary.LittleEndian.Uint32(buf[16:20])
	sigSize := binary.LittleEndian.Uint32(buf[20:24])
	certOffset := binary.LittleEndian.Uint32(buf[24:28])
	certSize := binary.LittleEndian.Uint32(buf[28:32])

	if int(imageSize) != len(buf) {
		return nil, fmt.Errorf("mbn: header image size %d does not match buffer length %d", imageSize, len(buf))
	}
	if err := boundsCheck(len(buf), headerSize, int(codeSize)); err != nil {
		return nil, fmt.Errorf("mbn: code region: %w", err)
	}
	if err := boundsCheck(len(buf), int(sigOffset), int(sigSize)); err != nil {
		return nil, fmt.Errorf("mbn: signature region: %w", err)
	}
	if err := boundsCheck(len(buf), int(certOffset), int(certSize)); err != nil {
		return nil, fmt.Errorf("mbn: cert chain region: %w", err)
	}

	return &MBN{
		Version:   version,
		Code:      append([]byte(nil), buf[headerSize:headerSize+int(codeSize)]...),
		Signature: append([]byte(nil), buf[sigOffset:sigOffset+sigSize]...),
		CertChain: append([]byte(nil), buf[certOffset:certOffset+certSize]...),
	}, nil
}

func boundsCheck(bufLen, offset, size int) error {
	if offset < 0 || size < 0 || offset+size > bufLen {
		return fmt.Errorf("region [%d:%d] out of bounds for %d-byte buffer", offset, offset+size, bufLen)
	}
	return nil
}

// Serialize reproduces the MBN's on-disk representation.
func (m *MBN) Serialize() []byte {
	sigOffset := headerSize + len(m.Code)
	certOffset := sigOffset + len(m.Signature)
	total := certOffset + len(m.CertChain)

	buf := make([]byte, total)
	copy(buf[0:4], magic)
	binary.LittleEndian.PutUint32(buf[4:8], m.Version)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(total))
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(m.Code)))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(sigOffset))
	binary.LittleEndian.PutUint32(buf[20:24], uint32(len(m.Signature)))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(certOffset))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(len(m.CertChain)))

	copy(buf[headerSize:sigOffset], m.Code)
	copy(buf[sigOffset:certOffset], m.Signature)
	copy(buf[certOffset:total], m.CertChain)
	return buf
}

// UpdateSigBlob replaces the signature region with blob. The signature
// region is a fixed-size slot: blob must be exactly the size of the
// existing signature, keeping the overall serialized size unchanged (spec
// invariant: "serialize() yields a buffer ... whose length is unchanged").
func (m *MBN) UpdateSigBlob(blob []byte) error {
	if len(blob) != len(m.Signature) {
		return fmt.Errorf("mbn: signature blob is %d bytes, expected %d", len(blob), len(m.Signature))
	}
	m.Signature = append([]byte(nil), blob...)
	return nil
}
