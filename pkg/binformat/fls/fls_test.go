package fls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSample() *FLS {
	return &FLS{
		Segments: []Segment{
			{Name: ".text", Data: []byte("entrypoint-bytes")},
			{Name: ".data", Data: []byte("data-bytes")},
		},
		Signature: make([]byte, 8),
	}
}

func TestRoundTripWithoutTicket(t *testing.T) {
	f := buildSample()
	buf := f.Serialize()

	parsed, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, f.Segments, parsed.Segments)
	assert.Equal(t, f.Signature, parsed.Signature)
	assert.Nil(t, parsed.Ticket)
	assert.Equal(t, buf, parsed.Serialize())
}

func TestInsertTicketGrowsBuffer(t *testing.T) {
	f := buildSample()
	before := len(f.Serialize())

	ticket := []byte("fake-bbticket-der-bytes")
	f.InsertTicket(ticket)
	buf := f.Serialize()
	assert.Greater(t, len(buf), before)

	parsed, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, ticket, parsed.Ticket)
	assert.Equal(t, f.Segments, parsed.Segments)
}

func TestUpdateSigBlobKeepsTicketIntact(t *testing.T) {
	f := buildSample()
	f.InsertTicket([]byte("ticket-bytes"))

	blob := make([]byte, 8)
	for i := range blob {
		blob[i] = byte(0xAA)
	}
	require.NoError(t, f.UpdateSigBlob(blob))

	parsed, err := Parse(f.Serialize())
	require.NoError(t, err)
	assert.Equal(t, blob, parsed.Signature)
	assert.Equal(t, []byte("ticket-bytes"), parsed.Ticket)
}

func TestUpdateSigBlobRejectsSizeMismatch(t *testing.T) {
	f := buildSample()
	assert.Error(t, f.UpdateSigBlob(make([]byte, 9)))
}

func TestParseRejectsBadMagic(t *testing.T) {
	buf := buildSample().Serialize()
	buf[0] = 'Z'
	_, err := Parse(buf)
	assert.Error(t, err)
}
