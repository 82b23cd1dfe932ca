package ftab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSample() *FTAB {
	return &FTAB{
		Tag: "rkos",
		Entries: []Entry{
			{Tag: "rkos", Data: []byte("rkos-payload-bytes")},
			{Tag: "rrko", Data: []byte("rrko-payload-bytes")},
		},
	}
}

func TestRoundTripPreservesOrderAndBytes(t *testing.T) {
	f := buildSample()
	buf := f.Write()

	parsed, err := Parse(buf)
	require.NoError(t, err)
	assert.Equal(t, f.Tag, parsed.Tag)
	assert.Equal(t, f.Entries, parsed.Entries)
	assert.Equal(t, buf, parsed.Write())
}

func TestAddEntryAppendsWithoutDisturbingExisting(t *testing.T) {
	f := buildSample()
	original := append([]Entry(nil), f.Entries...)

	f.AddEntry("rbop", []byte("bootloader-payload"))
	assert.Equal(t, original, f.Entries[:len(original)])

	data, ok := f.GetEntryPtr("rbop")
	require.True(t, ok)
	assert.Equal(t, []byte("bootloader-payload"), data)
}

func TestAddEntryReplacesExistingTagInPlace(t *testing.T) {
	f := buildSample()
	f.AddEntry("rkos", []byte("replaced-bytes"))

	require.Len(t, f.Entries, 2)
	assert.Equal(t, "rkos", f.Entries[0].Tag)
	data, ok := f.GetEntryPtr("rkos")
	require.True(t, ok)
	assert.Equal(t, []byte("replaced-bytes"), data)
}

func TestGetEntryPtrMissingTag(t *testing.T) {
	f := buildSample()
	_, ok := f.GetEntryPtr("none")
	assert.False(t, ok)
}

func TestParseRejectsBadMagic(t *testing.T) {
	buf := buildSample().Write()
	buf[0] = 'x'
	_, err := Parse(buf)
	assert.Error(t, err)
}
