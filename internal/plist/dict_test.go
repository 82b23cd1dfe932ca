package plist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictTypedAccessors(t *testing.T) {
	d := Dict{
		"Name":    "KernelCache",
		"Erase":   true,
		"Size":    int64(4096),
		"Blob":    []byte{0x01, 0x02, 0x03},
		"Nested":  Dict{"Inner": "value"},
		"Strings": []any{"a", "b", "c"},
	}

	name, ok := d.String("Name")
	require.True(t, ok)
	assert.Equal(t, "KernelCache", name)

	_, ok = d.String("Erase")
	assert.False(t, ok, "wrong type should report absent, not panic")

	erase, ok := d.Bool("Erase")
	require.True(t, ok)
	assert.True(t, erase)

	size, ok := d.Int("Size")
	require.True(t, ok)
	assert.EqualValues(t, 4096, size)

	blob, ok := d.Data("Blob")
	require.True(t, ok)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, blob)

	nested, ok := d.Dict("Nested")
	require.True(t, ok)
	inner, ok := nested.String("Inner")
	require.True(t, ok)
	assert.Equal(t, "value", inner)

	strs, ok := d.StringArray("Strings")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, strs)

	_, ok = d.String("Missing")
	assert.False(t, ok)
}

func TestDictRequireHelpers(t *testing.T) {
	d := Dict{"Path": "Firmware/iBoot"}

	_, err := d.RequireData("Blob")
	require.Error(t, err)
	var missing *ErrMissingKey
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "Blob", missing.Key)

	path, err := d.RequireString("Path")
	require.NoError(t, err)
	assert.Equal(t, "Firmware/iBoot", path)
}

func TestDictMerge(t *testing.T) {
	base := Dict{"A": "1", "B": "2"}
	base.Merge(Dict{"B": "override", "C": "3"})
	assert.Equal(t, "1", base["A"])
	assert.Equal(t, "override", base["B"])
	assert.Equal(t, "3", base["C"])
}
