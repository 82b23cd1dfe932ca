package ziparchive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSampleZip(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, contents := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(contents))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestFileExistsAndExtract(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.ipsw")
	writeSampleZip(t, path, map[string]string{
		"BuildManifest.plist": "manifest-bytes",
		"Firmware/ebl.fls":    "fls-bytes",
	})

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	assert.True(t, a.FileExists("BuildManifest.plist"))
	assert.False(t, a.FileExists("missing"))

	data, err := a.ExtractToMemory("Firmware/ebl.fls")
	require.NoError(t, err)
	assert.Equal(t, "fls-bytes", string(data))

	assert.ElementsMatch(t, []string{"BuildManifest.plist", "Firmware/ebl.fls"}, a.ListContents())
}

func TestExtractToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.ipsw")
	writeSampleZip(t, path, map[string]string{"a.bin": "abc"})

	a, err := Open(path)
	require.NoError(t, err)
	defer a.Close()

	dest := filepath.Join(dir, "out.bin")
	require.NoError(t, a.ExtractToFile("a.bin", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestRewriteReplaceAddDelete(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.zip")
	writeSampleZip(t, src, map[string]string{
		"keep.bin":    "unchanged",
		"replace.bin": "original",
		"delete.bin":  "gone-soon",
	})

	a, err := Open(src)
	require.NoError(t, err)
	defer a.Close()

	dest := filepath.Join(dir, "out.zip")
	err = Rewrite(a, dest, []Mutation{
		{Name: "replace.bin", Data: []byte("rewritten")},
		{Name: "delete.bin", Delete: true},
		{Name: "new.bin", Data: []byte("brand-new")},
	})
	require.NoError(t, err)

	out, err := Open(dest)
	require.NoError(t, err)
	defer out.Close()

	assert.True(t, out.FileExists("keep.bin"))
	assert.False(t, out.FileExists("delete.bin"))

	replaced, err := out.ExtractToMemory("replace.bin")
	require.NoError(t, err)
	assert.Equal(t, "rewritten", string(replaced))

	added, err := out.ExtractToMemory("new.bin")
	require.NoError(t, err)
	assert.Equal(t, "brand-new", string(added))

	unchanged, err := out.ExtractToMemory("keep.bin")
	require.NoError(t, err)
	assert.Equal(t, "unchanged", string(unchanged))
}
