// Package ziparchive provides the read/rewrite operations the IPSW and
// baseband-archive pipelines need over a zip file: locate a member by name,
// extract it to memory or to a temp file, and replace/add/delete members
// while copying everything else through unchanged. No third-party zip
// rewriter appears anywhere in the retrieval pack, and stdlib archive/zip
// already exposes exactly the streaming reader/writer primitives this
// needs, so this package is a thin wrapper rather than a hand-rolled codec.
package ziparchive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
)

// Archive is an opened, read-only view of a zip file backed by path.
type Archive struct {
	path   string
	reader *zip.ReadCloser
}

// Open opens the zip file at path for reading.
func Open(path string) (*Archive, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("ziparchive: open %s: %w", path, err)
	}
	return &Archive{path: path, reader: r}, nil
}

// Close releases the archive's underlying file handle.
func (a *Archive) Close() error {
	return a.reader.Close()
}

// FileExists reports whether name is present in the archive.
func (a *Archive) FileExists(name string) bool {
	_, err := a.find(name)
	return err == nil
}

// ListContents returns every member's path.
func (a *Archive) ListContents() []string {
	names := make([]string, 0, len(a.reader.File))
	for _, f := range a.reader.File {
		names = append(names, f.Name)
	}
	return names
}

// ExtractToMemory reads name's entire decompressed contents.
func (a *Archive) ExtractToMemory(name string) ([]byte, error) {
	f, err := a.find(name)
	if err != nil {
		return nil, err
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("ziparchive: open member %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("ziparchive: read member %s: %w", name, err)
	}
	return data, nil
}

// ExtractToFile streams name's decompressed contents to destPath.
func (a *Archive) ExtractToFile(name, destPath string) error {
	f, err := a.find(name)
	if err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("ziparchive: open member %s: %w", name, err)
	}
	defer rc.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("ziparchive: create %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("ziparchive: write %s: %w", destPath, err)
	}
	return nil
}

func (a *Archive) find(name string) (*zip.File, error) {
	for _, f := range a.reader.File {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("ziparchive: member %q not found in %s", name, a.path)
}

// Mutation describes one member to write into a rewritten archive: Replace
// or Add members get Data written verbatim; Delete members are simply
// omitted from the copy.
type Mutation struct {
	Name   string
	Data   []byte // ignored when Delete is true
	Delete bool
}

// Rewrite produces a new zip file at destPath containing every member of
// src, with the given mutations applied. Replace/Add mutations are keyed by
// name: a name matching an existing member replaces it, any other name is
// appended. Members are written in the source archive's order, with
// appended members following at the end.
func Rewrite(src *Archive, destPath string, mutations []Mutation) error {
	byName := make(map[string]Mutation, len(mutations))
	var toAppend []Mutation
	for _, m := range mutations {
		if _, existed := findMember(src, m.Name); existed {
			byName[m.Name] = m
		} else if !m.Delete {
			toAppend = append(toAppend, m)
		}
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("ziparchive: create %s: %w", destPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	for _, f := range src.reader.File {
		if m, ok := byName[f.Name]; ok {
			if m.Delete {
				continue
			}
			if err := writeMember(zw, f.Name, m.Data); err != nil {
				return err
			}
			continue
		}
		if err := copyMember(zw, f); err != nil {
			return err
		}
	}

	for _, m := range toAppend {
		if err := writeMember(zw, m.Name, m.Data); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("ziparchive: finalize %s: %w", destPath, err)
	}
	return nil
}

func findMember(a *Archive, name string) (*zip.File, bool) {
	f, err := a.find(name)
	return f, err == nil
}

func copyMember(zw *zip.Writer, f *zip.File) error {
	w, err := zw.CreateHeader(&f.FileHeader)
	if err != nil {
		return fmt.Errorf("ziparchive: copy header for %s: %w", f.Name, err)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("ziparchive: open member %s: %w", f.Name, err)
	}
	defer rc.Close()
	if _, err := io.Copy(w, rc); err != nil {
		return fmt.Errorf("ziparchive: copy member %s: %w", f.Name, err)
	}
	return nil
}

func writeMember(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("ziparchive: create member %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("ziparchive: write member %s: %w", name, err)
	}
	return nil
}
