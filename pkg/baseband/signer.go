// Package baseband implements the baseband firmware signer: given a zip
// archive of baseband images and a TSS baseband response, it patches every
// signed element's signature, drops everything else from the archive, and
// (when a nonce was used) splices in a fresh BBTicket.
//
// The source this is derived from deletes zip entries by a recorded index
// set computed before the deletions happen, which can silently remove the
// wrong member once earlier deletions renumber the remaining entries. This
// package sidesteps the bug class entirely rather than reproducing it: all
// mutations are addressed by member name against pkg/ziparchive's Rewrite,
// which rebuilds the archive from a name-keyed mutation set in one pass, so
// there is no index to go stale.
package baseband

import (
	"fmt"
	"os"
	"strings"

	"github.com/restoreos/restored/internal/engineerr"
	"github.com/restoreos/restored/internal/plist"
	"github.com/restoreos/restored/pkg/binformat/fls"
	"github.com/restoreos/restored/pkg/binformat/mbn"
	"github.com/restoreos/restored/pkg/ticket"
	"github.com/restoreos/restored/pkg/ziparchive"
)

const eblFLSMember = "ebl.fls"

// Sign patches zipPath's baseband archive in place: every "<Element>-Blob"
// entry in response's BasebandFirmware dict is resolved to a zip member,
// re-signed via update_sig_blob, and written back. Every other member is
// dropped, except that when nonce is non-empty any remaining .fls/.mbn/
// .elf/.bin file survives (so a subsequent ebl.fls ticket splice has
// something to splice into). bbTicket supplies BBTicket when nonce is set.
func Sign(zipPath string, response plist.Dict, bbTicket ticket.Ticket, nonce []byte) error {
	archive, err := ziparchive.Open(zipPath)
	if err != nil {
		return engineerr.Archive(zipPath, err)
	}

	mutations, sawFLS, signedAny, err := signElements(archive, response)
	if err != nil {
		archive.Close()
		return err
	}
	if !signedAny {
		archive.Close()
		return engineerr.Content(zipPath, "no baseband elements were signed")
	}

	signed := make(map[string]bool, len(mutations))
	for _, m := range mutations {
		signed[m.Name] = true
	}
	for _, name := range archive.ListContents() {
		if signed[name] {
			continue
		}
		if len(nonce) > 0 && isSignableFile(name) {
			continue
		}
		mutations = append(mutations, ziparchive.Mutation{Name: name, Delete: true})
	}

	if len(nonce) > 0 {
		ticketMutation, err := spliceTicket(archive, mutations, sawFLS, bbTicket)
		if err != nil {
			archive.Close()
			return err
		}
		mutations = append(mutations, ticketMutation)
	}

	tmpPath := zipPath + ".signed"
	rewriteErr := ziparchive.Rewrite(archive, tmpPath, mutations)
	closeErr := archive.Close()
	if rewriteErr != nil {
		os.Remove(tmpPath)
		return engineerr.Archive(zipPath, rewriteErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return engineerr.Archive(zipPath, closeErr)
	}

	if err := os.Rename(tmpPath, zipPath); err != nil {
		os.Remove(tmpPath)
		return engineerr.Archive(zipPath, fmt.Errorf("install signed archive: %w", err))
	}
	return nil
}

// signElements patches every resolvable "<Element>-Blob" entry and reports
// whether any signed file was FLS (sawFLS, OR-accumulated across the whole
// set — spec.md Testable Property 7 keys the nonce-path ticket placement on
// "any signed file is FLS", not on whichever family happened to be signed
// last) alongside whether anything was signed at all.
func signElements(archive *ziparchive.Archive, response plist.Dict) ([]ziparchive.Mutation, bool, bool, error) {
	bbfw, ok := response.Dict("BasebandFirmware")
	if !ok {
		return nil, false, false, engineerr.Content("BasebandFirmware", "missing from baseband TSS response")
	}

	var mutations []ziparchive.Mutation
	sawFLS := false
	signedAny := false

	for key, val := range bbfw {
		element, ok := elementFromBlobKey(key)
		if !ok {
			continue
		}
		blob, ok := dataValue(val)
		if !ok {
			continue
		}

		filename, ok := fileForElement(element)
		if !ok {
			return nil, false, false, engineerr.Content(element, "unknown baseband element")
		}
		if !archive.FileExists(filename) {
			return nil, false, false, engineerr.Content(filename, "baseband element file missing from archive")
		}

		raw, err := archive.ExtractToMemory(filename)
		if err != nil {
			return nil, false, false, engineerr.Archive(filename, err)
		}

		var patched []byte
		if strings.HasSuffix(filename, ".fls") {
			f, err := fls.Parse(raw)
			if err != nil {
				return nil, false, false, engineerr.BinaryFormat(filename, err)
			}
			if err := f.UpdateSigBlob(blob); err != nil {
				return nil, false, false, engineerr.BinaryFormat(filename, err)
			}
			patched = f.Serialize()
			sawFLS = true
		} else {
			m, err := mbn.Parse(raw)
			if err != nil {
				return nil, false, false, engineerr.BinaryFormat(filename, err)
			}
			if err := m.UpdateSigBlob(blob); err != nil {
				return nil, false, false, engineerr.BinaryFormat(filename, err)
			}
			patched = m.Serialize()
		}

		mutations = append(mutations, ziparchive.Mutation{Name: filename, Data: patched})
		signedAny = true
	}

	return mutations, sawFLS, signedAny, nil
}

// spliceTicket places bbTicket's BBTicket blob per spec.md Testable
// Property 7: when any signed file was FLS, splice it into ebl.fls;
// otherwise (MBN-only) add it as a new bbticket.der member.
func spliceTicket(archive *ziparchive.Archive, mutations []ziparchive.Mutation, sawFLS bool, bbTicket ticket.Ticket) (ziparchive.Mutation, error) {
	blob, ok := bbTicket.BBTicket()
	if !ok {
		return ziparchive.Mutation{}, engineerr.Ticket("BBTicket", fmt.Errorf("no baseband ticket available to splice"))
	}

	if !sawFLS {
		return ziparchive.Mutation{Name: "bbticket.der", Data: blob}, nil
	}

	var raw []byte
	if data, ok := findMutationData(mutations, eblFLSMember); ok {
		raw = data
	} else {
		if !archive.FileExists(eblFLSMember) {
			return ziparchive.Mutation{}, engineerr.Content(eblFLSMember, "ebl.fls missing from archive for ticket splice")
		}
		extracted, err := archive.ExtractToMemory(eblFLSMember)
		if err != nil {
			return ziparchive.Mutation{}, engineerr.Archive(eblFLSMember, err)
		}
		raw = extracted
	}

	f, err := fls.Parse(raw)
	if err != nil {
		return ziparchive.Mutation{}, engineerr.BinaryFormat(eblFLSMember, err)
	}
	f.InsertTicket(blob)
	return ziparchive.Mutation{Name: eblFLSMember, Data: f.Serialize()}, nil
}

func findMutationData(mutations []ziparchive.Mutation, name string) ([]byte, bool) {
	for _, m := range mutations {
		if m.Name == name && !m.Delete {
			return m.Data, true
		}
	}
	return nil, false
}

func dataValue(v any) ([]byte, bool) {
	b, ok := v.([]byte)
	return b, ok
}
