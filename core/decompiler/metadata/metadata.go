// Package metadata detects and strips the CBOR encoded compiler metadata
// solc appends to runtime code.
//
// The trailer is a CBOR map followed by its length as a big-endian
// uint16. Indefinite lengths and duplicate keys are rejected, since solc
// never emits them.
package metadata

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"github.com/mr-tron/base58"
	"github.com/multiformats/go-multihash"
)

var errUnsupported = errors.New("metadata: unsupported trailer")

var decMode = func() cbor.DecMode {
	dm, err := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		IndefLength:      cbor.IndefLengthForbidden,
		MaxNestedLevels:  4,
		MaxMapPairs:      64,
		MaxArrayElements: 64,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return dm
}()

const (
	majorBytes = 2
	majorText  = 3
)

// trailer is the wire form of the map. Solc is a 3 byte version for
// releases and a text string for prereleases.
type trailer struct {
	IPFS         []byte          `cbor:"ipfs"`
	Bzzr0        []byte          `cbor:"bzzr0"`
	Bzzr1        []byte          `cbor:"bzzr1"`
	Solc         cbor.RawMessage `cbor:"solc"`
	Experimental *bool           `cbor:"experimental"`
}

// Metadata is the decoded trailer.
type Metadata struct {
	IPFS         []byte // multihash of the metadata JSON
	Bzzr0        []byte
	Bzzr1        []byte
	Solc         string // "0.8.24", or the full version text of prereleases
	Experimental bool

	// Keys lists every key of the map, known or not, sorted.
	Keys []string
	// Raw is the CBOR map without the length suffix.
	Raw []byte
}

// IPFSHash renders the IPFS multihash the way IPFS does (base58, "Qm...").
func (m *Metadata) IPFSHash() string {
	if len(m.IPFS) == 0 {
		return ""
	}
	return base58.Encode(m.IPFS)
}

func (m *Metadata) String() string {
	switch {
	case len(m.IPFS) > 0:
		return fmt.Sprintf("solc %s ipfs://%s", m.Solc, m.IPFSHash())
	case len(m.Bzzr1) > 0:
		return fmt.Sprintf("solc %s bzzr1://%x", m.Solc, m.Bzzr1)
	case len(m.Bzzr0) > 0:
		return fmt.Sprintf("solc %s bzzr0://%x", m.Solc, m.Bzzr0)
	}
	return "solc " + m.Solc
}

// Split separates executable code from a trailing metadata block. When no
// well-formed trailer is present the code is returned unchanged with a
// nil Metadata.
func Split(code []byte) ([]byte, *Metadata) {
	if len(code) < 2 {
		return code, nil
	}
	n := int(binary.BigEndian.Uint16(code[len(code)-2:]))
	if n == 0 || n+2 > len(code) {
		return code, nil
	}
	start := len(code) - 2 - n
	md, err := parse(code[start : len(code)-2])
	if err != nil {
		return code, nil
	}
	return code[:start], md
}

func parse(raw []byte) (*Metadata, error) {
	var entries map[string]cbor.RawMessage
	if err := decMode.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	var t trailer
	if err := decMode.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	md := &Metadata{Raw: raw}
	for k := range entries {
		md.Keys = append(md.Keys, k)
	}
	sort.Strings(md.Keys)

	known := 0
	if _, ok := entries["ipfs"]; ok {
		if _, err := multihash.Cast(t.IPFS); err != nil {
			return nil, err
		}
		md.IPFS = t.IPFS
		known++
	}
	for _, b := range [][]byte{t.Bzzr0, t.Bzzr1} {
		if b == nil {
			continue
		}
		if len(b) != 32 {
			return nil, errUnsupported
		}
		known++
	}
	md.Bzzr0, md.Bzzr1 = t.Bzzr0, t.Bzzr1
	if t.Solc != nil {
		solc, err := solcVersion(t.Solc)
		if err != nil {
			return nil, err
		}
		md.Solc = solc
		known++
	}
	if t.Experimental != nil {
		md.Experimental = *t.Experimental
		known++
	}
	if known == 0 {
		return nil, errUnsupported
	}
	return md, nil
}

func solcVersion(raw cbor.RawMessage) (string, error) {
	switch raw[0] >> 5 {
	case majorBytes:
		var v []byte
		if err := decMode.Unmarshal(raw, &v); err != nil {
			return "", err
		}
		if len(v) != 3 {
			return "", errUnsupported
		}
		return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2]), nil
	case majorText:
		var s string
		err := decMode.Unmarshal(raw, &s)
		return s, err
	}
	return "", errUnsupported
}
