package metadata

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/require"
)

var runtime = []byte{0x60, 0x80, 0x60, 0x40, 0x52, 0x00}

// solcTrailer builds {"ipfs": <multihash>, "solc": 0.8.20} and its length.
func solcTrailer(digest byte) []byte {
	mh := append([]byte{0x12, 0x20}, bytes.Repeat([]byte{digest}, 32)...)
	var b []byte
	b = append(b, 0xa2)
	b = append(b, 0x64)
	b = append(b, "ipfs"...)
	b = append(b, 0x58, byte(len(mh)))
	b = append(b, mh...)
	b = append(b, 0x64)
	b = append(b, "solc"...)
	b = append(b, 0x43, 0, 8, 20)
	return append(b, 0, byte(len(b)))
}

func TestSplitIPFS(t *testing.T) {
	trailer := solcTrailer(0xab)
	require.Equal(t, byte(0x33), trailer[len(trailer)-1])

	code, md := Split(append(append([]byte{}, runtime...), trailer...))
	require.Equal(t, runtime, code)
	require.NotNil(t, md)
	require.Equal(t, "0.8.20", md.Solc)
	require.Equal(t, []string{"ipfs", "solc"}, md.Keys)
	require.Len(t, md.IPFS, 34)

	hash := md.IPFSHash()
	require.True(t, strings.HasPrefix(hash, "Qm"), hash)
	decoded, err := base58.Decode(hash)
	require.NoError(t, err)
	require.Equal(t, md.IPFS, decoded)
	require.Equal(t, "solc 0.8.20 ipfs://"+hash, md.String())
}

func TestSplitBzzrAndExperimental(t *testing.T) {
	var b []byte
	b = append(b, 0xa2, 0x65)
	b = append(b, "bzzr1"...)
	b = append(b, 0x58, 0x20)
	b = append(b, bytes.Repeat([]byte{0x11}, 32)...)
	b = append(b, 0x6c)
	b = append(b, "experimental"...)
	b = append(b, 0xf5)
	b = append(b, 0, byte(len(b)))

	code, md := Split(append(append([]byte{}, runtime...), b...))
	require.Equal(t, runtime, code)
	require.True(t, md.Experimental)
	require.Len(t, md.Bzzr1, 32)
	require.Empty(t, md.Solc)
	require.Contains(t, md.String(), "bzzr1://1111")
}

func TestSplitPrereleaseVersion(t *testing.T) {
	var b []byte
	b = append(b, 0xa1, 0x64)
	b = append(b, "solc"...)
	b = append(b, 0x78, 0x1a)
	b = append(b, "0.4.26-nightly.2018.9.25+x"...)
	b = append(b, 0, byte(len(b)))

	_, md := Split(b)
	require.NotNil(t, md)
	require.Equal(t, "0.4.26-nightly.2018.9.25+x", md.Solc)
}

func TestSplitRejects(t *testing.T) {
	for name, code := range map[string][]byte{
		"empty":        nil,
		"short":        {0x00},
		"zero length":  {0x00, 0x00, 0x00},
		"too long":     {0x60, 0x00, 0x00, 0x10},
		"not a map":    {0x60, 0x01, 0x00, 0x01},
		"unknown keys": {0xa1, 0x61, 'x', 0x01, 0x00, 0x04},
		"bad ipfs":     {0xa1, 0x64, 'i', 'p', 'f', 's', 0x42, 0x12, 0x20, 0x00, 0x09},
		"trailing":     append(solcTrailer(1)[:52], 0x00, 0x00, 0x35),
		"duplicate key": {
			0xa2, 0x64, 's', 'o', 'l', 'c', 0x43, 0, 8, 20,
			0x64, 's', 'o', 'l', 'c', 0x43, 0, 8, 20, 0x00, 0x13,
		},
		"indefinite map": {0xbf, 0x64, 's', 'o', 'l', 'c', 0x43, 0, 8, 20, 0xff, 0x00, 0x0b},
		"short version":  {0xa1, 0x64, 's', 'o', 'l', 'c', 0x42, 0, 8, 0x00, 0x09},
		"short bzzr0":    {0xa1, 0x65, 'b', 'z', 'z', 'r', '0', 0x41, 0x01, 0x00, 0x09},
	} {
		out, md := Split(code)
		require.Nil(t, md, name)
		require.Equal(t, code, out, name)
	}
}
