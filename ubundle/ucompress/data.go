// Package ucompress implements the two codecs a bundle uses: LZMA for the data blocks
// and LZ4 block mode for the block-info section.
package ucompress

import (
	"github.com/ulikunitz/xz/lzma"
)

// Type is the compression id stored in the low 6 bits of header and block flags.
// These values are format constants.
type Type uint32

const (
	TypeNone  Type = 0
	TypeLZMA  Type = 1
	TypeLZ4   Type = 2
	TypeLZ4HC Type = 3

	TypeMask = 0x3F
)

const (
	// LZMADictCap is the dictionary size written into the coder properties, 2^23.
	LZMADictCap = 1 << 23
	// LZMAPropertiesSize is the properties header a bundle block starts with:
	// one lc/lp/pb byte and a little-endian uint32 dictionary size.
	LZMAPropertiesSize = 5
	// lzmaClassicHeaderSize is the .lzma file header: properties plus an 8-byte uncompressed size.
	lzmaClassicHeaderSize = LZMAPropertiesSize + 8

	// MaxLZ4Ratio bounds how far one LZ4 block byte can expand: a match length is extended
	// by at most 255 per byte.
	MaxLZ4Ratio = 255
	// MaxDecompressedSize caps any single block's declared size.
	MaxDecompressedSize = 1 << 30
	// lzmaInitialGrowth limits how much is reserved up front for an LZMA block before its
	// stream has produced anything.
	lzmaInitialGrowth = 64
)

// LZMAProperties are the coder parameters: 3 literal context bits, 0 literal position bits,
// 2 position state bits.
var LZMAProperties = lzma.Properties{LC: 3, LP: 0, PB: 2}
