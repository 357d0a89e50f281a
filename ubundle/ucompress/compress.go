package ucompress

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/ulikunitz/xz/lzma"
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeLZMA:
		return "lzma"
	case TypeLZ4:
		return "lz4"
	case TypeLZ4HC:
		return "lz4hc"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

var ErrSizeLimit = errors.New("ucompress: declared size is out of range")

// checkSize rejects declared sizes before they are used to allocate. maxRatio 0 means only
// MaxDecompressedSize applies.
func checkSize(caller string, compressedSize int, uncompressedSize int, maxRatio int) error {
	limit := MaxDecompressedSize
	if maxRatio > 0 && compressedSize <= limit/maxRatio {
		limit = compressedSize * maxRatio
	}
	if uncompressedSize < 0 || uncompressedSize > limit {
		return errors.Wrapf(
			ErrSizeLimit,
			"%s error: %d bytes declared for %d compressed bytes, limit %d",
			caller, uncompressedSize, compressedSize, limit,
		)
	}
	return nil
}

// ParseType is the inverse of Type.String.
func ParseType(s string) (Type, error) {
	for _, t := range []Type{TypeNone, TypeLZMA, TypeLZ4, TypeLZ4HC} {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, errors.Errorf("ParseType error: unknown compression %q", s)
}

// TypeFromFlags extracts the compression id from header or block flags.
func TypeFromFlags(flags uint32) Type {
	return Type(flags & TypeMask)
}

func Compress(data []byte, t Type) ([]byte, error) {
	switch t {
	case TypeNone:
		return data, nil
	case TypeLZMA:
		return CompressLZMA(data)
	case TypeLZ4:
		return CompressLZ4(data)
	case TypeLZ4HC:
		return CompressLZ4HC(data)
	default:
		return nil, errors.Errorf("Compress error: unsupported compression %s", t)
	}
}

// Decompress reverses Compress. The output must be exactly uncompressedSize bytes.
func Decompress(data []byte, t Type, uncompressedSize int) ([]byte, error) {
	switch t {
	case TypeNone:
		if len(data) != uncompressedSize {
			return nil, errors.Errorf(
				"Decompress error: stored size %d does not match expected %d",
				len(data), uncompressedSize,
			)
		}
		return data, nil
	case TypeLZMA:
		return DecompressLZMA(data, uncompressedSize)
	case TypeLZ4, TypeLZ4HC:
		return DecompressLZ4(data, uncompressedSize)
	default:
		return nil, errors.Errorf("Decompress error: unsupported compression %s", t)
	}
}

// CompressLZMA returns the 5-byte properties header followed by the raw LZMA stream,
// without an end-of-stream marker.
func CompressLZMA(data []byte) ([]byte, error) {
	properties := LZMAProperties
	buf := new(bytes.Buffer)
	config := lzma.WriterConfig{
		Properties:   &properties,
		DictCap:      LZMADictCap,
		SizeInHeader: true,
		Size:         int64(len(data)),
		EOSMarker:    false,
	}
	writer, err := config.NewWriter(buf)
	if err != nil {
		return nil, errors.Wrap(err, "CompressLZMA error creating writer")
	}
	if _, err := writer.Write(data); err != nil {
		return nil, errors.Wrap(err, "CompressLZMA error writing")
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "CompressLZMA error closing")
	}

	// the writer emits the classic header; blocks carry the size elsewhere, so the
	// 8 size bytes between the properties and the stream are dropped
	classic := buf.Bytes()
	if len(classic) < lzmaClassicHeaderSize {
		return nil, errors.Errorf("CompressLZMA error: output of %d bytes has no header", len(classic))
	}
	compressed := make([]byte, 0, len(classic)-8)
	compressed = append(compressed, classic[:LZMAPropertiesSize]...)
	compressed = append(compressed, classic[lzmaClassicHeaderSize:]...)
	return compressed, nil
}

func DecompressLZMA(data []byte, uncompressedSize int) ([]byte, error) {
	if len(data) < LZMAPropertiesSize {
		return nil, errors.Errorf("DecompressLZMA error: %d bytes cannot hold the properties header", len(data))
	}
	if err := checkSize("DecompressLZMA", len(data), uncompressedSize, 0); err != nil {
		return nil, err
	}
	sizeBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(sizeBytes, uint64(uncompressedSize))

	classic := make([]byte, 0, len(data)+8)
	classic = append(classic, data[:LZMAPropertiesSize]...)
	classic = append(classic, sizeBytes...)
	classic = append(classic, data[LZMAPropertiesSize:]...)

	reader, err := lzma.NewReader(bytes.NewReader(classic))
	if err != nil {
		return nil, errors.Wrap(err, "DecompressLZMA error creating reader")
	}
	// the buffer grows with what the stream actually yields instead of trusting the declared size
	buf := bytes.Buffer{}
	buf.Grow(lo.Min([]int{uncompressedSize, len(data) * lzmaInitialGrowth}))
	if _, err := io.CopyN(&buf, reader, int64(uncompressedSize)); err != nil {
		return nil, errors.Wrapf(err, "DecompressLZMA error reading %d bytes", uncompressedSize)
	}
	return buf.Bytes(), nil
}

// CompressLZ4 produces one LZ4 block. The destination is sized to the bound so
// incompressible input is stored as literals instead of being rejected.
func CompressLZ4(data []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	destination := make([]byte, bound)

	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, errors.Wrap(err, "CompressLZ4 error")
	}
	if written == 0 && len(data) > 0 {
		return nil, errors.Errorf("CompressLZ4 error: nothing written for %d bytes", len(data))
	}
	return destination[:written], nil
}

// CompressLZ4HC is CompressLZ4 with the high compression matcher at its deepest level.
func CompressLZ4HC(data []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	destination := make([]byte, bound)

	written, err := lz4.CompressBlockHC(data, destination, lz4.Level9, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "CompressLZ4HC error")
	}
	if written == 0 && len(data) > 0 {
		return nil, errors.Errorf("CompressLZ4HC error: nothing written for %d bytes", len(data))
	}
	return destination[:written], nil
}

func DecompressLZ4(compressed []byte, uncompressedSize int) ([]byte, error) {
	if err := checkSize("DecompressLZ4", len(compressed), uncompressedSize, MaxLZ4Ratio); err != nil {
		return nil, err
	}
	destination := make([]byte, uncompressedSize)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, errors.Wrap(err, "DecompressLZ4 error")
	}
	if read != uncompressedSize {
		return nil, errors.Errorf("DecompressLZ4 error: got %d bytes, expected %d", read, uncompressedSize)
	}
	return destination, nil
}
