// Package ubytes holds the endian-aware primitives every section of a bundle is written with.
//
// A Writer or Reader has one byte order for its whole life. Sections of a bundle that use
// different orders (the big-endian envelope, the little-endian object data) are separate
// writers whose bytes get concatenated.
package ubytes

import (
	"bytes"
	"encoding/binary"
)

type (
	Writer struct {
		order binary.ByteOrder
		buf   bytes.Buffer
	}
	Reader struct {
		bytes.Reader
		order binary.ByteOrder
	}
)

const (
	// DefaultAlignment is the boundary strings and arrays are padded to.
	DefaultAlignment = 4
)
