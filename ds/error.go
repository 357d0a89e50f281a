package ds

import (
	"fmt"
)

type (
	ErrUnreachableCode struct {
		Caller string
	}
	ErrOutOfRange struct {
		Caller string
		Index  int
		Length int
	}
)

func (r ErrUnreachableCode) Error() string {
	return fmt.Sprintf("%s: unreachable code", r.Caller)
}

func (r ErrOutOfRange) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0, %d)", r.Caller, r.Index, r.Length)
}
