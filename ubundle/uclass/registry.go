package uclass

import (
	_ "embed"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

//go:embed classes.txt
var classes string

var (
	ClassByID   map[ID]Class
	ClassByName map[string]Class
)

func init() {
	lines := strings.Split(classes, "\n")
	lines = lo.Filter(
		lines,
		func(line string, _ int) bool {
			return len(strings.TrimSpace(line)) > 0
		},
	)
	parsed := lo.Map(
		lines,
		func(line string, _ int) Class {
			class, err := parseLine(line)
			if err != nil {
				panic(err)
			}
			return class
		},
	)

	ClassByID = lo.SliceToMap[Class, ID, Class](
		parsed,
		func(class Class) (ID, Class) {
			return class.ID, class
		},
	)
	ClassByName = lo.SliceToMap[Class, string, Class](
		parsed,
		func(class Class) (string, Class) {
			return class.Name, class
		},
	)
}

func parseLine(line string) (Class, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Class{}, errors.Errorf("uclass: malformed line %q", line)
	}
	id, err := strconv.ParseInt(fields[0], 10, 32)
	if err != nil {
		return Class{}, errors.Wrapf(err, "uclass: malformed class id in line %q", line)
	}
	return Class{
		ID:          ID(id),
		Name:        fields[1],
		IsComponent: len(fields) > 2 && fields[2] == "component",
	}, nil
}

func (id ID) String() string {
	if class, ok := ClassByID[id]; ok {
		return class.Name
	}
	return fmt.Sprintf("Class%d", int32(id))
}

func (id ID) IsComponent() bool {
	return ClassByID[id].IsComponent
}

// ParseID accepts either a registered class name or a decimal class id.
func ParseID(s string) (ID, error) {
	if class, ok := ClassByName[s]; ok {
		return class.ID, nil
	}
	id, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, errors.Errorf("uclass: unknown class %q", s)
	}
	return ID(id), nil
}

func (h Hash128) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash128) IsZero() bool {
	return h == Hash128{}
}

func (h Hash128) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func ParseHash128(s string) (Hash128, error) {
	hash := Hash128{}
	bs, err := hex.DecodeString(s)
	if err != nil {
		return hash, errors.Wrapf(err, "ParseHash128 error decoding %q", s)
	}
	if len(bs) != len(hash) {
		return hash, errors.Errorf("ParseHash128 error: %q is %d bytes, expected %d", s, len(bs), len(hash))
	}
	copy(hash[:], bs)
	return hash, nil
}
