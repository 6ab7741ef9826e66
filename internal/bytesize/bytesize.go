// Package bytesize parses and prints human-readable sizes such as "64MiB"
// for configuration values.
package bytesize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
)

// ByteSize is a size in bytes. In config files it may be written as a plain
// number or with a unit: binary (Ki, Mi, Gi, Ti, with optional B) or
// decimal (K, M, G, T, with optional B).
type ByteSize uint64

const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

var units = map[string]ByteSize{
	"": B, "b": B,
	"k": KB, "kb": KB, "m": MB, "mb": MB, "g": GB, "gb": GB, "t": TB, "tb": TB,
	"ki": KiB, "kib": KiB, "mi": MiB, "mib": MiB, "gi": GiB, "gib": GiB, "ti": TiB, "tib": TiB,
}

// binaryUnits is ordered largest first for String.
var binaryUnits = []struct {
	size ByteSize
	name string
}{
	{TiB, "TiB"}, {GiB, "GiB"}, {MiB, "MiB"}, {KiB, "KiB"},
}

// ParseByteSize parses strings like "1Gi", "512MiB", "100MB", "1.5G" or "4096".
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	num, unit := s, ""
	if split >= 0 {
		num, unit = s[:split], strings.ToLower(strings.TrimSpace(s[split:]))
	}
	if num == "" {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	multiplier, ok := units[unit]
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit in %q", s)
	}

	if !strings.Contains(num, ".") {
		n, err := strconv.ParseUint(num, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
		}
		if n > math.MaxUint64/uint64(multiplier) {
			return 0, fmt.Errorf("byte size %q overflows", s)
		}
		return ByteSize(n) * multiplier, nil
	}

	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	total := f * float64(multiplier)
	if total >= math.MaxUint64 {
		return 0, fmt.Errorf("byte size %q overflows", s)
	}
	return ByteSize(total), nil
}

// String prints the size in the largest binary unit that divides it
// exactly, so the result parses back to the same value.
func (b ByteSize) String() string {
	for _, u := range binaryUnits {
		if b >= u.size && b%u.size == 0 {
			return strconv.FormatUint(uint64(b/u.size), 10) + u.name
		}
	}
	return strconv.FormatUint(uint64(b), 10)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// JSONSchema describes ByteSize as either a byte count or a size string.
func (ByteSize) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "integer", Minimum: "0"},
			{Type: "string", Pattern: `^\s*\d+(\.\d+)?\s*([KkMmGgTt][Ii]?[Bb]?|[Bb])?\s*$`},
		},
		Description: "Size in bytes, or a string such as 64MiB or 1G",
	}
}
