package config

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ByteSize is a size value that supports human-readable parsing.
// It extends raw byte counts with support for binary units like KB, MB, GB.
//
// Examples:
//   - "5MB" = 5 * 1024 * 1024 bytes
//   - "1.5 GB" = 1.5 * 1024^3 bytes
//   - "5242880" = 5242880 bytes (raw number still works)
//
// This type implements encoding.TextUnmarshaler for Viper/YAML support
// and json.Unmarshaler for JSON configuration files.
type ByteSize int64

// Binary size multipliers.
const (
	byteUnit     ByteSize = 1
	kilobyteUnit          = 1024 * byteUnit
	megabyteUnit          = 1024 * kilobyteUnit
	gigabyteUnit          = 1024 * megabyteUnit
	terabyteUnit          = 1024 * gigabyteUnit
)

var byteSizeUnits = map[string]ByteSize{
	"":    byteUnit,
	"b":   byteUnit,
	"k":   kilobyteUnit,
	"kb":  kilobyteUnit,
	"kib": kilobyteUnit,
	"m":   megabyteUnit,
	"mb":  megabyteUnit,
	"mib": megabyteUnit,
	"g":   gigabyteUnit,
	"gb":  gigabyteUnit,
	"gib": gigabyteUnit,
	"t":   terabyteUnit,
	"tb":  terabyteUnit,
	"tib": terabyteUnit,
}

// byteSizePattern matches a number (int or float) followed by an optional unit.
var byteSizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([a-z]*)\s*$`)

// ParseByteSize parses a human-readable byte size string.
// If no unit is specified, bytes are assumed.
func ParseByteSize(s string) (ByteSize, error) {
	if s == "" {
		return 0, fmt.Errorf("bytesize: empty string")
	}

	matches := byteSizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("bytesize: invalid format %q", s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("bytesize: invalid number %q: %w", matches[1], err)
	}

	multiplier, ok := byteSizeUnits[strings.ToLower(matches[2])]
	if !ok {
		return 0, fmt.Errorf("bytesize: unknown unit %q", matches[2])
	}

	return ByteSize(value * float64(multiplier)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for YAML/Viper support.
func (b *ByteSize) UnmarshalText(text []byte) error {
	parsed, err := ParseByteSize(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *ByteSize) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Try as a number (bytes) for backwards compatibility
		var raw int64
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*b = ByteSize(raw)
		return nil
	}
	return b.UnmarshalText([]byte(s))
}

// MarshalText implements encoding.TextMarshaler.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Bytes returns the size in bytes as int64.
func (b ByteSize) Bytes() int64 {
	return int64(b)
}

// String returns a human-readable string representation.
func (b ByteSize) String() string {
	s := b
	negative := s < 0
	if negative {
		s = -s
	}

	var result string
	switch {
	case s >= terabyteUnit:
		result = formatUnit(float64(s)/float64(terabyteUnit), "TB")
	case s >= gigabyteUnit:
		result = formatUnit(float64(s)/float64(gigabyteUnit), "GB")
	case s >= megabyteUnit:
		result = formatUnit(float64(s)/float64(megabyteUnit), "MB")
	case s >= kilobyteUnit:
		result = formatUnit(float64(s)/float64(kilobyteUnit), "KB")
	default:
		result = fmt.Sprintf("%dB", s)
	}

	if negative {
		return "-" + result
	}
	return result
}

func formatUnit(value float64, unit string) string {
	if value == float64(int64(value)) {
		return fmt.Sprintf("%d%s", int64(value), unit)
	}
	formatted := strings.TrimRight(fmt.Sprintf("%.2f", value), "0")
	formatted = strings.TrimRight(formatted, ".")
	return formatted + unit
}
