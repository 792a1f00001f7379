package config

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Duration is a time.Duration that supports human-readable parsing.
// It extends Go's standard duration format with support for:
//   - d: days (24 hours)
//   - w: weeks (7 days)
//
// Examples:
//   - "30d" = 30 days
//   - "1w2d12h" = 1 week, 2 days, 12 hours
//   - "720h" = 720 hours (standard Go format still works)
//
// This type implements encoding.TextUnmarshaler for Viper/YAML support
// and json.Unmarshaler for JSON configuration files.
type Duration time.Duration

// durationPrefix matches a leading weeks or days component.
var durationPrefix = regexp.MustCompile(`^([0-9]+)(w|d)`)

// ParseDuration parses a human-readable duration string.
// Supports standard Go duration format plus 'd' (days) and 'w' (weeks).
func ParseDuration(s string) (Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("duration: empty string")
	}

	rest := s
	negative := false
	if rest[0] == '-' {
		negative = true
		rest = rest[1:]
	}

	var extended time.Duration
	for {
		matches := durationPrefix.FindStringSubmatch(rest)
		if matches == nil {
			break
		}
		n, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, fmt.Errorf("duration: invalid number in %q: %w", s, err)
		}
		switch matches[2] {
		case "w":
			extended += time.Duration(n) * 7 * 24 * time.Hour
		case "d":
			extended += time.Duration(n) * 24 * time.Hour
		}
		rest = rest[len(matches[0]):]
	}

	var std time.Duration
	if rest != "" {
		var err error
		std, err = time.ParseDuration(rest)
		if err != nil {
			return 0, fmt.Errorf("duration: invalid format %q: %w", s, err)
		}
	}

	total := extended + std
	if negative {
		total = -total
	}
	return Duration(total), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for YAML/Viper support.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Try as a number (nanoseconds) for backwards compatibility
		var ns int64
		if err := json.Unmarshal(data, &ns); err != nil {
			return err
		}
		*d = Duration(ns)
		return nil
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String returns a human-readable string representation.
func (d Duration) String() string {
	dur := time.Duration(d)
	if dur == 0 {
		return "0s"
	}

	negative := dur < 0
	if negative {
		dur = -dur
	}

	weeks := dur / (7 * 24 * time.Hour)
	dur -= weeks * 7 * 24 * time.Hour
	days := dur / (24 * time.Hour)
	dur -= days * 24 * time.Hour

	var result string
	if weeks > 0 {
		result += fmt.Sprintf("%dw", weeks)
	}
	if days > 0 {
		result += fmt.Sprintf("%dd", days)
	}
	if dur > 0 {
		result += dur.String()
	}

	if result == "" {
		return time.Duration(d).String()
	}
	if negative {
		result = "-" + result
	}
	return result
}
