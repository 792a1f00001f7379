// Package policy implements the per-asset transcode decisions: transparency
// classification, fit-within-box resizing, and container/quality selection.
package policy

import (
	"fmt"
	"strings"
)

// Container is an on-disk image format.
type Container string

// Supported containers.
const (
	ContainerPNG  Container = "png"
	ContainerJPEG Container = "jpeg"
	ContainerWebP Container = "webp"
)

// Ext returns the file extension (without dot) used for live assets.
func (c Container) Ext() string {
	if c == ContainerJPEG {
		return "jpg"
	}
	return string(c)
}

// ContainerForExt maps a file extension (with or without dot, any case) to
// its container. Returns false for unrecognized extensions.
func ContainerForExt(ext string) (Container, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return ContainerPNG, true
	case "jpg", "jpeg":
		return ContainerJPEG, true
	case "webp":
		return ContainerWebP, true
	default:
		return "", false
	}
}

// Mode names a format policy configuration.
type Mode string

// Policy modes.
const (
	// ModeConservative keeps the source container family and applies a
	// generous resize bound.
	ModeConservative Mode = "conservative"
	// ModeAggressive converts opaque PNGs to JPEG and tightens the bound.
	ModeAggressive Mode = "aggressive"
	// ModeReencode re-applies a lower quality and tighter bound with no
	// container change (used for already-converted WebP collections).
	ModeReencode Mode = "reencode"
	// ModeConvertWebP converts opaque assets to WebP.
	ModeConvertWebP Mode = "convertwebp"
)

// Modes lists every policy mode.
var Modes = []Mode{ModeConservative, ModeAggressive, ModeReencode, ModeConvertWebP}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeConservative, ModeAggressive, ModeReencode, ModeConvertWebP:
		return Mode(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("unknown mode %q (want conservative, aggressive, reencode, or convertwebp)", s)
	}
}

// BackupArea returns the name of the backup directory this mode writes to.
// Modes sharing an area share first-write-wins semantics across runs.
func (m Mode) BackupArea() string {
	switch m {
	case ModeReencode:
		return "backup_webp_original"
	case ModeConvertWebP:
		return "backup_jpg"
	default:
		return "backup_original"
	}
}

// BackupAreas returns the distinct backup area names across all modes, in
// mode declaration order.
func BackupAreas() []string {
	seen := make(map[string]bool, len(Modes))
	areas := make([]string, 0, len(Modes))
	for _, m := range Modes {
		a := m.BackupArea()
		if seen[a] {
			continue
		}
		seen[a] = true
		areas = append(areas, a)
	}
	return areas
}

// Quality and bound constants per mode.
const (
	conservativeQuality = 85
	aggressiveQuality   = 90
	reencodeQuality     = 75
	webpQuality         = 85
)

var (
	conservativeBound = [2]int{2000, 3000}
	aggressiveBound   = [2]int{1200, 2000}
	reencodeBound     = [2]int{1000, 1667}
)

// Options holds configurable policy switches.
type Options struct {
	// AllowAlphaWebP permits transparent PNGs to convert to WebP, which
	// supports an alpha channel. Off by default: the container change
	// breaks external references unless those are rewritten too.
	AllowAlphaWebP bool
}

// EncodePlan is the derived, per-asset encode decision.
type EncodePlan struct {
	Container Container
	// Quality is the encode quality (1-100) for lossy containers.
	// Ignored for PNG, which always uses maximum lossless compression.
	Quality int
	// MaxWidth and MaxHeight bound the output dimensions; the image is
	// scaled down to fit only if it exceeds the bound.
	MaxWidth  int
	MaxHeight int
}

// Converts reports whether the plan changes the source container.
func (p EncodePlan) Converts(source Container) bool {
	return p.Container != source
}

// Plan selects the target container and encode parameters for one asset.
func Plan(mode Mode, source Container, hasAlpha bool, opts Options) EncodePlan {
	switch mode {
	case ModeAggressive:
		plan := EncodePlan{
			Container: source,
			Quality:   aggressiveQuality,
			MaxWidth:  aggressiveBound[0],
			MaxHeight: aggressiveBound[1],
		}
		switch {
		case source == ContainerPNG && !hasAlpha:
			plan.Container = ContainerJPEG
		case source == ContainerPNG && opts.AllowAlphaWebP:
			plan.Container = ContainerWebP
			plan.Quality = webpQuality
		case source == ContainerWebP:
			plan.Quality = webpQuality
		}
		return plan

	case ModeReencode:
		return EncodePlan{
			Container: source,
			Quality:   reencodeQuality,
			MaxWidth:  reencodeBound[0],
			MaxHeight: reencodeBound[1],
		}

	case ModeConvertWebP:
		plan := EncodePlan{
			Container: ContainerWebP,
			Quality:   webpQuality,
			MaxWidth:  aggressiveBound[0],
			MaxHeight: aggressiveBound[1],
		}
		if source == ContainerPNG && hasAlpha && !opts.AllowAlphaWebP {
			plan.Container = ContainerPNG
		}
		return plan

	default: // ModeConservative
		return EncodePlan{
			Container: source,
			Quality:   conservativeQuality,
			MaxWidth:  conservativeBound[0],
			MaxHeight: conservativeBound[1],
		}
	}
}
