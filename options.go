package jxl

import (
	"time"

	"go.uber.org/zap"

	"github.com/jxlgo/jxl/internal/box"
)

// Mode selects the encoder's compression family, per spec §6's closed
// `mode: {lossless | lossy(quality) | distance(float)}` set.
type Mode int

const (
	// ModeLossless forces the Modular path at distance 0.
	ModeLossless Mode = iota
	// ModeLossy drives VarDCT from a 0..=100 quality value via
	// vardct.DistanceFromQuality.
	ModeLossy
	// ModeDistance drives VarDCT from an explicit distance.
	ModeDistance
)

// Effort is the ordered encoder effort level, selecting MA tree and
// (in a fuller encoder) search depth, per spec §6.
type Effort string

const (
	EffortLightning Effort = "lightning"
	EffortFalcon    Effort = "falcon"
	EffortCheetah   Effort = "cheetah"
	EffortHare      Effort = "hare"
	EffortSquirrel  Effort = "squirrel"
	EffortKitten    Effort = "kitten"
	EffortWombat    Effort = "wombat"
	EffortTortoise  Effort = "tortoise"
)

// Options configures Encoder.Encode / Encoder.EncodeFrames.
type Options struct {
	Mode     Mode
	Quality  int     // 0..100, used when Mode == ModeLossy
	Distance float64 // used when Mode == ModeDistance

	Effort Effort

	// ModularMode forces the lossless Modular path even when Mode would
	// otherwise select VarDCT.
	ModularMode bool

	// Progressive splits a VarDCT frame into its DC/low-AC/high-AC
	// passes (internal/vardct's progressive split). No effect on
	// Modular frames, which always decode in a single pass.
	Progressive bool

	// ResponsiveEncoding emits ResponsiveConfig.LayerCount VarDCT
	// re-encodings at descending distances (see scheduler.go).
	ResponsiveEncoding bool
	ResponsiveConfig   ResponsiveConfig

	UseXYBColorSpace bool
	UseANS           bool

	// Hints only; must never change emitted bytes, per spec §6.
	UseHardwareAcceleration bool
	ThreadCount             uint32

	// Container metadata, framed per internal/box's emission order when
	// non-empty/non-zero.
	EXIF       []byte
	XMP        []byte
	ICCProfile []byte
	FrameIndex []box.FrameIndexEntry
	Level      uint8

	// FrameDurations threads per-frame animation timing into
	// EncodeFrames's generated FrameHeaders; index i applies to frame i.
	// Supplements spec.md, which leaves animation timing unspecified on
	// the encode side.
	FrameDurations []time.Duration

	// Logger receives a Debug entry with each frame's dimensions and a
	// Warn entry when encoding fails; it never affects emitted bytes.
	// Defaults to a no-op logger. LogFile, if set, routes Logger through
	// a rotating file instead (see internal/diag).
	Logger  *zap.Logger
	LogFile string
}

// DefaultOptions returns the baseline encode configuration: lossless
// Modular, squirrel effort, no progressive/responsive layering, no XYB,
// Rice-only entropy coding, silent logging.
func DefaultOptions() *Options {
	return &Options{
		Mode:     ModeLossless,
		Quality:  100,
		Distance: 0,
		Effort:   EffortSquirrel,
	}
}

// Config configures Decoder.Decode and friends.
type Config struct {
	Logger  *zap.Logger
	LogFile string
}

// DefaultConfig returns the baseline decode configuration: silent
// logging.
func DefaultConfig() *Config {
	return &Config{}
}
