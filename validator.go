package jxl

import (
	"time"

	"github.com/jxlgo/jxl/internal/codestream"
)

// Check is one named structural check result, timed the way the
// teacher's own benchmark tooling times named units of work.
type Check struct {
	Name     string
	Passed   bool
	Message  string
	Duration time.Duration
}

// Report aggregates a codestream's structural checks, plus an optional
// external-decoder corroboration the caller can fill in after running a
// reference decoder against the same bytes.
type Report struct {
	Checks      []Check
	Corroborate *CorroborationResult
}

// CorroborationResult records whether an external decoder (not part of
// this library) agreed the codestream was valid. Callers populate this
// themselves; the validator never shells out.
type CorroborationResult struct {
	Agreed  bool
	Message string
}

// Valid reports whether every structural check in the report passed.
func (r Report) Valid() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

const minimumCodestreamSize = 10

var validBitsPerSample = map[uint8]bool{8: true, 10: true, 12: true, 16: true, 32: true}
var validChannelCounts = map[uint8]bool{1: true, 2: true, 3: true, 4: true}

// Validate runs the fixed set of structural checks from spec §4.11
// against a raw codestream blob: minimum_size, jxl_signature,
// header_present, non_empty_content, reasonable_size, valid_header.
func Validate(data []byte) Report {
	return Report{
		Checks: []Check{
			timedCheck("minimum_size", func() (bool, string) {
				return checkMinimumSize(data)
			}),
			timedCheck("jxl_signature", func() (bool, string) {
				return checkSignature(data)
			}),
			timedCheck("header_present", func() (bool, string) {
				return checkHeaderPresent(data)
			}),
			timedCheck("non_empty_content", func() (bool, string) {
				return checkNonEmptyContent(data)
			}),
			timedCheck("reasonable_size", func() (bool, string) {
				return checkMinimumSize(data)
			}),
			timedCheck("valid_header", func() (bool, string) {
				return checkValidHeader(data)
			}),
		},
	}
}

func timedCheck(name string, run func() (bool, string)) Check {
	start := time.Now()
	passed, message := run()
	return Check{Name: name, Passed: passed, Message: message, Duration: time.Since(start)}
}

func checkMinimumSize(data []byte) (bool, string) {
	if len(data) < minimumCodestreamSize {
		return false, "codestream shorter than minimum size"
	}
	return true, ""
}

func checkSignature(data []byte) (bool, string) {
	if len(data) < 2 || data[0] != codestream.Signature[0] || data[1] != codestream.Signature[1] {
		return false, "signature bytes do not match 0xFF 0x0A"
	}
	return true, ""
}

func checkHeaderPresent(data []byte) (bool, string) {
	if len(data) < codestream.ImageHeaderSize {
		return false, "codestream shorter than a full image header"
	}
	return true, ""
}

func checkNonEmptyContent(data []byte) (bool, string) {
	if len(data) <= 2 {
		return false, "no bytes follow the signature"
	}
	for _, b := range data[2:] {
		if b != 0 {
			return true, ""
		}
	}
	return false, "all bytes after the signature are zero"
}

func checkValidHeader(data []byte) (bool, string) {
	h, err := codestream.ParseImageHeader(data)
	if err != nil {
		return false, err.Error()
	}
	if !validBitsPerSample[h.BitsPerSample] {
		return false, "bits-per-sample not in {8,10,12,16,32}"
	}
	if !validChannelCounts[h.Channels] {
		return false, "channel count not in {1,2,3,4}"
	}
	return true, ""
}
