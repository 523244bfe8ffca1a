// Package mtxt implements the MTXT record model: beat-based time, the
// line-oriented parser and formatter, and the process engine that turns
// record lists into concrete point-in-time events.
package mtxt

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// BeatTime is a beat-based timestamp using 64-bit fixed-point units: the
// upper 32 bits hold whole beats, the lower 32 bits hold sub-beat units.
type BeatTime uint64

const (
	fracBeatBits = 32
	// FracBeatCount is the number of sub-units in a single beat (2^32).
	FracBeatCount = uint64(1) << fracBeatBits
	fracBeatMask  = FracBeatCount - 1
)

// BeatTimeFromParts builds a BeatTime from a whole beat count and a
// fractional part in [0.0, 1.0]. A fraction of exactly 1.0 rolls over into
// the next whole beat. The fraction is quantized through float32, matching
// the textual precision of the format.
func BeatTimeFromParts(beat uint32, frac float64) BeatTime {
	f := float32(frac)
	if f >= 1.0 {
		return BeatTimeFromParts(beat+1, 0.0)
	}
	fracRepr := uint64(float64(f) * float64(FracBeatCount))
	return BeatTime(uint64(beat)<<fracBeatBits | fracRepr)
}

// WholeBeats returns the whole-beat part.
func (t BeatTime) WholeBeats() uint64 {
	return uint64(t) >> fracBeatBits
}

func (t BeatTime) fracUnits() uint64 {
	return uint64(t) & fracBeatMask
}

func (t BeatTime) fracFloat32() float32 {
	return float32(float64(t.fracUnits()) / float64(FracBeatCount))
}

// Float returns the time as a floating-point beat count.
func (t BeatTime) Float() float64 {
	return float64(t.WholeBeats()) + float64(t.fracFloat32())
}

// Micros converts the beat time to absolute microseconds at the given BPM.
func (t BeatTime) Micros(bpm float64) uint64 {
	microsPerBeat := 60_000_000.0 / bpm
	return uint64(math.Round(t.Float() * microsPerBeat))
}

// BeatTimeFromMicros converts absolute microseconds at the given BPM back
// to a beat time.
func BeatTimeFromMicros(micros uint64, bpm float64) BeatTime {
	microsPerBeat := 60_000_000.0 / bpm
	beat := float64(micros) / microsPerBeat
	whole, frac := math.Modf(beat)
	return BeatTimeFromParts(uint32(whole), frac)
}

// Add returns t + other.
func (t BeatTime) Add(other BeatTime) BeatTime {
	return t + other
}

// Sub returns t - other, saturating at zero.
func (t BeatTime) Sub(other BeatTime) BeatTime {
	if other > t {
		return 0
	}
	return t - other
}

// Quantize snaps the time to a grid of the given number of steps per beat.
// If swing is non-zero, odd grid positions are shifted towards the triplet
// feel by (step/6)*swing. If humanize is positive, a uniform random offset
// of up to (step/2)*0.25*humanize is added; rng supplies the randomness
// (nil falls back to the package-level source). A grid of zero leaves the
// time untouched.
func (t BeatTime) Quantize(grid uint32, swing, humanize float64, rng *rand.Rand) BeatTime {
	if grid == 0 {
		return t
	}

	gridSize := float64(FracBeatCount) / float64(grid)
	total := float64(t)

	var quantized float64
	if swing == 0.0 {
		quantized = math.Round(total/gridSize) * gridSize
	} else {
		gridIndex := uint64(math.Round(total / gridSize))
		base := float64(gridIndex) * gridSize
		if gridIndex%2 == 0 {
			quantized = base
		} else {
			// Off-beat: move from the straight position towards the
			// classic triplet-feel 66.7% position.
			quantized = base + (gridSize/6.0)*swing
		}
	}

	if humanize > 0.0 {
		subGrid := gridSize / 2.0
		amount := subGrid * 0.25 * humanize
		var u float64
		if rng != nil {
			u = rng.Float64()
		} else {
			u = rand.Float64()
		}
		quantized += (u - 0.5) * 2.0 * amount
	}

	if quantized < 0 {
		return 0
	}
	return BeatTime(uint64(math.Round(quantized)))
}

// String renders the time as "<whole>.<frac>" with the fractional part
// rounded to five decimal places and trailing zeros trimmed.
func (t BeatTime) String() string {
	whole := t.WholeBeats()
	fracVal := uint64(math.Round(float64(t.fracFloat32()) * 100_000.0))
	if fracVal >= 100_000 {
		// Rounding carried into the next whole beat.
		whole++
		fracVal = 0
	}
	frac := fmt.Sprintf("%05d", fracVal)
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		frac = "0"
	}
	return fmt.Sprintf("%d.%s", whole, frac)
}

// ParseBeatTime parses "<whole>", "<whole>." or "<whole>.<digits>". Signs,
// exponents and anything but decimal digits are rejected.
func ParseBeatTime(s string) (BeatTime, error) {
	s = strings.TrimSpace(s)

	wholeStr, fracStr, hasDot := strings.Cut(s, ".")
	beat, err := strconv.ParseUint(wholeStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid time: %s", s)
	}

	if !hasDot {
		fracStr = "0"
	}
	for _, c := range fracStr {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid time: %s", s)
		}
	}

	frac, err := strconv.ParseFloat("0."+fracStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid time: %s", s)
	}

	return BeatTimeFromParts(uint32(beat), frac), nil
}
