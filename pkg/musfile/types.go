// Package musfile decodes the "MUS" binary music container used by a
// handheld-console sound engine.
//
// The format has no public specification; the byte layout implemented here
// was recovered from sample files. A MUS file is three back-to-back regions:
//
//	0x000          title/skip region + 31 fixed-size sample records (0x568 bytes)
//	0x568          sequence-order table, sentinel-terminated u32 LE (0x20C bytes)
//	0x774          note matrix: sequences x 64 steps x channels x 6-byte records
//
// Decoding is strict: any read past a region boundary, a missing sentinel or
// a note matrix that does not divide evenly into sequences is an error, never
// a silently truncated result.
package musfile

import (
	"errors"
	"fmt"
)

// Region sizes and record layout, in bytes.
const (
	// HeaderBytes is the size of the title + sample table region.
	HeaderBytes = 0x568

	// SeqInfoBytes is the size of the sequence-order region (0x774 - 0x568).
	SeqInfoBytes = 0x20C

	// TitleBytes is the fixed title/skip area at the start of the header.
	TitleBytes = 0x14

	// SampleRecordSize is the size of one sample descriptor record.
	SampleRecordSize = 0x2C

	// MaxSamples is the number of sample slots in the header.
	MaxSamples = 31

	// NoteRecordSize is the size of one raw note record.
	NoteRecordSize = 6

	// StepsPerSequence is the fixed number of time-steps in a sequence.
	StepsPerSequence = 64
)

// SampleMarker is the substring a sample record's name must contain for the
// slot to hold a sample. Slots without it are padding.
const SampleMarker = ".pcm"

// EffectSetVolume is the effect code whose parameter sets the channel volume
// through the volume curve.
const EffectSetVolume = 0x0C

// NoPitch is the raw pitch byte meaning "no note starts at this step".
const NoPitch = 0xFF

// Errors.
var (
	ErrTruncatedInput         = errors.New("musfile: input shorter than required region")
	ErrMalformedSequenceTable = errors.New("musfile: sequence-order table missing terminator")
	ErrStructuralMismatch     = errors.New("musfile: note matrix size does not divide into sequences")
	ErrOutOfBounds            = errors.New("musfile: read past end of buffer")
)

// Variant selects the header title-skip behavior. The format went through
// revisions: older files store a variable-length title followed by zero
// padding, the final layout reserves a fixed 0x14-byte area.
type Variant int

const (
	// VariantFixedTitle skips the fixed 0x14-byte title area (final layout).
	VariantFixedTitle Variant = iota
	// VariantScannedTitle scans past a variable-length title and its zero
	// padding (older revisions).
	VariantScannedTitle
)

func (v Variant) String() string {
	switch v {
	case VariantScannedTitle:
		return "scanned"
	default:
		return "fixed"
	}
}

// ParseVariant maps a flag value onto a Variant.
func ParseVariant(name string) (Variant, error) {
	switch name {
	case "fixed":
		return VariantFixedTitle, nil
	case "scanned":
		return VariantScannedTitle, nil
	default:
		return 0, fmt.Errorf("unknown format variant %q (want fixed or scanned)", name)
	}
}

// Options configures a decode.
type Options struct {
	Variant Variant
}

// SampleDescriptor describes one occupied sample slot in the header table.
// Absent slots are represented as nil entries, not zero-valued descriptors,
// so "no sample here" stays distinct from "sample with size 0".
type SampleDescriptor struct {
	Name      string // sample file name, loaded by the engine from music/<name>
	Flags     uint16 // count/flag field, meaning unknown
	Size      uint32 // declared sample size in bytes
	Volume    int    // base volume through the volume curve
	LoopStart uint32
	LoopEnd   uint32
	Slot      int // 1-based position in the table ("section number")
}

// PlayMode reports how the engine plays the sample back.
type PlayMode string

const (
	// PlayModeLoop repeats from LoopStart after the first pass.
	PlayModeLoop PlayMode = "loop"
	// PlayModeOneShot plays the sample once.
	PlayModeOneShot PlayMode = "one-shot"
)

// Mode derives the playback mode from the loop points.
func (s *SampleDescriptor) Mode() PlayMode {
	if s.LoopStart != 0 {
		return PlayModeLoop
	}
	return PlayModeOneShot
}

// SequenceOrder is the decoded arrangement table: how many channels play at
// once, how many sequences the file declares, and which sequence plays at
// each position of the song.
type SequenceOrder struct {
	ChannelCount      int
	DeclaredSequences int
	PlayOrder         []int
}

// NoteEvent is the decoded form of one 6-byte note record.
type NoteEvent struct {
	// SampleIndex is the 1-based sample slot reference, 0 when the record
	// references no sample.
	SampleIndex int
	// Sample is the referenced descriptor, nil when SampleIndex is 0 or the
	// slot is absent.
	Sample *SampleDescriptor
	// HasPitch is false for the 0xFF "no note" pitch sentinel.
	HasPitch bool
	// Key is the MIDI key number (only meaningful when HasPitch).
	Key uint8
	// PitchName is the semitone name + octave, e.g. "C2", empty without pitch.
	PitchName string
	// Retrigger restarts the currently sounding sample.
	Retrigger bool
	// Volume is the resolved volume through the volume curve; 0 on silence
	// frames. MIDI emission clamps it to the 7-bit range.
	Volume int
	// Effect and EffectParam carry the raw effect byte pair for effects this
	// decoder does not classify.
	Effect      uint8
	EffectParam uint8
}

// Sequence is one decoded note-matrix block: StepsPerSequence steps for each
// channel. Channels[ch][step] is the event for channel ch at that step.
type Sequence struct {
	Channels [][]NoteEvent
}

// Song is a fully decoded MUS file. All fields are read-only after Decode.
type Song struct {
	Samples   []*SampleDescriptor // MaxSamples entries, nil for absent slots
	Order     SequenceOrder
	Sequences []*Sequence
	// TrackBytes is the size of the note-matrix region.
	TrackBytes int
}

// SampleList returns the occupied slots in table order.
func (s *Song) SampleList() []*SampleDescriptor {
	list := make([]*SampleDescriptor, 0, len(s.Samples))
	for _, sd := range s.Samples {
		if sd != nil {
			list = append(list, sd)
		}
	}
	return list
}

// Warning is a non-fatal finding from the consistency checker.
type Warning struct {
	Sequence int   `json:"sequence"`
	Channel  int   `json:"channel"`
	Samples  []int `json:"samples"` // distinct sample slots referenced
}

// Summary is the machine-readable report for one decoded file.
type Summary struct {
	File              string    `json:"file,omitempty"`
	TrackBytes        int       `json:"trackBytes"`
	SampleCount       int       `json:"sampleCount"`
	ChannelCount      int       `json:"channelCount"`
	DeclaredSequences int       `json:"declaredSequences"`
	NumSequences      int       `json:"numSequences"`
	PlayOrder         []int     `json:"playOrder"`
	Warnings          []Warning `json:"warnings,omitempty"`
}

// VolumeCurve maps a raw volume byte onto the engine's volume scale: 0 stays
// silent, every other value maps to (v-1)*2. The arithmetic is done in int so
// distinct raw bytes never collide; raw bytes above 64 exceed the 7-bit MIDI
// range and are clamped at emission, not here.
func VolumeCurve(raw uint8) int {
	if raw == 0 {
		return 0
	}
	return (int(raw) - 1) * 2
}
