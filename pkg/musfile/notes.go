package musfile

import "fmt"

// noteNames are the twelve semitone names used for pitch display.
var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// rawUnitsPerSemitone is the pitch-byte granularity: 8 raw units per
// semitone, so 96 raw units span exactly one octave.
const rawUnitsPerSemitone = 8

// midiBaseKey aligns the format's lowest pitch ("C0", raw byte 0) with MIDI
// key 12.
const midiBaseKey = 12

// decodeNoteMatrix consumes everything after the header and order regions:
// numSequences blocks of StepsPerSequence steps, each step holding one
// 6-byte record per channel (channels contiguous within a step).
func decodeNoteMatrix(cur *Cursor, channels int, samples []*SampleDescriptor) ([]*Sequence, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: channel count %d", ErrStructuralMismatch, channels)
	}

	remaining := cur.Remaining()
	sectionSize := NoteRecordSize * channels * StepsPerSequence
	if remaining%sectionSize != 0 {
		return nil, fmt.Errorf("%w: %d track bytes, section size %d (%d channels), remainder %d",
			ErrStructuralMismatch, remaining, sectionSize, channels, remaining%sectionSize)
	}

	numSequences := remaining / sectionSize
	seqs := make([]*Sequence, numSequences)
	for si := range seqs {
		seq := &Sequence{Channels: make([][]NoteEvent, channels)}
		for ch := range seq.Channels {
			seq.Channels[ch] = make([]NoteEvent, StepsPerSequence)
		}

		for step := 0; step < StepsPerSequence; step++ {
			for ch := 0; ch < channels; ch++ {
				rec, err := cur.Consume(NoteRecordSize)
				if err != nil {
					// Unreachable after the divisibility check, but a
					// short read here must never pass silently.
					return nil, err
				}
				seq.Channels[ch][step] = decodeNote(rec, samples)
			}
		}
		seqs[si] = seq
	}

	return seqs, nil
}

// decodeNote interprets one raw 6-byte record against the sample table.
// Pure and deterministic; this is the most heuristic-laden part of the
// decoder, derived from observed files rather than documentation.
func decodeNote(rec []byte, samples []*SampleDescriptor) NoteEvent {
	ev := NoteEvent{
		SampleIndex: int(rec[0]) + int(rec[1])*16,
		Retrigger:   rec[3] != 0,
		Effect:      rec[4],
		EffectParam: rec[5],
	}

	if ev.SampleIndex > 0 && ev.SampleIndex <= len(samples) {
		// Absent slots resolve to nil, not an error: the reference is kept
		// as an index even when the table has no sample there.
		ev.Sample = samples[ev.SampleIndex-1]
	}

	if pitch := rec[2]; pitch != NoPitch {
		semitone := int(pitch) / rawUnitsPerSemitone
		ev.HasPitch = true
		ev.Key = uint8(semitone + midiBaseKey)
		ev.PitchName = fmt.Sprintf("%s%d", noteNames[semitone%12], semitone/12)
	}

	switch {
	case ev.Effect == EffectSetVolume:
		ev.Volume = VolumeCurve(ev.EffectParam)
	case ev.Sample != nil:
		// A retrigger without its own sample reference cannot resolve a
		// volume here; the track builder carries the channel volume forward.
		ev.Volume = ev.Sample.Volume
	}

	return ev
}
