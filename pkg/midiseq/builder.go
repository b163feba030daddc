// Package midiseq turns a decoded MUS song into a standard MIDI file.
//
// The MUS format carries no tempo, so the output uses a fixed 120 BPM
// placeholder. Each playback channel becomes one MIDI track; note durations
// are not stored in the format and are inferred by lookahead within a
// sequence.
package midiseq

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"musview/pkg/musfile"
)

const (
	// TicksPerQuarter is the SMF resolution.
	TicksPerQuarter = 960

	// TicksPerStep is one MUS time-step: four steps make one beat.
	TicksPerStep = TicksPerQuarter / 4

	// DefaultTempo is the fixed placeholder tempo in BPM.
	DefaultTempo = 120.0
)

// MIDI controller numbers.
const (
	ccVolume = 7
	ccPan    = 10
)

// PanForChannel returns the fixed pan constant for a playback channel: the
// first 16 channels cycle through left/center/right groups, anything beyond
// sits in the center.
func PanForChannel(ch int) uint8 {
	if ch >= 16 {
		return 64
	}
	return [3]uint8{0, 64, 127}[ch%3]
}

// event ordering within a tick: offs close before volume changes apply,
// volume changes apply before ons sound.
const (
	prioOff = iota
	prioControl
	prioOn
)

type timedMsg struct {
	tick uint32
	prio int
	msg  midi.Message
}

// Build assembles a multi-track MIDI file from the decoded song: a tempo
// track named after the song, then one track per playback channel following
// the play order.
func Build(song *musfile.Song, name string) (*smf.SMF, error) {
	channels := song.Order.ChannelCount
	if channels <= 0 {
		return nil, fmt.Errorf("midiseq: song has no channels")
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var meta smf.Track
	meta.Add(0, smf.MetaTrackSequenceName(name))
	meta.Add(0, smf.MetaTempo(DefaultTempo))
	meta.Close(0)
	if err := s.Add(meta); err != nil {
		return nil, fmt.Errorf("midiseq: tempo track: %w", err)
	}

	for ch := 0; ch < channels; ch++ {
		track, err := buildChannelTrack(song, ch)
		if err != nil {
			return nil, err
		}
		if err := s.Add(track); err != nil {
			return nil, fmt.Errorf("midiseq: channel %d track: %w", ch, err)
		}
	}

	return s, nil
}

// buildChannelTrack walks one channel through the whole play order and emits
// its note and controller events.
func buildChannelTrack(song *musfile.Song, ch int) (smf.Track, error) {
	midiCh := uint8(ch % 16)

	var msgs []timedMsg

	// Running state carried across sequences: the channel's current volume
	// and the last key sounded, for retriggers that name no pitch.
	var volume uint8
	var lastKey uint8
	haveKey := false

	base := uint32(0)
	for _, seqIdx := range song.Order.PlayOrder {
		if seqIdx < 0 || seqIdx >= len(song.Sequences) {
			// Arrangement entries past the decoded sequences are skipped,
			// matching how the engine ignores them.
			continue
		}

		events := song.Sequences[seqIdx].Channels[ch]
		for step, ev := range events {
			tick := base + uint32(step)*TicksPerStep

			if ev.Effect == musfile.EffectSetVolume {
				volume = Clamp127(ev.Volume)
				if !ev.HasPitch && !ev.Retrigger {
					// Volume change on a silent frame: a controller
					// adjustment, never a note-on.
					msgs = append(msgs, timedMsg{tick, prioControl,
						midi.ControlChange(midiCh, ccVolume, volume)})
					continue
				}
			} else if ev.Sample != nil {
				volume = Clamp127(ev.Sample.Volume)
			}

			starts := ev.HasPitch || (ev.Retrigger && haveKey)
			if !starts {
				continue
			}

			key := lastKey
			if ev.HasPitch {
				key = ev.Key
			}

			if volume == 0 {
				// Nothing audible to emit; the step still cut any prior
				// note via the duration lookahead of its predecessor.
				continue
			}

			durSteps := noteDuration(events, step)
			msgs = append(msgs, timedMsg{tick, prioOn,
				midi.NoteOn(midiCh, key, volume)})
			msgs = append(msgs, timedMsg{tick + uint32(durSteps)*TicksPerStep, prioOff,
				midi.NoteOff(midiCh, key)})

			lastKey = key
			haveKey = true
		}

		base += uint32(musfile.StepsPerSequence) * TicksPerStep
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		return msgs[i].prio < msgs[j].prio
	})

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName(fmt.Sprintf("Channel %d", ch+1)))
	track.Add(0, midi.ControlChange(midiCh, ccPan, PanForChannel(ch)))

	last := uint32(0)
	for _, m := range msgs {
		track.Add(m.tick-last, m.msg)
		last = m.tick
	}
	track.Close(0)

	return track, nil
}

// noteDuration counts time-steps from the note at step until the next event
// on the same channel that cuts it: a retrigger or a new sample reference.
// A note nothing cuts sustains to the end of the sequence.
func noteDuration(events []musfile.NoteEvent, step int) int {
	for next := step + 1; next < len(events); next++ {
		if events[next].Retrigger || events[next].SampleIndex > 0 {
			return next - step
		}
	}
	return len(events) - step
}

// Clamp127 keeps a curved volume inside the 7-bit MIDI range.
func Clamp127(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}
