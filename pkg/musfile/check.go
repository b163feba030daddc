package musfile

import "sort"

// CheckSampleConsistency verifies that each sequence-channel sticks to a
// single sample across its 64 steps. Channel assignment in the note matrix
// is itself a heuristic; a channel that switches between samples mid-sequence
// is the usual symptom of that heuristic being wrong for a file.
//
// Findings are advisory. Decoding never fails because of them.
func CheckSampleConsistency(seqs []*Sequence) []Warning {
	var warnings []Warning

	for si, seq := range seqs {
		for ch, events := range seq.Channels {
			seen := map[int]bool{}
			for _, ev := range events {
				if ev.SampleIndex > 0 {
					seen[ev.SampleIndex] = true
				}
			}
			if len(seen) <= 1 {
				continue
			}

			slots := make([]int, 0, len(seen))
			for slot := range seen {
				slots = append(slots, slot)
			}
			sort.Ints(slots)

			warnings = append(warnings, Warning{Sequence: si, Channel: ch, Samples: slots})
		}
	}

	return warnings
}
