package musfile

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// decodeSampleTable decodes the first HeaderBytes of the file: the title/skip
// area followed by MaxSamples fixed-size records. The returned slice always
// has MaxSamples entries; absent slots are nil.
//
// Record consumption is unconditional: a slot whose name lacks the sample
// marker stays empty, but its full SampleRecordSize bytes are still consumed
// so the following slots keep their positions.
func decodeSampleTable(cur *Cursor, variant Variant) ([]*SampleDescriptor, error) {
	if err := skipTitle(cur, variant); err != nil {
		return nil, err
	}

	samples := make([]*SampleDescriptor, MaxSamples)
	for slot := 1; slot <= MaxSamples; slot++ {
		rec, err := cur.Consume(SampleRecordSize)
		if err != nil {
			return nil, fmt.Errorf("%w: sample record %d past end of header region (%v)",
				ErrTruncatedInput, slot, err)
		}

		name := trimPadding(rec[0:22])
		if !strings.Contains(name, SampleMarker) {
			continue
		}

		samples[slot-1] = &SampleDescriptor{
			Name:      name,
			Flags:     binary.LittleEndian.Uint16(rec[22:24]),
			Size:      binary.LittleEndian.Uint32(rec[24:28]),
			Volume:    VolumeCurve(uint8(binary.LittleEndian.Uint32(rec[28:32]))),
			LoopStart: binary.LittleEndian.Uint32(rec[32:36]),
			LoopEnd:   binary.LittleEndian.Uint32(rec[36:40]),
			Slot:      slot,
		}
	}

	return samples, nil
}

// skipTitle advances the cursor past the title/skip area according to the
// format variant.
func skipTitle(cur *Cursor, variant Variant) error {
	switch variant {
	case VariantScannedTitle:
		// Older revisions: a variable-length title terminated by zero
		// padding. Skip the non-zero run, then the zero run.
		for {
			b, err := cur.Peek(1)
			if err != nil {
				return fmt.Errorf("%w: header exhausted while scanning title", ErrTruncatedInput)
			}
			if b[0] == 0 {
				break
			}
			if _, err := cur.Consume(1); err != nil {
				return err
			}
		}
		for cur.Remaining() > 0 {
			b, err := cur.Peek(1)
			if err != nil {
				return err
			}
			if b[0] != 0 {
				break
			}
			if _, err := cur.Consume(1); err != nil {
				return err
			}
		}
		return nil

	default: // VariantFixedTitle
		if _, err := cur.Consume(TitleBytes); err != nil {
			return fmt.Errorf("%w: header shorter than title area (%v)", ErrTruncatedInput, err)
		}
		return nil
	}
}

// trimPadding strips the NUL padding from a fixed-size name field.
func trimPadding(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}
