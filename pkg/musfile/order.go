package musfile

import (
	"encoding/binary"
	"fmt"
)

// orderState is the sentinel parser state. Zero is both a meaningful value
// and the terminator in the order table: the first zero read is a real
// "channel/sequence 0" entry, the second one ends the list. Keeping the
// distinction as an explicit state makes that rule auditable.
type orderState int

const (
	awaitingFirstZero orderState = iota
	sawFirstZero
)

// decodeSequenceOrder decodes the SeqInfoBytes region after the header: a
// stream of u32 LE values terminated by a second zero. The first value is
// the channel count, the second the declared sequence count, the rest the
// play order.
func decodeSequenceOrder(cur *Cursor) (SequenceOrder, error) {
	var values []int

	state := awaitingFirstZero
	for {
		raw, err := cur.Consume(4)
		if err != nil {
			return SequenceOrder{}, fmt.Errorf("%w: no second zero within %#x bytes (read %d values)",
				ErrMalformedSequenceTable, SeqInfoBytes, len(values))
		}

		v := binary.LittleEndian.Uint32(raw)
		if v == 0 {
			if state == sawFirstZero {
				break
			}
			state = sawFirstZero
		}
		values = append(values, int(v))
	}

	if len(values) < 2 {
		return SequenceOrder{}, fmt.Errorf("%w: only %d values before terminator, need channel and sequence counts",
			ErrMalformedSequenceTable, len(values))
	}

	return SequenceOrder{
		ChannelCount:      values[0],
		DeclaredSequences: values[1],
		PlayOrder:         values[2:],
	}, nil
}
