package musfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestDecodeSequenceOrder(t *testing.T) {
	// 4 channels, 3 declared sequences, play order 0 2 1 2, terminated by
	// the second zero (the play-order 0 is the first).
	region := buildOrder(t, 4, 3, 0, 2, 1, 2, 0)

	order, err := decodeSequenceOrder(NewCursor(region))
	if err != nil {
		t.Fatalf("decodeSequenceOrder failed: %v", err)
	}

	if order.ChannelCount != 4 {
		t.Errorf("channel count: got %d, want 4", order.ChannelCount)
	}
	if order.DeclaredSequences != 3 {
		t.Errorf("declared sequences: got %d, want 3", order.DeclaredSequences)
	}

	want := []int{0, 2, 1, 2}
	if len(order.PlayOrder) != len(want) {
		t.Fatalf("play order: got %v, want %v", order.PlayOrder, want)
	}
	for i, v := range want {
		if order.PlayOrder[i] != v {
			t.Fatalf("play order: got %v, want %v", order.PlayOrder, want)
		}
	}
}

// TestDecodeSequenceOrderSecondZeroTerminates pins the documented (if
// surprising) sentinel contract: in [2,0,0,...] the first zero is the
// declared sequence count and the second terminates, so the play order is
// empty.
func TestDecodeSequenceOrderSecondZeroTerminates(t *testing.T) {
	region := buildOrder(t, 2, 0, 0, 5, 0, 0)

	order, err := decodeSequenceOrder(NewCursor(region))
	if err != nil {
		t.Fatalf("decodeSequenceOrder failed: %v", err)
	}

	if order.ChannelCount != 2 {
		t.Errorf("channel count: got %d, want 2", order.ChannelCount)
	}
	if order.DeclaredSequences != 0 {
		t.Errorf("declared sequences: got %d, want 0", order.DeclaredSequences)
	}
	if len(order.PlayOrder) != 0 {
		t.Errorf("play order: got %v, want empty", order.PlayOrder)
	}
}

func TestDecodeSequenceOrderNoTerminator(t *testing.T) {
	// Fill the entire region with nonzero values: no second zero can ever
	// be found, the whole region must be rejected.
	var buf bytes.Buffer
	for i := 0; i < SeqInfoBytes/4; i++ {
		binary.Write(&buf, binary.LittleEndian, uint32(7))
	}

	_, err := decodeSequenceOrder(NewCursor(buf.Bytes()))
	if !errors.Is(err, ErrMalformedSequenceTable) {
		t.Errorf("no terminator: got %v, want ErrMalformedSequenceTable", err)
	}
}

func TestDecodeSequenceOrderTooFewValues(t *testing.T) {
	// [0,0,...]: the first zero is a value, the second terminates, leaving
	// a single value. A table without both counts is undecodable.
	region := buildOrder(t, 0, 0)

	_, err := decodeSequenceOrder(NewCursor(region))
	if !errors.Is(err, ErrMalformedSequenceTable) {
		t.Errorf("single value: got %v, want ErrMalformedSequenceTable", err)
	}
}
