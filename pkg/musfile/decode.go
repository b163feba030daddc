package musfile

import (
	"fmt"
	"os"
)

// Decode parses a complete MUS file held in memory. The returned Song is
// immutable; nothing in this package mutates it after construction.
func Decode(data []byte, opts Options) (*Song, error) {
	if len(data) < HeaderBytes {
		return nil, fmt.Errorf("%w: header needs %#x bytes, file has %#x",
			ErrTruncatedInput, HeaderBytes, len(data))
	}
	if len(data) < HeaderBytes+SeqInfoBytes {
		return nil, fmt.Errorf("%w: sequence-order region needs %#x bytes at %#x, file has %#x",
			ErrTruncatedInput, SeqInfoBytes, HeaderBytes, len(data))
	}

	samples, err := decodeSampleTable(NewCursor(data[:HeaderBytes]), opts.Variant)
	if err != nil {
		return nil, err
	}

	order, err := decodeSequenceOrder(NewCursor(data[HeaderBytes : HeaderBytes+SeqInfoBytes]))
	if err != nil {
		return nil, err
	}

	track := data[HeaderBytes+SeqInfoBytes:]
	seqs, err := decodeNoteMatrix(NewCursor(track), order.ChannelCount, samples)
	if err != nil {
		return nil, err
	}

	return &Song{
		Samples:    samples,
		Order:      order,
		Sequences:  seqs,
		TrackBytes: len(track),
	}, nil
}

// DecodeFile reads and decodes a MUS file from disk.
func DecodeFile(path string, opts Options) (*Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	song, err := Decode(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return song, nil
}

// Summary builds the machine-readable report for the song, including the
// consistency-checker findings.
func (s *Song) Summary() Summary {
	playOrder := make([]int, len(s.Order.PlayOrder))
	copy(playOrder, s.Order.PlayOrder)

	return Summary{
		TrackBytes:        s.TrackBytes,
		SampleCount:       len(s.SampleList()),
		ChannelCount:      s.Order.ChannelCount,
		DeclaredSequences: s.Order.DeclaredSequences,
		NumSequences:      len(s.Sequences),
		PlayOrder:         playOrder,
		Warnings:          CheckSampleConsistency(s.Sequences),
	}
}
