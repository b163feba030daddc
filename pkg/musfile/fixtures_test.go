package musfile

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// sampleRecord builds one 0x2C-byte sample record. rawVolume goes through
// the volume curve during decoding.
func sampleRecord(t *testing.T, name string, size, rawVolume, loopStart, loopEnd uint32) []byte {
	t.Helper()

	if len(name) > 22 {
		t.Fatalf("sample name %q longer than 22 bytes", name)
	}

	rec := make([]byte, SampleRecordSize)
	copy(rec[0:22], name)
	binary.LittleEndian.PutUint16(rec[22:24], 1) // count/flag field
	binary.LittleEndian.PutUint32(rec[24:28], size)
	binary.LittleEndian.PutUint32(rec[28:32], rawVolume)
	binary.LittleEndian.PutUint32(rec[32:36], loopStart)
	binary.LittleEndian.PutUint32(rec[36:40], loopEnd)
	return rec
}

// buildHeader builds the full HeaderBytes region: title area plus up to
// MaxSamples records, zero-padded.
func buildHeader(t *testing.T, title string, records ...[]byte) []byte {
	t.Helper()

	if len(records) > MaxSamples {
		t.Fatalf("%d sample records, table holds %d", len(records), MaxSamples)
	}

	var buf bytes.Buffer
	buf.WriteString(title)
	buf.Write(make([]byte, TitleBytes-len(title)))
	for _, rec := range records {
		buf.Write(rec)
	}

	header := buf.Bytes()
	if len(header) > HeaderBytes {
		t.Fatalf("header fixture %d bytes, region is %d", len(header), HeaderBytes)
	}
	return append(header, make([]byte, HeaderBytes-len(header))...)
}

// buildOrder builds the SeqInfoBytes region from a raw u32 stream. The
// caller supplies the stream exactly as stored, terminator zeros included;
// the region is zero-padded to size.
func buildOrder(t *testing.T, values ...uint32) []byte {
	t.Helper()

	var buf bytes.Buffer
	for _, v := range values {
		binary.Write(&buf, binary.LittleEndian, v)
	}

	region := buf.Bytes()
	if len(region) > SeqInfoBytes {
		t.Fatalf("order fixture %d bytes, region is %d", len(region), SeqInfoBytes)
	}
	return append(region, make([]byte, SeqInfoBytes-len(region))...)
}

// note builds one raw 6-byte note record.
func note(sampleLo, sampleHi, pitch, retrig, effect, param byte) []byte {
	return []byte{sampleLo, sampleHi, pitch, retrig, effect, param}
}

// silentMatrix builds an all-zero note matrix for the given shape.
func silentMatrix(channels, sequences int) []byte {
	return make([]byte, NoteRecordSize*channels*StepsPerSequence*sequences)
}

// buildFile concatenates the three regions into a whole synthetic MUS file.
func buildFile(t *testing.T, header, order, matrix []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(header)
	buf.Write(order)
	buf.Write(matrix)
	return buf.Bytes()
}
