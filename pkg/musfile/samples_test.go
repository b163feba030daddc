package musfile

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecodeSampleTable(t *testing.T) {
	header := buildHeader(t, "credits",
		sampleRecord(t, "kick.pcm", 4096, 65, 0, 0),
		sampleRecord(t, "", 0, 0, 0, 0), // padding slot, no marker
		sampleRecord(t, "bass.pcm", 9000, 33, 128, 4000),
	)

	samples, err := decodeSampleTable(NewCursor(header), VariantFixedTitle)
	if err != nil {
		t.Fatalf("decodeSampleTable failed: %v", err)
	}

	if len(samples) != MaxSamples {
		t.Fatalf("table length: got %d, want %d", len(samples), MaxSamples)
	}

	kick := samples[0]
	if kick == nil {
		t.Fatal("slot 1 absent, want kick.pcm")
	}
	if kick.Name != "kick.pcm" {
		t.Errorf("slot 1 name: got %q, want kick.pcm", kick.Name)
	}
	if kick.Size != 4096 {
		t.Errorf("slot 1 size: got %d, want 4096", kick.Size)
	}
	if kick.Volume != VolumeCurve(65) {
		t.Errorf("slot 1 volume: got %d, want %d", kick.Volume, VolumeCurve(65))
	}
	if kick.Slot != 1 {
		t.Errorf("slot 1 index: got %d, want 1", kick.Slot)
	}
	if kick.Mode() != PlayModeOneShot {
		t.Errorf("slot 1 mode: got %v, want one-shot", kick.Mode())
	}

	if samples[1] != nil {
		t.Errorf("slot 2: got %+v, want absent (nil)", samples[1])
	}

	bass := samples[2]
	if bass == nil {
		t.Fatal("slot 3 absent, want bass.pcm")
	}
	if bass.Mode() != PlayModeLoop {
		t.Errorf("slot 3 mode: got %v, want loop (loop start 128)", bass.Mode())
	}
	if bass.LoopStart != 128 || bass.LoopEnd != 4000 {
		t.Errorf("slot 3 loop points: got %d..%d, want 128..4000", bass.LoopStart, bass.LoopEnd)
	}

	// Slot positions past the last record stay empty.
	for i := 3; i < MaxSamples; i++ {
		if samples[i] != nil {
			t.Errorf("slot %d: got %+v, want absent", i+1, samples[i])
		}
	}
}

// TestDecodeSampleTableKeepsSlotPositions checks that absent slots still
// consume a full record, so later slots keep their 1-based section numbers.
func TestDecodeSampleTableKeepsSlotPositions(t *testing.T) {
	header := buildHeader(t, "x",
		sampleRecord(t, "", 0, 0, 0, 0),
		sampleRecord(t, "", 0, 0, 0, 0),
		sampleRecord(t, "late.pcm", 100, 1, 0, 0),
	)

	samples, err := decodeSampleTable(NewCursor(header), VariantFixedTitle)
	if err != nil {
		t.Fatalf("decodeSampleTable failed: %v", err)
	}

	if samples[2] == nil || samples[2].Slot != 3 {
		t.Fatalf("slot 3: got %+v, want late.pcm at slot 3", samples[2])
	}
}

func TestDecodeSampleTableScannedVariant(t *testing.T) {
	// Older layout: the title region is a NUL-terminated string plus zero
	// padding rather than a fixed 0x14 bytes. The scan must land exactly on
	// the first record.
	header := buildHeader(t, "oldsong.mus",
		sampleRecord(t, "lead.pcm", 256, 5, 0, 0),
	)

	samples, err := decodeSampleTable(NewCursor(header), VariantScannedTitle)
	if err != nil {
		t.Fatalf("decodeSampleTable failed: %v", err)
	}
	if samples[0] == nil || samples[0].Name != "lead.pcm" {
		t.Fatalf("slot 1: got %+v, want lead.pcm", samples[0])
	}
}

func TestDecodeSampleTableTruncated(t *testing.T) {
	short := bytes.Repeat([]byte{0}, HeaderBytes/2)

	_, err := decodeSampleTable(NewCursor(short), VariantFixedTitle)
	if !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("truncated header: got %v, want ErrTruncatedInput", err)
	}
}

func TestVolumeCurve(t *testing.T) {
	if VolumeCurve(0) != 0 {
		t.Errorf("curve(0): got %d, want 0", VolumeCurve(0))
	}

	// Strictly increasing, therefore injective, over the whole nonzero
	// byte range. Raw bytes above 128 once wrapped in byte arithmetic and
	// collided with small inputs; the curve must stay collision-free.
	prev := VolumeCurve(1)
	for b := 2; b <= 255; b++ {
		cur := VolumeCurve(uint8(b))
		if cur <= prev {
			t.Fatalf("curve not strictly increasing at %d: %d -> %d", b, prev, cur)
		}
		prev = cur
	}

	if VolumeCurve(64) != 126 {
		t.Errorf("curve(64): got %d, want 126", VolumeCurve(64))
	}
	if VolumeCurve(129) == VolumeCurve(1) {
		t.Errorf("curve(129) collides with curve(1): both %d", VolumeCurve(1))
	}
	if VolumeCurve(255) != 508 {
		t.Errorf("curve(255): got %d, want 508", VolumeCurve(255))
	}
}
