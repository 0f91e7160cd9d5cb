package notify

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestToneIsValidWAV(t *testing.T) {
	t.Parallel()

	data := Tone()
	if len(data) <= 44 {
		t.Fatalf("tone too short: %d bytes", len(data))
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) || string(data[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE header")
	}

	sampleRate := binary.LittleEndian.Uint32(data[24:28])
	if sampleRate != toneSampleRate {
		t.Fatalf("sample rate = %d, want %d", sampleRate, toneSampleRate)
	}

	dataSize := binary.LittleEndian.Uint32(data[40:44])
	if int(dataSize) != len(data)-44 {
		t.Fatalf("data chunk size %d does not match payload %d", dataSize, len(data)-44)
	}
	// One second of mono 16-bit audio.
	if want := uint32(toneSampleRate * 2); dataSize != want {
		t.Fatalf("data size = %d, want %d", dataSize, want)
	}
}

func TestToneDecays(t *testing.T) {
	t.Parallel()

	data := Tone()
	samples := data[44:]

	peak := func(from, to int) int16 {
		var max int16
		for i := from; i+1 < to; i += 2 {
			v := int16(binary.LittleEndian.Uint16(samples[i : i+2]))
			if v < 0 {
				v = -v
			}
			if v > max {
				max = v
			}
		}
		return max
	}

	head := peak(0, len(samples)/10)
	tail := peak(len(samples)*9/10, len(samples))
	if tail >= head {
		t.Fatalf("tone should decay: head peak %d, tail peak %d", head, tail)
	}
}
