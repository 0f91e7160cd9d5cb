package notify

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Parameters of the audible reminder cue: a one second 600 Hz sine that
// decays from 0.3 down to near silence, like the original chime.
const (
	toneFrequency  = 600.0
	toneSeconds    = 1.0
	toneSampleRate = 16000
	toneStartGain  = 0.3
	toneEndGain    = 0.0001
)

// Tone renders the reminder cue as a 16-bit mono PCM WAV file.
func Tone() []byte {
	sampleCount := int(toneSeconds * toneSampleRate)
	decay := math.Log(toneEndGain / toneStartGain)

	samples := make([]int16, sampleCount)
	for i := range samples {
		t := float64(i) / toneSampleRate
		gain := toneStartGain * math.Exp(decay*t/toneSeconds)
		samples[i] = int16(gain * math.Sin(2*math.Pi*toneFrequency*t) * math.MaxInt16)
	}

	dataSize := uint32(len(samples) * 2)
	var buf bytes.Buffer
	buf.Grow(44 + int(dataSize))

	// RIFF/WAVE header, PCM mono 16-bit.
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	_ = binary.Write(&buf, binary.LittleEndian, uint32(toneSampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(toneSampleRate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, dataSize)
	_ = binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}
