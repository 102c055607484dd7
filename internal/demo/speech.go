package demo

import (
	"bytes"
	"encoding/binary"
	"math"
)

const (
	sampleRate = 16000
	toneHz     = 440.0
)

// SynthesizeTone renders a placeholder WAV clip whose length scales with the
// text. The demo backend has no real TTS engine; the clip only proves the
// audio path end to end.
func SynthesizeTone(text string) []byte {
	// 120ms per word, clamped to keep clips short
	words := 1 + len(bytes.Fields([]byte(text)))
	duration := float64(words) * 0.12
	if duration > 3.0 {
		duration = 3.0
	}

	samples := int(duration * sampleRate)
	pcm := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		t := float64(i) / sampleRate
		// fade in and out to avoid clicks
		env := 1.0
		if edge := duration * 0.1; edge > 0 {
			if t < edge {
				env = t / edge
			} else if rem := duration - t; rem < edge {
				env = rem / edge
			}
		}
		v := int16(env * 0.3 * math.MaxInt16 * math.Sin(2*math.Pi*toneHz*t))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}

	return wrapWAV(pcm)
}

// wrapWAV prefixes 16-bit mono PCM with a RIFF header.
func wrapWAV(pcm []byte) []byte {
	var buf bytes.Buffer

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
