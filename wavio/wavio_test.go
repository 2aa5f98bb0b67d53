package wavio

import (
	"math"
	"os"
	"testing"
)

func TestWriteThenReadRoundTrip(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "roundtrip-*.wav")
	if err != nil {
		t.Fatalf("CreateTemp() error: %v", err)
	}
	defer f.Close()

	w := NewWriter(f, 1, 44100, 16)
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 440 * float64(i) / 44100)
	}
	if err := w.WriteSamples(samples); err != nil {
		t.Fatalf("WriteSamples() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	if _, err := f.Seek(0, 0); err != nil {
		t.Fatalf("Seek() error: %v", err)
	}

	r, err := NewReader(f)
	if err != nil {
		t.Fatalf("NewReader() error: %v", err)
	}
	if r.Metadata.SampleRate != 44100 {
		t.Fatalf("SampleRate = %d, want 44100", r.Metadata.SampleRate)
	}
	if r.Metadata.Channels != 1 {
		t.Fatalf("Channels = %d, want 1", r.Metadata.Channels)
	}
	if r.Metadata.BitDepth != 16 {
		t.Fatalf("BitDepth = %d, want 16", r.Metadata.BitDepth)
	}

	out, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error: %v", err)
	}
	if len(out) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(out), len(samples))
	}
	for i := range samples {
		if math.Abs(out[i]-samples[i]) > 1e-3 {
			t.Fatalf("sample %d = %v, want ~%v", i, out[i], samples[i])
		}
	}
}

func TestNewReaderRejectsGarbage(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "garbage-*.wav")
	if err != nil {
		t.Fatalf("CreateTemp() error: %v", err)
	}
	defer f.Close()
	if _, err := f.Write([]byte("not a wav file at all, just text")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatalf("Seek() error: %v", err)
	}
	if _, err := NewReader(f); err != ErrUnsupportedFormat {
		t.Fatalf("NewReader() error = %v, want ErrUnsupportedFormat", err)
	}
}
