// Package wavio is the external collaborator that turns WAV files on disk
// into the 64-bit float sample sequences the audiostretch core consumes
// and produces, and back again. Samples of multichannel files stay
// interleaved.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrUnsupportedFormat indicates the WAV header violates an invariant this
// package relies on (e.g. an unreadable or non-PCM container).
var ErrUnsupportedFormat = errors.New("wavio: unsupported format")

// Metadata describes a WAV file's format.
type Metadata struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Reader decodes a WAV file into 64-bit float samples in [-1, 1].
type Reader struct {
	decoder  *wav.Decoder
	Metadata Metadata
}

// NewReader opens a WAV stream for reading. r must support io.ReadSeeker,
// as go-audio/wav's decoder requires seeking to parse chunk headers.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrUnsupportedFormat
	}
	dec.ReadInfo()
	if dec.SampleRate == 0 || dec.NumChans == 0 {
		return nil, ErrUnsupportedFormat
	}
	return &Reader{
		decoder: dec,
		Metadata: Metadata{
			SampleRate: int(dec.SampleRate),
			Channels:   int(dec.NumChans),
			BitDepth:   int(dec.BitDepth),
		},
	}, nil
}

// ReadSamples decodes up to n interleaved samples (n total, across all
// channels) into [-1, 1]-scaled float64s.
func (r *Reader) ReadSamples(n int) ([]float64, error) {
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: r.Metadata.Channels, SampleRate: r.Metadata.SampleRate},
		Data:   make([]int, n),
	}
	read, err := r.decoder.PCMBuffer(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("wavio: read: %w", err)
	}
	out := make([]float64, read)
	full := float64(int(1) << (uint(r.Metadata.BitDepth) - 1))
	for i := 0; i < read; i++ {
		out[i] = float64(buf.Data[i]) / full
	}
	return out, nil
}

// ReadAll decodes every remaining sample in the file.
func (r *Reader) ReadAll() ([]float64, error) {
	var all []float64
	const chunk = 65536
	for {
		samples, err := r.ReadSamples(chunk)
		if err != nil {
			return nil, err
		}
		all = append(all, samples...)
		if len(samples) < chunk {
			break
		}
	}
	return all, nil
}

// SampleCount returns the total number of samples (per channel) in the
// file, when the decoder is able to report it.
func (r *Reader) SampleCount() int {
	dur, err := r.decoder.Duration()
	if err != nil {
		return 0
	}
	return int(dur.Seconds() * float64(r.Metadata.SampleRate))
}

// Writer encodes 64-bit float samples down to PCM and writes a WAV file.
type Writer struct {
	encoder  *wav.Encoder
	Metadata Metadata
}

// NewWriter opens a WAV stream for writing with the given channel count,
// sample rate, and bit depth (defaulting to 16-bit when bitDepth is 0).
func NewWriter(w io.WriteSeeker, channels, sampleRate, bitDepth int) *Writer {
	if bitDepth == 0 {
		bitDepth = 16
	}
	enc := wav.NewEncoder(w, sampleRate, bitDepth, channels, 1)
	return &Writer{
		encoder:  enc,
		Metadata: Metadata{SampleRate: sampleRate, Channels: channels, BitDepth: bitDepth},
	}
}

// WriteSamples encodes and appends float64 samples in [-1, 1].
func (w *Writer) WriteSamples(samples []float64) error {
	full := float64(int(1)<<(uint(w.Metadata.BitDepth)-1)) - 1
	ints := make([]int, len(samples))
	for i, s := range samples {
		scaled := s * full
		if scaled > full {
			scaled = full
		}
		if scaled < -full-1 {
			scaled = -full - 1
		}
		ints[i] = int(math.RoundToEven(scaled))
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: w.Metadata.Channels, SampleRate: w.Metadata.SampleRate},
		Data:           ints,
		SourceBitDepth: w.Metadata.BitDepth,
	}
	return w.encoder.Write(buf)
}

// Close flushes the WAV header and closes the encoder.
func (w *Writer) Close() error {
	return w.encoder.Close()
}
