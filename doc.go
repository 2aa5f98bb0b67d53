// Package audiostretch implements an offline audio time-stretching and
// pitch-shifting engine.
//
// Given a PCM input signal, a target stretch factor (output-to-input
// duration ratio) and/or a pitch-shift amount in semitones, the Mediator
// produces a new PCM signal of modified length and/or pitch while
// preserving the sharpness of percussive onsets.
//
// # Core subsystems
//
// Three tightly coupled subsystems do the work:
//
//   - A Phase Vocoder (package vocoder) — an STFT-based time-stretcher
//     that resamples the spectral representation at shifted hop
//     positions, using phase propagation to keep sinusoidal components
//     phase-coherent across frames.
//   - A Transient Detector (package transient) — a hierarchical
//     peak/valley scanner that locates onsets in the time domain so the
//     stretcher can be reset at each one, preventing smear.
//   - A Resampler (package resample) — a polyphase windowed-sinc
//     resampler used both to realize pitch shifting (stretch then
//     resample) and to match output sample-rate targets.
//
// Mediator orchestrates these three into a pipeline: transients segment
// the input, each segment is independently stretched, optional
// resampling follows, and crossfades stitch segment boundaries.
//
// # Scope
//
// WAV container I/O, CLI argument parsing, and logging live outside the
// core in wavio, cmd/audiostretch, and internal/logging respectively.
// The core never touches a file handle; it consumes and produces
// in-memory 64-bit float sample sequences.
package audiostretch
