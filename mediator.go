package audiostretch

import (
	"math"

	"github.com/audiostretch/audiostretch/buffer"
	"github.com/audiostretch/audiostretch/internal/logging"
	"github.com/audiostretch/audiostretch/resample"
	"github.com/audiostretch/audiostretch/stage"
	"github.com/audiostretch/audiostretch/transient"
	"github.com/audiostretch/audiostretch/vocoder"
)

// DefaultBufferSize is the staging chunk size the Mediator reads and
// writes in while driving a segment's processors. Not specified
// numerically by the source this design is grounded on; chosen and
// documented here per that open question.
const DefaultBufferSize = 4096

// Options configures a single end-to-end Process invocation.
type Options struct {
	// Input is the mono PCM signal in [-1, 1]. Mandatory.
	Input []float64
	// InputSampleRate is the sample rate of Input, in Hz. Mandatory.
	InputSampleRate int

	// StretchFactorGiven/StretchFactor: output/input duration ratio.
	StretchFactorGiven bool
	StretchFactor      float64

	// PitchShiftGiven/PitchShiftSemitones: signed semitone shift, positive
	// raises pitch.
	PitchShiftGiven     bool
	PitchShiftSemitones float64

	// ResampleGiven/ResampleRateHz: explicit output sample-rate target.
	ResampleGiven  bool
	ResampleRateHz int

	// ValleyToPeakRatio overrides the transient detector's sensitivity;
	// zero means use transient.DefaultMinValleyToPeakGrowthRatio.
	ValleyToPeakRatio float64

	// TransientPositions, when non-nil, is used verbatim instead of
	// running transient detection (the transientConfigFilename path).
	TransientPositions []int

	// TransientCallback, if set, is invoked with each transient position
	// as it is finalized.
	TransientCallback func(position int)

	// Logger receives per-segment progress messages. Defaults to
	// logging.Default() when nil.
	Logger *logging.Logger
}

// Result is the outcome of a successful Process call.
type Result struct {
	Output           []float64
	OutputSampleRate int
}

// Mediator orchestrates the Transient Detector, Phase Vocoder, and
// Resampler into one end-to-end stretch/shift/resample pipeline.
type Mediator struct {
	opts   Options
	logger *logging.Logger

	out                *buffer.Buffer
	resampler          *resample.Resampler
	currentPV          *vocoder.PhaseVocoder
	transientOverlap   *buffer.Buffer
	overlapSampleCount int
	pvSamplesOutput    int
}

// NewMediator builds a Mediator for opts.
func NewMediator(opts Options) *Mediator {
	if opts.ValleyToPeakRatio == 0 {
		opts.ValleyToPeakRatio = transient.DefaultMinValleyToPeakGrowthRatio
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Mediator{
		opts:               opts,
		logger:             logger,
		out:                buffer.New(),
		transientOverlap:   buffer.New(),
		overlapSampleCount: vocoder.DefaultFFTSize / vocoder.OverlapFactor,
	}
}

// Process runs the configured pipeline end to end.
func (m *Mediator) Process() (*Result, error) {
	o := &m.opts

	if o.Input == nil || o.InputSampleRate <= 0 {
		return nil, ErrMissingInput
	}
	if !o.StretchFactorGiven && !o.PitchShiftGiven && !o.ResampleGiven && o.TransientCallback == nil {
		return nil, ErrNoActionConfigured
	}

	m.logger.Info("processing", "samples", len(o.Input), "inputSampleRate", o.InputSampleRate)

	if err := m.instantiateResampler(); err != nil {
		return nil, err
	}

	var transients []int
	if o.StretchFactorGiven || o.PitchShiftGiven || o.TransientCallback != nil {
		transients = m.obtainTransients()
		if o.TransientCallback != nil {
			for _, pos := range transients {
				o.TransientCallback(pos)
			}
		}
	}

	// If we're not stretching, pitch shifting, or resampling, we were only
	// asked to report transients via the callback; we're done.
	if !o.StretchFactorGiven && !o.PitchShiftGiven && !o.ResampleGiven {
		return &Result{OutputSampleRate: o.InputSampleRate}, nil
	}

	sampleCount := len(o.Input)
	outputSampleRate := o.InputSampleRate
	if o.ResampleGiven {
		outputSampleRate = o.ResampleRateHz
	}

	if o.StretchFactorGiven || o.PitchShiftGiven || o.TransientCallback != nil {
		m.handleLeadingSilence(transients, sampleCount)

		idx := 0
		for idx < len(transients)-1 {
			if err := m.processAudioSection(transients[idx], transients[idx+1]); err != nil {
				return nil, err
			}
			idx++
		}
		// With no transients, handleLeadingSilence has already output the
		// whole input as silence.
		if len(transients) > 0 {
			if err := m.processAudioSection(transients[idx], sampleCount); err != nil {
				return nil, err
			}
		}
	} else {
		if err := m.processAudioSection(0, sampleCount); err != nil {
			return nil, err
		}
	}

	if o.ResampleGiven || o.PitchShiftGiven {
		m.logger.Debug("final resampler flush")
		var rs stage.Processor = m.resampler
		if err := rs.FlushAudioData(); err != nil {
			return nil, err
		}
		avail := rs.OutputSamplesAvailable()
		flushed, err := rs.GetAudioData(avail)
		if err != nil {
			return nil, err
		}
		m.out.Append(flushed)
	}

	m.logger.Info("done", "outputSamples", m.out.Len(), "outputSampleRate", outputSampleRate)
	return &Result{Output: m.out.Data(), OutputSampleRate: outputSampleRate}, nil
}

func (m *Mediator) obtainTransients() []int {
	o := &m.opts
	if o.TransientPositions != nil {
		return o.TransientPositions
	}
	d := transient.New(o.InputSampleRate)
	d.SetValleyToPeakRatio(o.ValleyToPeakRatio)
	d.SubmitAudioData(o.Input)
	return d.Transients()
}

func (m *Mediator) handleLeadingSilence(transients []int, sampleCount int) {
	if len(transients) == 0 {
		m.handleSilenceInInput(sampleCount)
	} else if transients[0] != 0 {
		m.handleSilenceInInput(transients[0])
	}
}

func (m *Mediator) handleSilenceInInput(sampleCount int) {
	samplesToOutput := int(float64(sampleCount)*m.stretchFactorForSilence() + 0.5)
	current := 0
	for current < samplesToOutput {
		write := DefaultBufferSize
		if current+write > samplesToOutput {
			write = samplesToOutput - current
		}
		m.out.AppendSilence(write)
		current += write
	}
}

func (m *Mediator) stretchFactorForSilence() float64 {
	if m.opts.StretchFactorGiven {
		return m.opts.StretchFactor
	}
	return 1.0
}

func (m *Mediator) processAudioSection(start, end int) error {
	total := end - start
	if total <= 0 {
		return nil
	}

	m.instantiatePhaseVocoder(total)
	m.pvSamplesOutput = 0
	m.logger.Debug("segment start", "start", start, "end", end, "samples", total)

	pos := 0
	for pos < total {
		toRead := DefaultBufferSize
		if pos+toRead > total {
			toRead = total - pos
		}
		chunk := m.opts.Input[start+pos : start+pos+toRead]
		if err := m.processInput(chunk); err != nil {
			return err
		}
		pos += toRead
	}

	return m.finalizeAudioSection(total)
}

func (m *Mediator) processInput(input []float64) error {
	o := &m.opts
	var result []float64
	var err error

	switch {
	case o.PitchShiftGiven || (o.StretchFactorGiven && o.ResampleGiven):
		result, err = m.processAudioWithPhaseVocoder(input)
		if err != nil {
			return err
		}
		result, err = m.processAudioWithResampler(result)
	case o.StretchFactorGiven && !o.PitchShiftGiven:
		result, err = m.processAudioWithPhaseVocoder(input)
	case o.ResampleGiven && !o.PitchShiftGiven:
		result, err = m.processAudioWithResampler(input)
	default:
		return ErrNoActionConfigured
	}
	if err != nil {
		return err
	}
	m.out.Append(result)
	return nil
}

// drainAll drives any stage.Processor through its submit/available/get
// contract, pulling every sample it yields for input before returning. The
// phase vocoder, resampler, and low-pass filter all implement this contract
// identically, so the Mediator only needs to know it here once.
func (m *Mediator) drainAll(p stage.Processor, input []float64) ([]float64, error) {
	if err := p.SubmitAudioData(input); err != nil {
		return nil, err
	}

	result := buffer.New()
	for p.OutputSamplesAvailable() > 0 {
		toRetrieve := DefaultBufferSize
		if toRetrieve > p.OutputSamplesAvailable() {
			toRetrieve = p.OutputSamplesAvailable()
		}
		samples, err := p.GetAudioData(toRetrieve)
		if err != nil {
			return nil, err
		}
		result.Append(samples)
	}
	return result.Data(), nil
}

func (m *Mediator) processAudioWithPhaseVocoder(input []float64) ([]float64, error) {
	samples, err := m.drainAll(m.currentPV, input)
	if err != nil {
		return nil, err
	}
	result := buffer.FromSlice(samples)

	if m.transientOverlap.Len() > 0 && result.Len() >= m.transientOverlap.Len() {
		mixed := buffer.LinearCrossfade(m.transientOverlap, result)
		tail := result.Data()[mixed.Len():]
		result = buffer.FromSlice(append(mixed.Data(), tail...))
		m.transientOverlap.Clear()
	}

	m.pvSamplesOutput += result.Len()
	return result.Data(), nil
}

func (m *Mediator) finalizeAudioSection(totalInputSamples int) error {
	var data []float64

	if m.opts.StretchFactorGiven || m.opts.PitchShiftGiven {
		stretchFactor := m.currentPV.GetStretchFactor()
		totalNeeded := int(float64(totalInputSamples)*stretchFactor + 0.5)
		stillNeeded := totalNeeded - m.pvSamplesOutput
		m.logger.Debug("segment flush", "stretchFactor", stretchFactor, "samplesNeeded", stillNeeded)
		flushed, err := m.flushPhaseVocoderOutput(stillNeeded)
		if err != nil {
			return err
		}
		data = flushed
	}

	if len(data) > 0 && (m.opts.ResampleGiven || m.opts.PitchShiftGiven) {
		return m.resampler.SubmitAudioData(data)
	}
	m.out.Append(data)
	return nil
}

func (m *Mediator) flushPhaseVocoderOutput(samplesNeeded int) ([]float64, error) {
	var pv stage.Processor = m.currentPV
	if err := pv.FlushAudioData(); err != nil {
		return nil, err
	}
	avail := pv.OutputSamplesAvailable()
	flushed, err := pv.GetAudioData(avail)
	if err != nil {
		return nil, err
	}

	var toReturn []float64
	if samplesNeeded > 0 {
		if samplesNeeded > len(flushed) {
			return nil, vocoder.ErrFlushUnderrun
		}
		toReturn = flushed[:samplesNeeded]
		flushed = flushed[samplesNeeded:]

		if m.transientOverlap.Len() > 0 {
			mixed := buffer.LinearCrossfade(m.transientOverlap, buffer.FromSlice(toReturn))
			tail := toReturn[mixed.Len():]
			toReturn = append(mixed.Data(), tail...)
			m.transientOverlap.Clear()
		}
	}

	if len(flushed) >= m.overlapSampleCount {
		m.transientOverlap.Append(flushed[:m.overlapSampleCount])
	}

	return toReturn, nil
}

func (m *Mediator) processAudioWithResampler(input []float64) ([]float64, error) {
	return m.drainAll(m.resampler, input)
}

func (m *Mediator) instantiatePhaseVocoder(sampleLength int) {
	o := &m.opts
	if !o.StretchFactorGiven && !o.PitchShiftGiven {
		return
	}
	stretchFactor := 1.0
	if o.StretchFactorGiven {
		stretchFactor = o.StretchFactor
	}
	if o.PitchShiftGiven {
		stretchFactor *= m.pitchShiftRatio()
	}
	m.currentPV = vocoder.New(o.InputSampleRate, sampleLength, stretchFactor)
}

func (m *Mediator) instantiateResampler() error {
	o := &m.opts
	if !o.ResampleGiven && !o.PitchShiftGiven {
		return nil
	}
	r, err := resample.New(o.InputSampleRate, m.resampleRatio())
	if err != nil {
		return err
	}
	m.resampler = r
	return nil
}

func (m *Mediator) pitchShiftRatio() float64 {
	return math.Pow(2.0, m.opts.PitchShiftSemitones/12.0)
}

func (m *Mediator) resampleRatio() float64 {
	ratio := 1.0
	o := &m.opts
	if o.ResampleGiven {
		ratio = float64(o.ResampleRateHz) / float64(o.InputSampleRate)
	}
	if o.PitchShiftGiven {
		ratio /= m.pitchShiftRatio()
	}
	return ratio
}
