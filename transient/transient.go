// Package transient implements the three-level (coarse-to-fine) peak/valley
// scanner that locates percussive onsets in a time-domain signal.
package transient

import "github.com/audiostretch/audiostretch/util"

// Defaults mirror the original implementation's timing constants at
// 44.1 kHz (roughly 512/256/32 samples).
const (
	DefaultFirstLevelStepSeconds  = 0.01161
	DefaultSecondLevelStepSeconds = 0.00580
	DefaultThirdLevelStepSeconds  = 0.00073

	DefaultMinValleyToPeakGrowthRatio = 1.5
	DefaultMinPeakLevel               = 0.1
	DefaultSecondsOfPastAudioToRetain = 1.0
)

// PeakAndValley holds the sample positions and plotted step-maxima found
// during one level of the cascade.
type PeakAndValley struct {
	startSamplePosition int
	stepSize            int
	peakSample          int
	valleySample        int
	plottedPoints       []float64
}

// NewPeakAndValley records where analysis started and the step size used.
func NewPeakAndValley(startSamplePosition, stepSize int) *PeakAndValley {
	return &PeakAndValley{startSamplePosition: startSamplePosition, stepSize: stepSize}
}

// Reset clears the stored data, re-seeding the start position and step size.
func (p *PeakAndValley) Reset(startSamplePosition, stepSize int) {
	p.startSamplePosition = startSamplePosition
	p.stepSize = stepSize
	p.peakSample = 0
	p.valleySample = 0
	p.plottedPoints = p.plottedPoints[:0]
}

// StartSamplePosition returns where analysis began.
func (p *PeakAndValley) StartSamplePosition() int { return p.startSamplePosition }

// StepSize returns the step size used for this level's scan.
func (p *PeakAndValley) StepSize() int { return p.stepSize }

// PeakSamplePosition returns the absolute sample position of the peak.
func (p *PeakAndValley) PeakSamplePosition() int { return p.peakSample }

// SetPeakSamplePosition sets the absolute sample position of the peak.
func (p *PeakAndValley) SetPeakSamplePosition(pos int) { p.peakSample = pos }

// ValleySamplePosition returns the absolute sample position of the valley.
func (p *PeakAndValley) ValleySamplePosition() int { return p.valleySample }

// SetValleySamplePosition sets the absolute sample position of the valley.
func (p *PeakAndValley) SetValleySamplePosition(pos int) { p.valleySample = pos }

// PeakPoint returns the peak's x-axis position on the plotted-points graph.
func (p *PeakAndValley) PeakPoint() int {
	if p.stepSize == 0 {
		return 0
	}
	return (p.peakSample - p.startSamplePosition) / p.stepSize
}

// ValleyPoint returns the valley's x-axis position on the plotted-points graph.
func (p *PeakAndValley) ValleyPoint() int {
	if p.stepSize == 0 {
		return 0
	}
	return (p.valleySample - p.startSamplePosition) / p.stepSize
}

// PushPlottedPoint records a step-maximum from the analysis graph.
func (p *PeakAndValley) PushPlottedPoint(point float64) {
	p.plottedPoints = append(p.plottedPoints, point)
}

// PlottedPoints returns every step-maximum recorded during the scan.
func (p *PeakAndValley) PlottedPoints() []float64 {
	return p.plottedPoints
}

// Detector scans a time-domain signal for transient onsets using a
// coarse-to-fine three-level peak/valley cascade.
type Detector struct {
	sampleRate int

	firstLevelStepSize  int
	secondLevelStepSize int
	thirdLevelStepSize  int

	minValleyToPeakGrowthRatio float64
	minPeakLevel               float64
	secondsOfPastAudioToRetain float64

	buf                   []float64
	inputSamplesProcessed int64
	transients            []int
	sawNonSilence         bool

	lastFirst  *PeakAndValley
	lastSecond *PeakAndValley
	lastThird  *PeakAndValley
}

func stepFromSeconds(sampleRate int, seconds float64) int {
	step := int(float64(sampleRate)*seconds + 0.5)
	if step < 1 {
		step = 1
	}
	return step
}

// New builds a Detector for the given sample rate using default timing and
// sensitivity constants.
func New(sampleRate int) *Detector {
	return &Detector{
		sampleRate:                 sampleRate,
		firstLevelStepSize:         stepFromSeconds(sampleRate, DefaultFirstLevelStepSeconds),
		secondLevelStepSize:        stepFromSeconds(sampleRate, DefaultSecondLevelStepSeconds),
		thirdLevelStepSize:         stepFromSeconds(sampleRate, DefaultThirdLevelStepSeconds),
		minValleyToPeakGrowthRatio: DefaultMinValleyToPeakGrowthRatio,
		minPeakLevel:               DefaultMinPeakLevel,
		secondsOfPastAudioToRetain: DefaultSecondsOfPastAudioToRetain,
	}
}

// SetValleyToPeakRatio overrides the minimum valley-to-peak growth ratio
// required to confirm a peak.
func (d *Detector) SetValleyToPeakRatio(ratio float64) {
	d.minValleyToPeakGrowthRatio = ratio
}

// FirstLevelStepSize returns the coarse step size in samples. Transients
// closer than three times this step to the previous one are suppressed.
func (d *Detector) FirstLevelStepSize() int {
	return d.firstLevelStepSize
}

// SubmitAudioData appends samples to the detector's input FIFO and advances
// the scan as far as currently available data allows.
func (d *Detector) SubmitAudioData(samples []float64) error {
	d.buf = append(d.buf, samples...)
	d.process()
	return nil
}

// Transients returns every transient sample position found so far, in
// strictly ascending order.
func (d *Detector) Transients() []int {
	out := make([]int, len(d.transients))
	copy(out, d.transients)
	return out
}

// Reset clears all detector state, including the transients-found flag.
func (d *Detector) Reset() {
	d.buf = nil
	d.inputSamplesProcessed = 0
	d.transients = nil
	d.sawNonSilence = false
	d.lastFirst, d.lastSecond, d.lastThird = nil, nil, nil
}

type levelResult struct {
	peakIdx, valleyIdx int
	peakVal, valleyVal float64
}

// scanLevel runs the peak/valley cascade rule over window using the given
// step size. It returns the best candidate found (confirmed, if any) along
// with whether a confirmed peak/valley pair was actually located. When the
// window holds fewer than four full steps, confirmed is false and the zero
// value is returned.
func (d *Detector) scanLevel(window []float64, step int) (levelResult, bool) {
	if step <= 0 {
		return levelResult{}, false
	}
	steps := len(window) / step
	if steps < 4 {
		return levelResult{}, false
	}

	stepMax := func(idx int) float64 {
		start := idx * step
		end := start + step
		if end > len(window) {
			end = len(window)
		}
		m := 0.0
		for _, s := range window[start:end] {
			if a := util.Abs(s); a > m {
				m = a
			}
		}
		return m
	}

	valley := stepMax(0)
	valleyIdx := 0

	best := levelResult{peakVal: -1}

	for idx := 1; idx <= steps-2; idx++ {
		left := stepMax(idx - 1)
		center := stepMax(idx)
		right := stepMax(idx + 1)
		isPeak := center > left && center >= right

		if isPeak {
			if center > best.peakVal {
				best = levelResult{peakIdx: idx, valleyIdx: valleyIdx, peakVal: center, valleyVal: valley}
			}
			if center > d.minPeakLevel && valley > 0 && (center-valley)/valley > d.minValleyToPeakGrowthRatio {
				return levelResult{peakIdx: idx, valleyIdx: valleyIdx, peakVal: center, valleyVal: valley}, true
			}
			valley = center
			valleyIdx = idx
		} else if center < valley {
			valley = center
			valleyIdx = idx
		}
	}

	if best.peakVal < 0 {
		return levelResult{}, false
	}
	return best, false
}

// process advances the detection cascade as far as currently buffered
// input allows, appending newly confirmed transients.
func (d *Detector) process() {
	for {
		if !d.sawNonSilence {
			i := 0
			for i < len(d.buf) && util.Abs(d.buf[i]) == 0 {
				i++
			}
			if i > 0 {
				d.buf = d.buf[i:]
				d.inputSamplesProcessed += int64(i)
			}
			if len(d.buf) == 0 {
				return
			}
			d.sawNonSilence = true
			d.transients = append(d.transients, int(d.inputSamplesProcessed))
		}

		first, confirmed := d.scanLevel(d.buf, d.firstLevelStepSize)
		if !confirmed {
			d.trimRetention()
			return
		}

		firstPeakPos := first.peakIdx * d.firstLevelStepSize
		firstValleyPos := first.valleyIdx * d.firstLevelStepSize

		firstPV := NewPeakAndValley(int(d.inputSamplesProcessed), d.firstLevelStepSize)
		firstPV.SetPeakSamplePosition(int(d.inputSamplesProcessed) + firstPeakPos)
		firstPV.SetValleySamplePosition(int(d.inputSamplesProcessed) + firstValleyPos)
		d.lastFirst = firstPV

		secondSpan := (firstPeakPos - firstValleyPos) + 2*d.firstLevelStepSize
		secondEnd := firstValleyPos + secondSpan
		if secondEnd > len(d.buf) {
			secondEnd = len(d.buf)
		}
		secondWindow := d.buf[firstValleyPos:secondEnd]
		second, _ := d.scanLevel(secondWindow, d.secondLevelStepSize)

		secondPeakPos := firstValleyPos + second.peakIdx*d.secondLevelStepSize
		secondValleyPos := firstValleyPos + second.valleyIdx*d.secondLevelStepSize

		secondPV := NewPeakAndValley(int(d.inputSamplesProcessed)+firstValleyPos, d.secondLevelStepSize)
		secondPV.SetPeakSamplePosition(int(d.inputSamplesProcessed) + secondPeakPos)
		secondPV.SetValleySamplePosition(int(d.inputSamplesProcessed) + secondValleyPos)
		d.lastSecond = secondPV

		thirdSpan := (secondPeakPos - secondValleyPos) + d.firstLevelStepSize
		thirdEnd := secondValleyPos + thirdSpan
		if thirdEnd > len(d.buf) {
			thirdEnd = len(d.buf)
		}
		thirdWindow := d.buf[secondValleyPos:thirdEnd]
		third, _ := d.scanLevel(thirdWindow, d.thirdLevelStepSize)

		thirdValleyPos := secondValleyPos + third.valleyIdx*d.thirdLevelStepSize

		thirdPV := NewPeakAndValley(int(d.inputSamplesProcessed)+secondValleyPos, d.thirdLevelStepSize)
		thirdPV.SetValleySamplePosition(int(d.inputSamplesProcessed) + thirdValleyPos)
		d.lastThird = thirdPV

		absolutePos := int(d.inputSamplesProcessed) + thirdValleyPos
		if d.farEnoughFromLast(absolutePos) {
			d.transients = append(d.transients, absolutePos)
		}

		dropThrough := firstPeakPos + d.firstLevelStepSize
		if dropThrough > len(d.buf) {
			dropThrough = len(d.buf)
		}
		if dropThrough <= 0 {
			dropThrough = d.firstLevelStepSize
			if dropThrough > len(d.buf) {
				dropThrough = len(d.buf)
			}
		}
		d.buf = d.buf[dropThrough:]
		d.inputSamplesProcessed += int64(dropThrough)
	}
}

func (d *Detector) farEnoughFromLast(pos int) bool {
	if len(d.transients) == 0 {
		return true
	}
	last := d.transients[len(d.transients)-1]
	diff := pos - last
	if diff < 0 {
		diff = -diff
	}
	return diff >= 3*d.firstLevelStepSize
}

// trimRetention bounds how much already-scanned history the detector keeps
// buffered, per secondsOfPastAudioToRetain.
func (d *Detector) trimRetention() {
	retain := int(float64(d.sampleRate) * d.secondsOfPastAudioToRetain)
	needed := d.firstLevelStepSize + 3*d.firstLevelStepSize
	if retain < needed {
		retain = needed
	}
	if len(d.buf) <= retain {
		return
	}
	drop := len(d.buf) - retain
	d.buf = d.buf[drop:]
	d.inputSamplesProcessed += int64(drop)
}
