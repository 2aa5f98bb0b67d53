// Command audiostretch drives the audiostretch library against WAV files
// on disk.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/audiostretch/audiostretch"
	"github.com/audiostretch/audiostretch/internal/logging"
	"github.com/audiostretch/audiostretch/wavio"
)

// CLI defines the audiostretch command-line interface.
type CLI struct {
	Stretch           float64 `help:"Output/input duration ratio." placeholder:"F"`
	Pitch             float64 `help:"Pitch shift in semitones (signed)." placeholder:"SEMITONES"`
	ResampleRate      int     `help:"Target output sample rate in Hz." placeholder:"HZ"`
	ValleyToPeak      float64 `help:"Transient detector sensitivity." default:"1.5" placeholder:"RATIO"`
	TransientConfig   string  `help:"Pre-computed transient position file (one sample index per line)." type:"existingfile"`
	Debug             bool    `help:"Enable debug logging to stderr."`
	Logs              bool    `help:"Print detected transient sample positions to stdout after processing."`
	Input             string  `arg:"" name:"input" help:"Input WAV file." type:"existingfile"`
	Output            string  `arg:"" name:"output" help:"Output WAV file." optional:""`
}

func main() {
	cli := &CLI{}
	kong.Parse(cli,
		kong.Name("audiostretch"),
		kong.Description("Offline time-stretching and pitch-shifting for WAV files."),
		kong.UsageOnError(),
	)

	logger := logging.New(os.Stderr, cli.Debug)

	if err := run(cli, logger); err != nil {
		logger.Error("audiostretch failed", "error", err)
		os.Exit(1)
	}
}

func run(cli *CLI, logger *logging.Logger) error {
	inFile, err := os.Open(cli.Input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inFile.Close()

	reader, err := wavio.NewReader(inFile)
	if err != nil {
		return fmt.Errorf("read input header: %w", err)
	}

	samples, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	logger.Info("decoded input", "samples", len(samples), "sampleRate", reader.Metadata.SampleRate)

	opts := audiostretch.Options{
		Input:             samples,
		InputSampleRate:   reader.Metadata.SampleRate,
		ValleyToPeakRatio: cli.ValleyToPeak,
		Logger:            logger,
	}

	if cli.Stretch > 0 {
		opts.StretchFactorGiven = true
		opts.StretchFactor = cli.Stretch
	}
	if cli.Pitch != 0 {
		opts.PitchShiftGiven = true
		opts.PitchShiftSemitones = cli.Pitch
	}
	if cli.ResampleRate > 0 {
		opts.ResampleGiven = true
		opts.ResampleRateHz = cli.ResampleRate
	}
	if cli.TransientConfig != "" {
		f, err := os.Open(cli.TransientConfig)
		if err != nil {
			return fmt.Errorf("open transient config: %w", err)
		}
		defer f.Close()
		positions, err := audiostretch.ParseTransientConfig(f)
		if err != nil {
			return fmt.Errorf("parse transient config: %w", err)
		}
		opts.TransientPositions = positions
	}

	var detected []int
	if cli.Logs {
		opts.TransientCallback = func(pos int) { detected = append(detected, pos) }
	}

	mediator := audiostretch.NewMediator(opts)
	result, err := mediator.Process()
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}

	if cli.Logs {
		for _, pos := range detected {
			fmt.Println(pos)
		}
	}

	if cli.Output == "" {
		logger.Info("no output file given; done")
		return nil
	}

	outFile, err := os.Create(cli.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer outFile.Close()

	writer := wavio.NewWriter(outFile, reader.Metadata.Channels, result.OutputSampleRate, reader.Metadata.BitDepth)
	if err := writer.WriteSamples(result.Output); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize output: %w", err)
	}

	logger.Info("wrote output", "samples", len(result.Output), "sampleRate", result.OutputSampleRate)
	return nil
}
