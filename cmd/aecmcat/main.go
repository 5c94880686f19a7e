// Command aecmcat runs the mobile acoustic echo canceller over a pair of
// WAV files the way original_source/main.c's `aecm far.wav near.wav` did:
// it reads a far-end (loudspeaker reference) and a near-end (microphone)
// recording, cancels the echo, and writes the cleaned near-end audio next
// to the input.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"

	"github.com/n7lqd/aecmgo/aecm"
)

func main() {
	var (
		echoMode      = pflag.IntP("echo-mode", "e", 3, "suppression aggressiveness, 0-4 (default matches upstream)")
		cngMode       = pflag.Bool("cng", true, "enable comfort noise generation")
		msInSndCardBuf = pflag.Int("ms-sndcard-buf", 40, "reported sound-card buffering latency in ms")
		outPath        = pflag.StringP("out", "o", "", "output WAV path (default: <near>_out.wav)")
		dumpPattern    = pflag.String("dump-pattern", "", "optional strftime(3) pattern for a timestamped copy of the output")
		presetFilePath = pflag.String("preset-file", "", "YAML file of named echoMode/cngMode/msInSndCardBuf presets")
		presetName     = pflag.String("preset", "", "preset name to load from --preset-file, overriding the flags above")
		verbose        = pflag.BoolP("verbose", "v", false, "enable debug logging")
	)
	pflag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
		aecm.Logger.SetLevel(log.DebugLevel)
	}

	if *presetFilePath != "" && *presetName != "" {
		p, err := loadPreset(*presetFilePath, *presetName)
		if err != nil {
			log.Fatal("loading preset failed", "err", err)
		}
		*echoMode = p.EchoMode
		*cngMode = p.CngMode
		*msInSndCardBuf = p.MsInSndCardBuf
	}

	if pflag.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "usage: aecmcat [flags] far_file.wav near_file.wav")
		pflag.PrintDefaults()
		os.Exit(1)
	}
	farPath := pflag.Arg(0)
	nearPath := pflag.Arg(1)

	if *outPath == "" {
		ext := filepath.Ext(nearPath)
		*outPath = strings.TrimSuffix(nearPath, ext) + "_out" + ext
	}

	if err := run(farPath, nearPath, *outPath, *dumpPattern, *echoMode, *cngMode, *msInSndCardBuf); err != nil {
		log.Fatal("aecmcat failed", "err", err)
	}
}

func run(farPath, nearPath, outPath, dumpPattern string, echoMode int, cngMode bool, msInSndCardBuf int) error {
	far, err := readWavMono16(farPath)
	if err != nil {
		return fmt.Errorf("read far file: %w", err)
	}
	near, err := readWavMono16(nearPath)
	if err != nil {
		return fmt.Errorf("read near file: %w", err)
	}
	if far.SampleRate != near.SampleRate {
		return fmt.Errorf("sample rate mismatch: far=%d near=%d", far.SampleRate, near.SampleRate)
	}

	log.Info("processing", "far", farPath, "near", nearPath, "sampleRate", far.SampleRate, "echoMode", echoMode, "cng", cngMode)

	a := aecm.NewAecMobile()
	if err := a.Init(far.SampleRate); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer a.Close()

	if err := a.SetConfig(aecm.AecmConfig{CngMode: cngMode, EchoMode: echoMode}); err != nil {
		return fmt.Errorf("set config: %w", err)
	}

	frameLen := aecm.FrameLen
	if far.SampleRate == 16000 {
		frameLen *= 2
	}

	n := len(near.Samples)
	if len(far.Samples) < n {
		n = len(far.Samples)
	}
	frames := n / frameLen

	out := make([]int16, frames*frameLen)
	farFrame := make([]int16, frameLen)
	nearFrame := make([]int16, frameLen)
	outFrame := make([]int16, frameLen)

	start := time.Now()
	for f := 0; f < frames; f++ {
		off := f * frameLen
		copy(farFrame, far.Samples[off:off+frameLen])
		copy(nearFrame, near.Samples[off:off+frameLen])

		if err := a.BufferFarend(farFrame); err != nil {
			return fmt.Errorf("buffer far-end frame %d: %w", f, err)
		}
		if err := a.Process(nearFrame, nil, outFrame, msInSndCardBuf); err != nil {
			var warn *aecm.AecmWarning
			if !isWarning(err, &warn) {
				return fmt.Errorf("process frame %d: %w", f, err)
			}
			log.Warn("process", "frame", f, "warning", warn)
		}
		copy(out[off:off+frameLen], outFrame)
	}
	elapsed := time.Since(start)
	log.Info("done", "frames", frames, "elapsed", elapsed)

	if err := writeWavMono16(outPath, near.SampleRate, out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info("wrote output", "path", outPath)

	if dumpPattern != "" {
		p, err := strftime.New(dumpPattern)
		if err != nil {
			return fmt.Errorf("dump pattern: %w", err)
		}
		dumpPath := p.FormatString(time.Now())
		if err := writeWavMono16(dumpPath, near.SampleRate, out); err != nil {
			return fmt.Errorf("write dump: %w", err)
		}
		log.Info("wrote timestamped dump", "path", dumpPath)
	}

	return nil
}

func isWarning(err error, target **aecm.AecmWarning) bool {
	if w, ok := err.(*aecm.AecmWarning); ok {
		*target = w
		return true
	}
	return false
}
