// Command aecmlive demonstrates the echo canceller on a live audio
// stream: it plays a synthesized probe tone out the speaker (and feeds
// that same tone in as the far-end reference), captures the microphone
// -- which picks up the tone's acoustic echo as well as whatever else is
// in the room -- and logs the microphone and cancelled-output RMS once a
// second so convergence can be followed.
package main

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"

	"github.com/n7lqd/aecmgo/aecm"
)

const sampleRate = 16000

// toneGenerator synthesizes a fixed-frequency sine probe tone, in the
// teacher's gen_tone.go style (a lookup table indexed by phase rather
// than calling math.Sin per sample).
type toneGenerator struct {
	table [256]int16
	phase uint32
	step  uint32
}

func newToneGenerator(freqHz float64, amplitudePercent int) *toneGenerator {
	t := &toneGenerator{}
	for i := range t.table {
		a := 2 * math.Pi * float64(i) / float64(len(t.table))
		t.table[i] = int16(math.Sin(a) * 32767 * float64(amplitudePercent) / 100.0)
	}
	t.step = uint32(freqHz / sampleRate * (1 << 32))
	return t
}

func (t *toneGenerator) next() int16 {
	s := t.table[(t.phase>>24)&0xff]
	t.phase += t.step
	return s
}

func main() {
	var (
		echoMode       = pflag.IntP("echo-mode", "e", 3, "suppression aggressiveness, 0-4")
		cngMode        = pflag.Bool("cng", true, "enable comfort noise generation")
		msInSndCardBuf = pflag.Int("ms-sndcard-buf", 40, "reported sound-card buffering latency in ms")
		seconds        = pflag.IntP("seconds", "s", 10, "how long to run before exiting")
		toneHz         = pflag.Float64("tone-hz", 440, "probe tone frequency")
		toneAmplitude  = pflag.Int("tone-amplitude", 50, "probe tone amplitude, 0-100")
	)
	pflag.Parse()

	if err := run(*echoMode, *cngMode, *msInSndCardBuf, *seconds, *toneHz, *toneAmplitude); err != nil {
		log.Fatal("aecmlive failed", "err", err)
	}
}

func run(echoMode int, cngMode bool, msInSndCardBuf, seconds int, toneHz float64, toneAmplitude int) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init: %w", err)
	}
	defer portaudio.Terminate()

	a := aecm.NewAecMobile()
	if err := a.Init(sampleRate); err != nil {
		return fmt.Errorf("init canceller: %w", err)
	}
	defer a.Close()
	if err := a.SetConfig(aecm.AecmConfig{CngMode: cngMode, EchoMode: echoMode}); err != nil {
		return fmt.Errorf("set config: %w", err)
	}

	frameLen := aecm.FrameLen * 2 // 10 ms at 16 kHz
	tone := newToneGenerator(toneHz, toneAmplitude)
	speaker := make([]int16, frameLen)
	mic := make([]int16, frameLen)
	clean := make([]int16, frameLen)

	stream, err := portaudio.OpenDefaultStream(1, 1, float64(sampleRate), frameLen, mic, speaker)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}
	defer stream.Stop()

	log.Info("streaming probe tone", "sampleRate", sampleRate, "frameLen", frameLen, "seconds", seconds, "toneHz", toneHz)

	frames := seconds * sampleRate / frameLen
	for f := 0; f < frames; f++ {
		for i := range speaker {
			speaker[i] = tone.next()
		}
		if err := stream.Write(); err != nil {
			return fmt.Errorf("write: %w", err)
		}
		if err := stream.Read(); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		if err := a.BufferFarend(speaker); err != nil {
			return fmt.Errorf("buffer far-end: %w", err)
		}
		if err := a.Process(mic, nil, clean, msInSndCardBuf); err != nil {
			var warn *aecm.AecmWarning
			if w, ok := err.(*aecm.AecmWarning); ok {
				warn = w
				log.Warn("process", "frame", f, "warning", warn)
			} else {
				return fmt.Errorf("process frame %d: %w", f, err)
			}
		}

		if f%(sampleRate/frameLen) == 0 {
			log.Info("convergence", "second", f*frameLen/sampleRate, "micRMS", rms(mic), "cleanRMS", rms(clean))
		}
	}

	log.Info("done")
	return nil
}

func rms(samples []int16) float64 {
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
