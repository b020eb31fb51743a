package notify

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
)

const (
	sampleRate    = beep.SampleRate(44100)
	toneLength    = 140 * time.Millisecond
	toneGap       = 50 * time.Millisecond
	toneAmplitude = 0.3
	fadeLength    = 10 * time.Millisecond
)

// Sound plays a short synthesized cue per notification kind. The speaker is
// opened lazily; if no audio device is available the cue is skipped.
type Sound struct {
	Volume float64
	Logger *slog.Logger

	once    sync.Once
	initErr error
}

func (sound *Sound) Notify(notification Notification) {
	sound.once.Do(func() {
		sound.initErr = speaker.Init(sampleRate, sampleRate.N(time.Second/10))
		if sound.initErr != nil {
			logger := sound.Logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.Warn("audio unavailable, cues disabled", slog.Any("err", sound.initErr))
		}
	})
	if sound.initErr != nil {
		return
	}
	speaker.Play(&effects.Volume{
		Streamer: Cue(notification.Kind),
		Base:     2,
		Volume:   sound.Volume,
	})
}

// Cue returns the tone sequence for a kind: falling for auto-pause, rising
// for the reminder.
func Cue(kind Kind) beep.Streamer {
	var freqs []float64
	switch kind {
	case KindAutoPaused:
		freqs = []float64{880, 660, 440}
	default:
		freqs = []float64{523.25, 659.25, 783.99}
	}

	parts := make([]beep.Streamer, 0, len(freqs)*2)
	for i, freq := range freqs {
		if i > 0 {
			parts = append(parts, beep.Silence(sampleRate.N(toneGap)))
		}
		parts = append(parts, Tone(freq, toneLength))
	}
	return beep.Seq(parts...)
}

// Tone returns a sine wave with short linear fades to avoid clicks.
func Tone(freq float64, length time.Duration) beep.Streamer {
	total := sampleRate.N(length)
	fade := sampleRate.N(fadeLength)
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		count := 0
		for i := range samples {
			if pos >= total {
				break
			}
			envelope := 1.0
			if pos < fade {
				envelope = float64(pos) / float64(fade)
			} else if remaining := total - pos; remaining < fade {
				envelope = float64(remaining) / float64(fade)
			}
			value := toneAmplitude * envelope * math.Sin(2*math.Pi*freq*float64(pos)/float64(sampleRate))
			samples[i][0] = value
			samples[i][1] = value
			pos++
			count++
		}
		return count, true
	})
}
