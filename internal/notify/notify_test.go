package notify

import (
	"math"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
)

func drain(streamer beep.Streamer) (int, float64) {
	buf := make([][2]float64, 512)
	total := 0
	peak := 0.0
	for {
		n, ok := streamer.Stream(buf)
		for _, sample := range buf[:n] {
			peak = math.Max(peak, math.Abs(sample[0]))
		}
		total += n
		if !ok {
			return total, peak
		}
	}
}

func TestToneLengthAndAmplitude(t *testing.T) {
	samples, peak := drain(Tone(440, toneLength))
	assert.Equal(t, sampleRate.N(toneLength), samples)
	assert.LessOrEqual(t, peak, toneAmplitude)
	assert.Greater(t, peak, 0.0)
}

func TestCueLength(t *testing.T) {
	want := 3*sampleRate.N(toneLength) + 2*sampleRate.N(toneGap)
	for _, kind := range []Kind{KindAutoPaused, KindReminder} {
		samples, _ := drain(Cue(kind))
		assert.Equal(t, want, samples, string(kind))
	}
}

func TestMultiFansOut(t *testing.T) {
	var got []Notification
	record := Func(func(n Notification) { got = append(got, n) })

	Multi{record, nil, record}.Notify(Reminder("Blanket"))

	assert.Len(t, got, 2)
	assert.Equal(t, MessageReminder, got[0].Message)
	assert.Equal(t, "Blanket", got[0].Title)
}

func TestBuilders(t *testing.T) {
	assert.Equal(t, KindAutoPaused, AutoPaused("x").Kind)
	assert.Equal(t, MessageAutoPaused, AutoPaused("x").Message)
	assert.Equal(t, KindReminder, Reminder("x").Kind)
}

func TestDesktopWithoutAppIsNoop(t *testing.T) {
	Desktop{}.Notify(Reminder(""))
	Desktop{App: test.NewApp()}.Notify(Reminder(""))
}
