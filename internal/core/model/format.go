package model

import (
	"fmt"
	"time"
)

// FormatElapsed renders a duration as MM:SS.cc.
func FormatElapsed(value time.Duration) string {
	if value < 0 {
		value = 0
	}
	ms := value.Milliseconds()
	totalSeconds := ms / 1000
	minutes := totalSeconds / 60
	seconds := totalSeconds % 60
	centis := (ms % 1000) / 10
	return fmt.Sprintf("%02d:%02d.%02d", minutes, seconds, centis)
}
