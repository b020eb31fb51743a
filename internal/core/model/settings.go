package model

import "time"

// Settings are the process-wide tracker options shared by every window.
type Settings struct {
	ShowStitch bool
	ShowRow    bool
	ShowRepeat bool
	ShowTimer  bool

	// TimerReminderOff auto-pauses the timer after OffThresholdMinutes of
	// timer runtime without a counter interaction.
	TimerReminderOff bool
	// TimerReminderOn nags every OnIntervalMinutes while the timer is stopped.
	TimerReminderOn bool

	OffThresholdMinutes int
	OnIntervalMinutes   int
}

const defaultReminderMinutes = 5

// DefaultSettings returns the settings used when nothing is persisted.
func DefaultSettings() Settings {
	return Settings{
		OffThresholdMinutes: defaultReminderMinutes,
		OnIntervalMinutes:   defaultReminderMinutes,
	}
}

// Normalize replaces non-positive minute values with defaults.
func (settings Settings) Normalize() Settings {
	if settings.OffThresholdMinutes <= 0 {
		settings.OffThresholdMinutes = defaultReminderMinutes
	}
	if settings.OnIntervalMinutes <= 0 {
		settings.OnIntervalMinutes = defaultReminderMinutes
	}
	return settings
}

// OffThreshold returns the inactivity threshold.
func (settings Settings) OffThreshold() time.Duration {
	return time.Duration(settings.Normalize().OffThresholdMinutes) * time.Minute
}

// OnInterval returns the reminder interval.
func (settings Settings) OnInterval() time.Duration {
	return time.Duration(settings.Normalize().OnIntervalMinutes) * time.Minute
}

// Shows reports whether the given counter is visible.
func (settings Settings) Shows(field Field) bool {
	switch field {
	case FieldStitches:
		return settings.ShowStitch
	case FieldRows:
		return settings.ShowRow
	case FieldRepeats:
		return settings.ShowRepeat
	case FieldTime:
		return settings.ShowTimer
	default:
		return false
	}
}
