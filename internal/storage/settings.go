package storage

import (
	"errors"
	"fmt"
	"strconv"

	"looplog/internal/core/model"
)

// Persisted keys.
const (
	KeyProjects        = "projects"
	KeySelectedProject = "selectedProject"

	KeyShowStitch = "showStitch"
	KeyShowRow    = "showRow"
	KeyShowRepeat = "showRepeat"
	KeyShowTimer  = "showTimer"

	KeyTimerRemindOff     = "timerRemindOff"
	KeyTimerRemindOn      = "timerRemindOn"
	KeyTimerRemindOffTime = "timerReminderOffTime"
	KeyTimerRemindOnTime  = "timerReminderOnTime"
)

// LoadSettings reads the tracker settings. Missing or malformed values keep
// their defaults; read errors are returned alongside the best-effort result.
func LoadSettings(store Store) (model.Settings, error) {
	settings := model.DefaultSettings()
	var errs []error

	readBool := func(key string, target *bool) {
		value, ok, err := store.Get(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", key, err))
			return
		}
		if ok {
			*target = value == "true"
		}
	}
	readMinutes := func(key string, target *int) {
		value, ok, err := store.Get(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", key, err))
			return
		}
		if !ok {
			return
		}
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			*target = parsed
		}
	}

	readBool(KeyShowStitch, &settings.ShowStitch)
	readBool(KeyShowRow, &settings.ShowRow)
	readBool(KeyShowRepeat, &settings.ShowRepeat)
	readBool(KeyShowTimer, &settings.ShowTimer)
	readBool(KeyTimerRemindOff, &settings.TimerReminderOff)
	readBool(KeyTimerRemindOn, &settings.TimerReminderOn)
	readMinutes(KeyTimerRemindOffTime, &settings.OffThresholdMinutes)
	readMinutes(KeyTimerRemindOnTime, &settings.OnIntervalMinutes)

	return settings, errors.Join(errs...)
}

// SaveSettings writes every settings key.
func SaveSettings(store Store, settings model.Settings) error {
	settings = settings.Normalize()
	values := []struct {
		key   string
		value string
	}{
		{KeyShowStitch, strconv.FormatBool(settings.ShowStitch)},
		{KeyShowRow, strconv.FormatBool(settings.ShowRow)},
		{KeyShowRepeat, strconv.FormatBool(settings.ShowRepeat)},
		{KeyShowTimer, strconv.FormatBool(settings.ShowTimer)},
		{KeyTimerRemindOff, strconv.FormatBool(settings.TimerReminderOff)},
		{KeyTimerRemindOn, strconv.FormatBool(settings.TimerReminderOn)},
		{KeyTimerRemindOffTime, strconv.Itoa(settings.OffThresholdMinutes)},
		{KeyTimerRemindOnTime, strconv.Itoa(settings.OnIntervalMinutes)},
	}

	var errs []error
	for _, entry := range values {
		if err := store.Set(entry.key, entry.value); err != nil {
			errs = append(errs, fmt.Errorf("save %s: %w", entry.key, err))
		}
	}
	return errors.Join(errs...)
}
