package mainwindow

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"looplog/internal/core/model"
)

// settingsForm edits model.Settings and reports every change immediately.
type settingsForm struct {
	settings   model.Settings
	onChange   func(model.Settings)
	updating   bool
	showStitch *widget.Check
	showRow    *widget.Check
	showRepeat *widget.Check
	showTimer  *widget.Check
	remindOff  *widget.Check
	remindOn   *widget.Check
	offMinutes *widget.Entry
	onMinutes  *widget.Entry
}

func newSettingsForm(settings model.Settings, onChange func(model.Settings)) *settingsForm {
	form := &settingsForm{onChange: onChange}

	form.showStitch = widget.NewCheck("Stitch counter", func(bool) { form.changed() })
	form.showRow = widget.NewCheck("Row counter", func(bool) { form.changed() })
	form.showRepeat = widget.NewCheck("Repeat counter", func(bool) { form.changed() })
	form.showTimer = widget.NewCheck("Timer", func(bool) { form.changed() })
	form.remindOff = widget.NewCheck("Pause the timer when I stop counting", func(bool) { form.changed() })
	form.remindOn = widget.NewCheck("Remind me to turn the timer back on", func(bool) { form.changed() })

	form.offMinutes = widget.NewEntry()
	form.offMinutes.OnChanged = func(string) { form.changed() }
	form.onMinutes = widget.NewEntry()
	form.onMinutes.OnChanged = func(string) { form.changed() }

	form.set(settings)
	return form
}

func (form *settingsForm) content() fyne.CanvasObject {
	return container.NewVBox(
		widget.NewLabelWithStyle("Trackers", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		form.showStitch,
		form.showRow,
		form.showRepeat,
		form.showTimer,
		widget.NewLabelWithStyle("Timer", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		form.remindOff,
		container.NewHBox(widget.NewLabel("after"), form.offMinutes, widget.NewLabel("min without counting")),
		form.remindOn,
		container.NewHBox(widget.NewLabel("every"), form.onMinutes, widget.NewLabel("min while stopped")),
	)
}

// set replaces the form values without reporting a change.
func (form *settingsForm) set(settings model.Settings) {
	settings = settings.Normalize()
	form.updating = true
	defer func() { form.updating = false }()

	form.settings = settings
	form.showStitch.SetChecked(settings.ShowStitch)
	form.showRow.SetChecked(settings.ShowRow)
	form.showRepeat.SetChecked(settings.ShowRepeat)
	form.showTimer.SetChecked(settings.ShowTimer)
	form.remindOff.SetChecked(settings.TimerReminderOff)
	form.remindOn.SetChecked(settings.TimerReminderOn)
	form.offMinutes.SetText(fmt.Sprintf("%d", settings.OffThresholdMinutes))
	form.onMinutes.SetText(fmt.Sprintf("%d", settings.OnIntervalMinutes))
	form.syncEnabled()
}

func (form *settingsForm) changed() {
	if form.updating {
		return
	}
	settings := form.settings
	settings.ShowStitch = form.showStitch.Checked
	settings.ShowRow = form.showRow.Checked
	settings.ShowRepeat = form.showRepeat.Checked
	settings.ShowTimer = form.showTimer.Checked
	settings.TimerReminderOff = form.remindOff.Checked
	settings.TimerReminderOn = form.remindOn.Checked
	if minutes, ok := parsePositiveInt(form.offMinutes.Text); ok {
		settings.OffThresholdMinutes = minutes
	}
	if minutes, ok := parsePositiveInt(form.onMinutes.Text); ok {
		settings.OnIntervalMinutes = minutes
	}
	form.syncEnabled()

	if settings == form.settings {
		return
	}
	form.settings = settings
	if form.onChange != nil {
		form.onChange(settings)
	}
}

func (form *settingsForm) syncEnabled() {
	if form.remindOff.Checked {
		form.offMinutes.Enable()
	} else {
		form.offMinutes.Disable()
	}
	if form.remindOn.Checked {
		form.onMinutes.Enable()
	} else {
		form.onMinutes.Disable()
	}
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
