package main

import (
	"log/slog"
	"time"

	"fyne.io/fyne/v2"

	"looplog/internal/core/model"
	"looplog/internal/core/projects"
	"looplog/internal/core/reminder"
	"looplog/internal/core/session"
	"looplog/internal/notify"
	"looplog/internal/ui/counter"
)

// counterSet tracks the open counter windows. It is only touched on the UI
// goroutine.
type counterSet struct {
	app          fyne.App
	repo         *projects.Repository
	notifier     notify.Notifier
	tickInterval time.Duration
	settings     model.Settings
	logger       *slog.Logger
	reminders    *reminder.Group
	windows      []*counter.Window
	onChange     func()
	onEmpty      func()
}

func newCounterSet(app fyne.App, repo *projects.Repository, notifier notify.Notifier, tickInterval time.Duration, settings model.Settings, logger *slog.Logger) *counterSet {
	return &counterSet{
		app:          app,
		repo:         repo,
		notifier:     notifier,
		tickInterval: tickInterval,
		settings:     settings,
		logger:       logger,
		reminders:    reminder.NewGroup(nil),
	}
}

func (set *counterSet) open() {
	controller, err := session.New(session.Options{
		Repository:   set.repo,
		Notifier:     set.notifier,
		Settings:     set.settings,
		TickInterval: set.tickInterval,
		Logger:       set.logger,
		Reminders:    set.reminders,
	})
	if err != nil {
		set.logger.Error("open counter window", slog.Any("err", err))
		return
	}

	var window *counter.Window
	window = counter.New(set.app, controller, func() {
		set.remove(window)
	}, set.logger)
	controller.OnUpdate(set.changed)
	set.windows = append(set.windows, window)
	window.Show()
	set.changed()
}

func (set *counterSet) remove(window *counter.Window) {
	for index, candidate := range set.windows {
		if candidate == window {
			set.windows = append(set.windows[:index], set.windows[index+1:]...)
			break
		}
	}
	set.changed()
	if len(set.windows) == 0 && set.onEmpty != nil {
		set.onEmpty()
	}
}

func (set *counterSet) apply(settings model.Settings) {
	set.settings = settings
	for _, window := range set.windows {
		window.Controller().ApplySettings(settings)
	}
}

func (set *counterSet) active() *session.Controller {
	if len(set.windows) == 0 {
		return nil
	}
	return set.windows[len(set.windows)-1].Controller()
}

func (set *counterSet) toggleActive() {
	controller := set.active()
	if controller == nil {
		set.open()
		controller = set.active()
		if controller == nil {
			return
		}
	}
	if err := controller.Toggle(); err != nil {
		set.logger.Info("toggle timer", slog.Any("err", err))
	}
}

func (set *counterSet) running() bool {
	for _, window := range set.windows {
		if window.Controller().View().Running {
			return true
		}
	}
	return false
}

// status reports the active window's project and whether any timer runs.
func (set *counterSet) status() (string, bool) {
	controller := set.active()
	if controller == nil {
		if project, ok := set.repo.Selected(); ok {
			return project.Name, false
		}
		return "", false
	}
	view := controller.View()
	return view.Project.Name, set.running()
}

func (set *counterSet) release() {
	for _, window := range set.windows {
		window.Controller().Close()
	}
	set.windows = nil
}

func (set *counterSet) changed() {
	if set.onChange != nil {
		set.onChange()
	}
}
