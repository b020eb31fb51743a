// Package session drives one counter window: it binds the selected project's
// selected section to a timer, an inactivity monitor and a reminder, and
// routes every counter, timer and section action through the repository.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"looplog/internal/core/inactivity"
	"looplog/internal/core/model"
	"looplog/internal/core/projects"
	"looplog/internal/core/reminder"
	"looplog/internal/core/timekeeper"
	"looplog/internal/notify"
)

var (
	ErrNoProject = errors.New("no project selected")
	ErrNoSection = errors.New("no section selected")
)

// Options configures a Controller.
type Options struct {
	Repository   *projects.Repository
	Notifier     notify.Notifier
	Settings     model.Settings
	Clock        clockwork.Clock
	TickInterval time.Duration
	Logger       *slog.Logger
	// Reminders is shared by controllers that must not repeat each other's
	// reminders. Nil gives the controller its own.
	Reminders *reminder.Group
}

// View is a point-in-time copy of what a counter window shows.
type View struct {
	Project    model.Project
	HasProject bool
	Section    string
	Running    bool
	Elapsed    time.Duration
	Settings   model.Settings
}

// Current returns the bound section.
func (view View) Current() (model.Section, bool) {
	if !view.HasProject || view.Section == "" {
		return model.Section{}, false
	}
	section, ok := view.Project.Sections[view.Section]
	return section, ok
}

// Controller owns the timer state of one counter window.
type Controller struct {
	mu          sync.Mutex
	repo        *projects.Repository
	keeper      *timekeeper.TimeKeeper
	monitor     *inactivity.Monitor
	reminder    *reminder.Handle
	notifier    notify.Notifier
	logger      *slog.Logger
	settings    model.Settings
	projectID   string
	projectName string
	section     string
	saveFailing bool
	closed      bool
	unsubscribe func()
	done        chan struct{}

	listenerMu sync.Mutex
	listeners  map[int]func()
	nextID     int
}

// New creates a controller bound to the repository's current selection.
func New(options Options) (*Controller, error) {
	if options.Repository == nil {
		return nil, fmt.Errorf("create session: repository is nil")
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Notifier == nil {
		options.Notifier = notify.Multi(nil)
	}
	if options.Clock == nil {
		options.Clock = clockwork.NewRealClock()
	}

	controller := &Controller{
		repo:      options.Repository,
		notifier:  options.Notifier,
		logger:    options.Logger,
		settings:  options.Settings.Normalize(),
		monitor:   inactivity.New(),
		listeners: map[int]func(){},
		done:      make(chan struct{}),
	}
	controller.keeper = timekeeper.New(timekeeper.Config{
		TickInterval: options.TickInterval,
		Clock:        options.Clock,
	})
	if options.Reminders == nil {
		options.Reminders = reminder.NewGroup(options.Clock)
	}
	controller.reminder = options.Reminders.Join(controller.remind)

	events := controller.keeper.Subscribe(64)
	go controller.loop(events)

	controller.mu.Lock()
	controller.configureLocked()
	controller.syncLocked()
	controller.mu.Unlock()

	controller.unsubscribe = controller.repo.OnChange(controller.changed)
	return controller, nil
}

// OnUpdate registers fn to run after any visible change. fn runs on the
// goroutine that made the change and must not call back into the Controller.
func (controller *Controller) OnUpdate(fn func()) func() {
	controller.listenerMu.Lock()
	id := controller.nextID
	controller.nextID++
	controller.listeners[id] = fn
	controller.listenerMu.Unlock()

	return func() {
		controller.listenerMu.Lock()
		delete(controller.listeners, id)
		controller.listenerMu.Unlock()
	}
}

// View returns the current window state.
func (controller *Controller) View() View {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	view := View{
		Section:  controller.section,
		Running:  controller.keeper.Running(),
		Elapsed:  controller.keeper.Elapsed(),
		Settings: controller.settings,
	}
	if controller.projectID != "" {
		view.Project, view.HasProject = controller.repo.Project(controller.projectID)
	}
	return view
}

// Sync rebinds to the repository's selection. It picks up changes made by
// other windows: a different project or section stops the timer first, and
// a new stored time is adopted while stopped.
func (controller *Controller) Sync() {
	controller.mu.Lock()
	changed := controller.syncLocked()
	controller.mu.Unlock()
	if changed {
		controller.changed()
	}
}

// ApplySettings reconfigures auto-pause and the reminder.
func (controller *Controller) ApplySettings(settings model.Settings) {
	controller.mu.Lock()
	controller.settings = settings.Normalize()
	controller.configureLocked()
	controller.mu.Unlock()
	controller.changed()
}

// Increment adds one to a counter.
func (controller *Controller) Increment(field model.Field) error {
	return controller.adjust(field, func(value int64) int64 { return value + 1 })
}

// Decrement subtracts one from a counter, stopping at zero.
func (controller *Controller) Decrement(field model.Field) error {
	return controller.adjust(field, func(value int64) int64 { return value - 1 })
}

// ResetCounter sets a counter to zero.
func (controller *Controller) ResetCounter(field model.Field) error {
	return controller.adjust(field, func(int64) int64 { return 0 })
}

func (controller *Controller) adjust(field model.Field, update func(int64) int64) error {
	if !field.Valid() || field == model.FieldTime {
		return fmt.Errorf("adjust %q: %w", field, projects.ErrUnknownField)
	}

	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.section == "" {
		return fmt.Errorf("adjust %s: %w", field, ErrNoSection)
	}
	project, ok := controller.repo.Project(controller.projectID)
	if !ok {
		return fmt.Errorf("adjust %s: %w", field, projects.ErrProjectNotFound)
	}
	section := project.Sections[controller.section]
	value := update(section.Get(field))
	if value < 0 {
		value = 0
	}
	controller.monitor.Touch(controller.keeper.Elapsed())
	return controller.repo.UpdateCounter(controller.projectID, controller.section, field, value)
}

// Start runs the timer for the bound section.
func (controller *Controller) Start() error {
	controller.mu.Lock()
	if controller.section == "" {
		controller.mu.Unlock()
		return fmt.Errorf("start timer: %w", ErrNoSection)
	}
	if controller.keeper.Running() {
		controller.mu.Unlock()
		return nil
	}
	controller.keeper.Start()
	controller.monitor.Touch(controller.keeper.Elapsed())
	controller.reminder.TimerStarted()
	controller.mu.Unlock()

	controller.changed()
	return nil
}

// Stop pauses the timer and saves its time.
func (controller *Controller) Stop() {
	controller.mu.Lock()
	controller.stopLocked()
	controller.mu.Unlock()
	controller.changed()
}

// Toggle starts a stopped timer or stops a running one.
func (controller *Controller) Toggle() error {
	if controller.keeper.Running() {
		controller.Stop()
		return nil
	}
	return controller.Start()
}

// ResetTimer stops the timer and zeroes the section's time.
func (controller *Controller) ResetTimer() error {
	controller.mu.Lock()
	if controller.section == "" {
		controller.mu.Unlock()
		return fmt.Errorf("reset timer: %w", ErrNoSection)
	}
	wasRunning := controller.keeper.Running()
	controller.keeper.Reset()
	controller.monitor.Touch(0)
	err := controller.saveTimeLocked()
	if wasRunning {
		controller.reminder.TimerStopped()
	}
	controller.mu.Unlock()

	controller.changed()
	return err
}

// SelectSection stops the timer and binds another section of the project.
func (controller *Controller) SelectSection(name string) error {
	controller.mu.Lock()
	if controller.projectID == "" {
		controller.mu.Unlock()
		return fmt.Errorf("select section: %w", ErrNoProject)
	}
	if name == controller.section {
		controller.mu.Unlock()
		return nil
	}
	defer controller.changed()
	defer controller.mu.Unlock()

	controller.stopLocked()
	if err := controller.repo.SelectSection(controller.projectID, name); err != nil {
		return err
	}
	controller.syncLocked()
	return nil
}

// CreateSection adds a section and binds it.
func (controller *Controller) CreateSection() (string, error) {
	controller.mu.Lock()
	defer controller.changed()
	defer controller.mu.Unlock()

	if controller.projectID == "" {
		return "", fmt.Errorf("create section: %w", ErrNoProject)
	}
	controller.stopLocked()
	name, err := controller.repo.CreateSection(controller.projectID)
	controller.syncLocked()
	return name, err
}

// RenameSection renames a section. Renaming the bound section keeps the timer
// running.
func (controller *Controller) RenameSection(oldName, newName string) error {
	controller.mu.Lock()
	defer controller.changed()
	defer controller.mu.Unlock()

	if controller.projectID == "" {
		return fmt.Errorf("rename section: %w", ErrNoProject)
	}
	if oldName == controller.section {
		// Flush before the old key disappears.
		if err := controller.saveTimeLocked(); err != nil {
			return err
		}
	}
	if err := controller.repo.RenameSection(controller.projectID, oldName, newName); err != nil {
		return err
	}
	if project, ok := controller.repo.Project(controller.projectID); ok && oldName == controller.section &&
		project.SelectedSection == newName {
		controller.section = newName
		controller.reminder.Bind(controller.reminderKeyLocked())
	}
	controller.syncLocked()
	return nil
}

// DeleteSection removes a section other than the bound one.
func (controller *Controller) DeleteSection(name string) error {
	controller.mu.Lock()
	defer controller.changed()
	defer controller.mu.Unlock()

	if controller.projectID == "" {
		return fmt.Errorf("delete section: %w", ErrNoProject)
	}
	if err := controller.repo.DeleteSection(controller.projectID, name); err != nil {
		return err
	}
	controller.syncLocked()
	return nil
}

// HandleEvent persists the engine's time and applies auto-pause. Events from
// an older binding are ignored.
func (controller *Controller) HandleEvent(event timekeeper.Event) {
	controller.mu.Lock()
	if controller.closed || controller.section == "" || event.Epoch != controller.keeper.Epoch() {
		controller.mu.Unlock()
		return
	}
	_ = controller.saveTimeLocked()

	paused := false
	name := controller.projectName
	if controller.monitor.Observe(controller.keeper.Elapsed(), controller.keeper.Running()) {
		controller.stopLocked()
		paused = true
	}
	controller.mu.Unlock()

	if paused {
		controller.logger.Info("timer auto-paused", slog.String("project", name))
		controller.notifier.Notify(notify.AutoPaused(name))
	}
	controller.changed()
}

// Close stops the timer, saves its time and releases the tickers.
func (controller *Controller) Close() {
	controller.mu.Lock()
	if controller.closed {
		controller.mu.Unlock()
		return
	}
	controller.stopLocked()
	controller.closed = true
	controller.mu.Unlock()

	if controller.unsubscribe != nil {
		controller.unsubscribe()
	}
	controller.reminder.Close()
	controller.keeper.Close()
	<-controller.done
}

func (controller *Controller) loop(events <-chan timekeeper.Event) {
	defer close(controller.done)
	for event := range events {
		controller.HandleEvent(event)
	}
}

func (controller *Controller) remind() {
	controller.mu.Lock()
	skip := controller.closed || controller.section == ""
	name := controller.projectName
	controller.mu.Unlock()
	if skip {
		return
	}
	controller.notifier.Notify(notify.Reminder(name))
}

func (controller *Controller) changed() {
	controller.listenerMu.Lock()
	listeners := make([]func(), 0, len(controller.listeners))
	for _, fn := range controller.listeners {
		listeners = append(listeners, fn)
	}
	controller.listenerMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// syncLocked reports whether the binding or the shown time changed.
func (controller *Controller) syncLocked() bool {
	project, ok := controller.repo.Selected()
	if !ok {
		return controller.unbindLocked()
	}
	section, ok := project.Current()
	if !ok {
		return controller.unbindLocked()
	}
	if project.ID != controller.projectID || project.SelectedSection != controller.section {
		controller.bindLocked(project, section)
		return true
	}

	changed := controller.projectName != project.Name
	controller.projectName = project.Name
	if controller.keeper.Running() {
		return changed
	}
	stored := section.Elapsed()
	if stored.Milliseconds() != controller.keeper.Elapsed().Milliseconds() {
		controller.keeper.SetElapsed(stored)
		controller.monitor.Touch(stored)
		changed = true
	}
	return changed
}

func (controller *Controller) bindLocked(project model.Project, section model.Section) {
	controller.stopLocked()
	controller.projectID = project.ID
	controller.projectName = project.Name
	controller.section = project.SelectedSection
	controller.keeper.SetElapsed(section.Elapsed())
	controller.monitor.Attach(section.Elapsed())
	controller.configureLocked()
}

func (controller *Controller) unbindLocked() bool {
	if controller.projectID == "" && controller.section == "" {
		return false
	}
	controller.stopLocked()
	controller.projectID = ""
	controller.projectName = ""
	controller.section = ""
	controller.keeper.SetElapsed(0)
	controller.monitor.Detach()
	controller.configureLocked()
	return true
}

func (controller *Controller) configureLocked() {
	bound := controller.section != ""
	controller.reminder.Bind(controller.reminderKeyLocked())
	controller.monitor.Configure(controller.settings.TimerReminderOff, controller.settings.OffThreshold())
	controller.reminder.Configure(bound && controller.settings.TimerReminderOn, controller.settings.OnInterval())
}

// reminderKeyLocked names the bound section across controllers.
func (controller *Controller) reminderKeyLocked() string {
	if controller.section == "" {
		return ""
	}
	return controller.projectID + "\x00" + controller.section
}

func (controller *Controller) stopLocked() {
	if !controller.keeper.Running() {
		return
	}
	controller.keeper.Stop()
	_ = controller.saveTimeLocked()
	controller.reminder.TimerStopped()
}

func (controller *Controller) saveTimeLocked() error {
	if controller.section == "" {
		return nil
	}
	millis := controller.keeper.Elapsed().Milliseconds()
	err := controller.repo.UpdateCounter(controller.projectID, controller.section, model.FieldTime, millis)
	if err != nil {
		if !controller.saveFailing {
			controller.logger.Warn("save timer failed", slog.Any("err", err))
		}
		controller.saveFailing = true
		return err
	}
	controller.saveFailing = false
	return nil
}
