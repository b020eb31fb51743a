// Package counter is the counter window: sections, counters and the timer
// of the selected project.
package counter

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"looplog/internal/core/model"
	"looplog/internal/core/projects"
	"looplog/internal/core/session"
	"looplog/internal/ui/refresh"
)

var fieldLabels = map[model.Field]string{
	model.FieldStitches: "Stitches",
	model.FieldRows:     "Rows",
	model.FieldRepeats:  "Repeats",
}

type counterRow struct {
	box   *fyne.Container
	value *widget.Label
}

// Window shows one session.Controller.
type Window struct {
	window     fyne.Window
	controller *session.Controller
	logger     *slog.Logger
	onClosed   func()

	view     session.View
	sections []string

	title       *widget.Label
	placeholder *widget.Label
	body        *fyne.Container
	sectionList *widget.List
	timerBox    *fyne.Container
	timerLabel  *widget.Label
	toggle      *widget.Button
	counters    map[model.Field]*counterRow
	totals      *widget.Label

	refresher   *refresh.Coalescer
	unsubscribe func()
}

// New creates a counter window driven by controller. onClosed runs after the
// window is closed and the controller released.
func New(app fyne.App, controller *session.Controller, onClosed func(), logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}
	counter := &Window{
		window:     app.NewWindow("LoopLog counter"),
		controller: controller,
		logger:     logger,
		onClosed:   onClosed,
		counters:   map[model.Field]*counterRow{},
	}

	counter.title = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	counter.placeholder = widget.NewLabel("Select a project in the main window.")
	counter.placeholder.Alignment = fyne.TextAlignCenter

	counter.sectionList = widget.NewList(
		func() int { return len(counter.sections) },
		func() fyne.CanvasObject {
			remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
			return container.NewBorder(nil, nil, nil, remove, widget.NewLabel(""))
		},
		func(id widget.ListItemID, object fyne.CanvasObject) {
			if id < 0 || id >= len(counter.sections) {
				return
			}
			name := counter.sections[id]
			row := object.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(name)
			remove := row.Objects[1].(*widget.Button)
			remove.OnTapped = func() { counter.confirmDeleteSection(name) }
			if name == counter.view.Section {
				remove.Disable()
			} else {
				remove.Enable()
			}
		},
	)
	counter.sectionList.OnSelected = func(id widget.ListItemID) {
		if id < 0 || id >= len(counter.sections) {
			return
		}
		counter.report(counter.controller.SelectSection(counter.sections[id]))
	}

	newSection := widget.NewButtonWithIcon("New section", theme.ContentAddIcon(), func() {
		_, err := counter.controller.CreateSection()
		counter.report(err)
	})
	rename := widget.NewButtonWithIcon("Rename", theme.DocumentCreateIcon(), counter.promptRename)
	sectionsPane := container.NewBorder(
		widget.NewLabelWithStyle("Sections", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(2, newSection, rename),
		nil, nil,
		counter.sectionList,
	)

	counter.timerLabel = widget.NewLabelWithStyle(model.FormatElapsed(0), fyne.TextAlignCenter, fyne.TextStyle{Monospace: true, Bold: true})
	counter.toggle = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), func() {
		counter.report(counter.controller.Toggle())
	})
	resetTimer := widget.NewButtonWithIcon("", theme.MediaReplayIcon(), func() {
		counter.report(counter.controller.ResetTimer())
	})
	counter.timerBox = container.NewBorder(nil, nil, widget.NewLabel("Time"), container.NewHBox(counter.toggle, resetTimer), counter.timerLabel)

	rows := []fyne.CanvasObject{counter.timerBox}
	for _, field := range []model.Field{model.FieldStitches, model.FieldRows, model.FieldRepeats} {
		row := counter.newCounterRow(field)
		counter.counters[field] = row
		rows = append(rows, row.box)
	}

	counter.totals = widget.NewLabel("")
	totalsCard := widget.NewCard("Grand totals", "", counter.totals)

	counterPane := container.NewVBox(append(rows, totalsCard)...)
	split := container.NewHSplit(sectionsPane, container.NewVScroll(counterPane))
	split.Offset = 0.35
	counter.body = container.NewBorder(counter.title, nil, nil, nil, split)

	counter.window.SetContent(container.NewStack(counter.placeholder, counter.body))
	counter.window.Resize(fyne.NewSize(620, 400))
	counter.window.SetOnClosed(counter.closed)

	counter.refresher = refresh.New(counter.Refresh)
	counter.unsubscribe = controller.OnUpdate(counter.refresher.Trigger)
	counter.Refresh()
	return counter
}

func (counter *Window) newCounterRow(field model.Field) *counterRow {
	value := widget.NewLabelWithStyle("0", fyne.TextAlignCenter, fyne.TextStyle{Monospace: true})
	decrement := widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), func() {
		counter.report(counter.controller.Decrement(field))
	})
	increment := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() {
		counter.report(counter.controller.Increment(field))
	})
	reset := widget.NewButtonWithIcon("", theme.ContentUndoIcon(), func() {
		counter.report(counter.controller.ResetCounter(field))
	})
	box := container.NewBorder(nil, nil,
		widget.NewLabel(fieldLabels[field]),
		container.NewHBox(decrement, increment, reset),
		value,
	)
	return &counterRow{box: box, value: value}
}

// Show displays the window.
func (counter *Window) Show() {
	counter.window.Show()
	counter.window.RequestFocus()
}

// Close closes the window and releases its controller.
func (counter *Window) Close() {
	counter.window.Close()
}

// Controller returns the window's session.
func (counter *Window) Controller() *session.Controller {
	return counter.controller
}

// Refresh syncs the controller with the repository and redraws. Must run on
// the UI goroutine.
func (counter *Window) Refresh() {
	counter.controller.Sync()
	counter.render(counter.controller.View())
}

func (counter *Window) render(view session.View) {
	counter.view = view
	if !view.HasProject {
		counter.sections = nil
		counter.placeholder.Show()
		counter.body.Hide()
		counter.window.SetTitle("LoopLog counter")
		return
	}
	counter.placeholder.Hide()
	counter.body.Show()
	counter.title.SetText(view.Project.Name)
	counter.window.SetTitle(fmt.Sprintf("%s - LoopLog", view.Project.Name))

	counter.sections = sectionNames(view.Project)
	counter.sectionList.Refresh()
	for index, name := range counter.sections {
		if name == view.Section {
			counter.sectionList.Select(index)
			break
		}
	}

	current, _ := view.Current()
	counter.timerLabel.SetText(model.FormatElapsed(view.Elapsed))
	if view.Running {
		counter.toggle.SetIcon(theme.MediaPauseIcon())
	} else {
		counter.toggle.SetIcon(theme.MediaPlayIcon())
	}
	setVisible(counter.timerBox, view.Settings.Shows(model.FieldTime))

	for field, row := range counter.counters {
		row.value.SetText(fmt.Sprintf("%d", current.Get(field)))
		setVisible(row.box, view.Settings.Shows(field))
	}

	counter.totals.SetText(formatTotals(view))
}

func (counter *Window) promptRename() {
	current := counter.view.Section
	if current == "" {
		return
	}
	entry := widget.NewEntry()
	entry.SetText(current)
	items := []*widget.FormItem{widget.NewFormItem("Name", entry)}
	dialog.ShowForm("Rename section", "Rename", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}
		counter.report(counter.controller.RenameSection(current, entry.Text))
	}, counter.window)
}

func (counter *Window) confirmDeleteSection(name string) {
	message := fmt.Sprintf("Delete section %q?", name)
	dialog.ShowConfirm("Delete section", message, func(confirmed bool) {
		if !confirmed {
			return
		}
		counter.report(counter.controller.DeleteSection(name))
	}, counter.window)
}

func (counter *Window) report(err error) {
	if err == nil {
		return
	}
	counter.logger.Warn("counter action failed", slog.Any("err", err))
	switch {
	case errors.Is(err, session.ErrNoProject), errors.Is(err, session.ErrNoSection):
		return
	case errors.Is(err, projects.ErrSectionSelected):
		err = errors.New("select another section before deleting this one")
	case errors.Is(err, projects.ErrLastSection):
		err = errors.New("a project needs at least one section")
	}
	dialog.ShowError(err, counter.window)
}

func (counter *Window) closed() {
	if counter.unsubscribe != nil {
		counter.unsubscribe()
	}
	counter.refresher.Stop()
	counter.controller.Close()
	if counter.onClosed != nil {
		counter.onClosed()
	}
}

func sectionNames(project model.Project) []string {
	names := make([]string, 0, len(project.Sections))
	for name := range project.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatTotals(view session.View) string {
	totals := view.Project.Totals()
	if current, ok := view.Current(); ok {
		// The bound section's stored time lags the live timer by one tick.
		totals.TimeMs += view.Elapsed.Milliseconds() - current.TimeMs
	}
	return fmt.Sprintf("Stitches: %d\nRows: %d\nRepeats: %d\nTime: %s",
		totals.Stitches, totals.Rows, totals.Repeats, model.FormatElapsed(totals.Elapsed()))
}

func setVisible(object fyne.CanvasObject, visible bool) {
	if visible {
		object.Show()
		return
	}
	object.Hide()
}
