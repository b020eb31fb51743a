// Package mainwindow is the project list and settings window.
package mainwindow

import (
	"errors"
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"looplog/internal/core/model"
	"looplog/internal/core/projects"
	"looplog/internal/ui/refresh"
)

// Callbacks defines main window action handlers.
type Callbacks struct {
	OnSettings    func(model.Settings)
	OnOpenCounter func()
	OnClose       func()
}

// Window lists projects and edits settings.
type Window struct {
	window      fyne.Window
	repo        *projects.Repository
	callbacks   Callbacks
	logger      *slog.Logger
	form        *settingsForm
	list        *widget.List
	empty       *widget.Label
	counter     *widget.Button
	projects    []model.Project
	selectedID  string
	refresher   *refresh.Coalescer
	unsubscribe func()
}

// New creates the main window.
func New(app fyne.App, repo *projects.Repository, settings model.Settings, callbacks Callbacks, logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}
	window := app.NewWindow("LoopLog")

	win := &Window{
		window:    window,
		repo:      repo,
		callbacks: callbacks,
		logger:    logger,
	}
	win.form = newSettingsForm(settings, func(updated model.Settings) {
		if win.callbacks.OnSettings != nil {
			win.callbacks.OnSettings(updated)
		}
	})

	win.list = widget.NewList(
		func() int { return len(win.projects) },
		func() fyne.CanvasObject {
			remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
			return container.NewBorder(nil, nil, nil, remove, widget.NewLabel(""))
		},
		func(id widget.ListItemID, object fyne.CanvasObject) {
			if id < 0 || id >= len(win.projects) {
				return
			}
			project := win.projects[id]
			row := object.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(project.Name)
			row.Objects[1].(*widget.Button).OnTapped = func() {
				win.confirmDelete(project)
			}
		},
	)
	win.list.OnSelected = func(id widget.ListItemID) {
		if id < 0 || id >= len(win.projects) {
			return
		}
		win.selectProject(win.projects[id].ID)
	}

	win.empty = widget.NewLabel("No projects yet.")
	add := widget.NewButtonWithIcon("New project", theme.ContentAddIcon(), win.promptCreate)
	win.counter = widget.NewButtonWithIcon("Open counter window", theme.ComputerIcon(), func() {
		if win.callbacks.OnOpenCounter != nil {
			win.callbacks.OnOpenCounter()
		}
	})

	projectsPane := container.NewBorder(
		widget.NewLabelWithStyle("Projects", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewVBox(add, win.counter),
		nil, nil,
		container.NewStack(win.empty, win.list),
	)
	split := container.NewHSplit(projectsPane, container.NewVScroll(win.form.content()))
	split.Offset = 0.45
	window.SetContent(split)
	window.Resize(fyne.NewSize(640, 420))
	window.SetCloseIntercept(func() {
		window.Hide()
		if win.callbacks.OnClose != nil {
			win.callbacks.OnClose()
		}
	})

	win.refresher = refresh.New(win.Refresh)
	win.unsubscribe = repo.OnChange(win.refresher.Trigger)
	win.Refresh()
	return win
}

// Show displays the window.
func (win *Window) Show() {
	win.window.Show()
	win.window.RequestFocus()
}

// Window returns the underlying fyne window.
func (win *Window) Window() fyne.Window {
	return win.window
}

// UpdateSettings replaces the settings shown in the form.
func (win *Window) UpdateSettings(settings model.Settings) {
	win.form.set(settings)
}

// Refresh redraws the project list. Must run on the UI goroutine.
func (win *Window) Refresh() {
	win.projects = win.repo.List()
	win.selectedID = win.repo.SelectedID()

	if len(win.projects) == 0 {
		win.empty.Show()
	} else {
		win.empty.Hide()
	}
	if win.selectedID == "" {
		win.counter.Disable()
	} else {
		win.counter.Enable()
	}
	win.list.Refresh()

	for index, project := range win.projects {
		if project.ID == win.selectedID {
			win.list.Select(index)
			return
		}
	}
	win.list.UnselectAll()
}

// CreateProject adds and selects a project.
func (win *Window) CreateProject(name string) error {
	if _, err := win.repo.CreateProject(name); err != nil {
		return err
	}
	win.Refresh()
	return nil
}

// Close releases the repository subscription.
func (win *Window) Close() {
	if win.unsubscribe != nil {
		win.unsubscribe()
	}
	win.refresher.Stop()
	win.window.Close()
}

func (win *Window) selectProject(id string) {
	if id == win.selectedID {
		return
	}
	if err := win.repo.SelectProject(id); err != nil {
		win.showError(err)
		return
	}
	win.Refresh()
}

func (win *Window) promptCreate() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Project name")
	items := []*widget.FormItem{widget.NewFormItem("Name", entry)}
	dialog.ShowForm("New project", "Create", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}
		if err := win.CreateProject(entry.Text); err != nil {
			win.showError(err)
		}
	}, win.window)
}

func (win *Window) confirmDelete(project model.Project) {
	message := fmt.Sprintf("Delete %q and all of its sections?", project.Name)
	dialog.ShowConfirm("Delete project", message, func(confirmed bool) {
		if !confirmed {
			return
		}
		if err := win.repo.DeleteProject(project.ID); err != nil {
			win.showError(err)
			return
		}
		win.Refresh()
	}, win.window)
}

func (win *Window) showError(err error) {
	win.logger.Warn("project action failed", slog.Any("err", err))
	if errors.Is(err, projects.ErrEmptyName) {
		err = errors.New("please enter a project name")
	}
	dialog.ShowError(err, win.window)
}
