package tray

import (
	"fmt"

	"fyne.io/fyne/v2"
)

// MenuHost is the part of desktop.App the tray needs.
type MenuHost interface {
	SetSystemTrayMenu(menu *fyne.Menu)
	SetSystemTrayIcon(icon fyne.Resource)
}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShowMain    func()
	OnOpenCounter func()
	OnToggleTimer func()
	OnQuit        func()
}

// Icons are swapped with the timer state.
type Icons struct {
	Idle    fyne.Resource
	Running fyne.Resource
}

// Manager handles system tray state.
type Manager struct {
	host        MenuHost
	icons       Icons
	callbacks   Callbacks
	statusItem  *fyne.MenuItem
	timerItem   *fyne.MenuItem
	running     bool
	statusLabel string
	menu        *fyne.Menu
}

// New creates a tray manager with the provided callbacks.
func New(host MenuHost, icons Icons, callbacks Callbacks) *Manager {
	manager := &Manager{
		host:        host,
		icons:       icons,
		callbacks:   callbacks,
		statusLabel: "no project",
	}

	manager.statusItem = fyne.NewMenuItem("", nil)
	manager.statusItem.Disabled = true
	manager.timerItem = fyne.NewMenuItem("Start timer", func() {
		if manager.callbacks.OnToggleTimer != nil {
			manager.callbacks.OnToggleTimer()
		}
	})

	manager.refreshStatus()
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	if status == "" {
		status = "no project"
	}
	if status == manager.statusLabel {
		return
	}
	manager.statusLabel = status
	manager.refreshStatus()
}

// SetRunning updates timer state.
func (manager *Manager) SetRunning(running bool) {
	if running == manager.running && manager.menu != nil {
		return
	}
	manager.running = running
	if running {
		manager.timerItem.Label = "Stop timer"
	} else {
		manager.timerItem.Label = "Start timer"
	}
	if manager.host != nil {
		icon := manager.icons.Idle
		if running {
			icon = manager.icons.Running
		}
		if icon != nil {
			manager.host.SetSystemTrayIcon(icon)
		}
	}
	manager.refreshStatus()
}

// Menu returns the menu last handed to the tray.
func (manager *Manager) Menu() *fyne.Menu {
	return manager.menu
}

func (manager *Manager) refreshStatus() {
	status := manager.statusLabel
	if manager.running {
		status = fmt.Sprintf("%s (timing)", status)
	}
	manager.statusItem.Label = fmt.Sprintf("LoopLog: %s", status)
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	manager.menu = fyne.NewMenu("LoopLog",
		manager.statusItem,
		fyne.NewMenuItem("Projects and settings", func() {
			if manager.callbacks.OnShowMain != nil {
				manager.callbacks.OnShowMain()
			}
		}),
		fyne.NewMenuItem("Open counter window", func() {
			if manager.callbacks.OnOpenCounter != nil {
				manager.callbacks.OnOpenCounter()
			}
		}),
		manager.timerItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	)
	if manager.host != nil {
		manager.host.SetSystemTrayMenu(manager.menu)
	}
}
