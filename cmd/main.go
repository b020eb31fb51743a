package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"

	"looplog/internal/config"
	"looplog/internal/core/model"
	"looplog/internal/core/projects"
	"looplog/internal/logging"
	"looplog/internal/notify"
	"looplog/internal/platform"
	"looplog/internal/storage"
	"looplog/internal/ui/mainwindow"
	"looplog/internal/ui/refresh"
	"looplog/internal/ui/toast"
	"looplog/internal/ui/tray"
	"looplog/resources"
)

const (
	appName        = "LoopLog"
	appID          = "io.looplog.app"
	reloadInterval = 2 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to config.toml")
	counterOnly := flag.Bool("counter", false, "open only a counter window")
	flag.Parse()

	path := *configPath
	if path == "" {
		if resolved, err := platform.ConfigFile(appName); err == nil {
			path = resolved
		}
	}
	cfg, cfgErr := config.Load(path)
	logger := logging.New(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)
	logging.LogError(logger, "load config, using defaults", cfgErr)

	if err := platform.EnsureDir(cfg.DataDir); err != nil {
		logger.Error("prepare data dir", slog.Any("err", err))
		return
	}

	secondary := *counterOnly
	guard, err := platform.AcquireSingleInstance(appName, cfg.DataDir)
	if err != nil {
		if !errors.Is(err, platform.ErrAlreadyRunning) {
			logger.Error("single instance", slog.Any("err", err))
			return
		}
		logger.Info("another instance is running, opening a counter window only")
		secondary = true
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID(appID)
	idleIcon := resources.MustIcon(resources.IconIdle)
	runningIcon := resources.MustIcon(resources.IconRunning)
	fyneApp.SetIcon(idleIcon)

	store, err := storage.Open(cfg.Store, cfg.DataDir, fyneApp)
	if err != nil {
		logger.Error("open store", slog.Any("err", err))
		return
	}
	defer func() {
		logging.LogError(logger, "close store", storage.Close(store))
	}()
	logger.Info("store opened", slog.String("kind", string(cfg.Store)), slog.String("data_dir", cfg.DataDir))

	settings, err := storage.LoadSettings(store)
	logging.LogError(logger, "load settings", err)

	repo := projects.New(store, logger)

	toastWindow := toast.New(fyneApp, toast.Config{Duration: cfg.ToastFor})
	notifier := notify.Multi{toastWindow, notify.Desktop{App: fyneApp}, notify.Log{Logger: logger}}
	if cfg.Sound {
		notifier = append(notifier, &notify.Sound{Volume: cfg.Volume, Logger: logger})
	}

	counters := newCounterSet(fyneApp, repo, notifier, cfg.TickInterval, settings, logger)

	var mainWindow *mainwindow.Window
	applySettings := func(updated model.Settings) {
		settings = updated
		logging.LogError(logger, "save settings", storage.SaveSettings(store, settings))
		counters.apply(settings)
	}

	var trayManager *tray.Manager
	desktopApp, hasTray := fyneApp.(desktop.App)
	if secondary {
		counters.onEmpty = fyneApp.Quit
	} else {
		mainWindow = mainwindow.New(fyneApp, repo, settings, mainwindow.Callbacks{
			OnSettings:    applySettings,
			OnOpenCounter: counters.open,
			OnClose: func() {
				if !hasTray {
					fyneApp.Quit()
				}
			},
		}, logger)

		if hasTray {
			trayManager = tray.New(desktopApp, tray.Icons{Idle: idleIcon, Running: runningIcon}, tray.Callbacks{
				OnShowMain:    mainWindow.Show,
				OnOpenCounter: counters.open,
				OnToggleTimer: counters.toggleActive,
				OnQuit:        fyneApp.Quit,
			})
			trayRefresher := refresh.New(func() {
				status, running := counters.status()
				trayManager.SetStatus(status)
				trayManager.SetRunning(running)
			})
			defer trayRefresher.Stop()
			counters.onChange = trayRefresher.Trigger
			repo.OnChange(trayRefresher.Trigger)
			trayRefresher.Trigger()
		}
	}

	if cfg.Store != storage.KindMemory {
		stopReload := make(chan struct{})
		defer close(stopReload)
		go func() {
			ticker := time.NewTicker(reloadInterval)
			defer ticker.Stop()
			for {
				select {
				case <-stopReload:
					return
				case <-ticker.C:
					fyne.Do(func() {
						if counters.running() {
							return
						}
						logging.LogError(logger, "reload projects", repo.Reload())
						loaded, err := storage.LoadSettings(store)
						if err != nil || loaded == settings {
							return
						}
						settings = loaded
						counters.apply(settings)
						if mainWindow != nil {
							mainWindow.UpdateSettings(settings)
						}
					})
				}
			}
		}()
	}

	if secondary {
		counters.open()
	} else {
		mainWindow.Show()
	}
	fyneApp.Run()

	counters.release()
	logging.LogError(logger, "save settings", storage.SaveSettings(store, settings))
	logger.Info("bye")
}
