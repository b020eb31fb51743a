// Package toast shows short-lived notification windows.
package toast

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"github.com/jonboulle/clockwork"

	"looplog/internal/notify"
)

// DefaultDuration is how long a toast stays visible.
const DefaultDuration = 4 * time.Second

// Config defines toast visuals and timing.
type Config struct {
	Opacity  uint8
	Duration time.Duration
	Clock    clockwork.Clock
}

const (
	toastWidthFraction  = float32(0.22)
	toastHeightFraction = float32(0.10)
	defaultScreenWidth  = float32(1920)
	defaultScreenHeight = float32(1080)
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// Toast is a borderless window that shows one notification at a time and
// hides itself after Config.Duration.
type Toast struct {
	window     fyne.Window
	config     Config
	background *canvas.Rectangle
	title      *canvas.Text
	message    *canvas.Text

	mu         sync.Mutex
	visible    bool
	generation uint64
	hideTimer  clockwork.Timer
}

// New creates a hidden toast window.
func New(app fyne.App, config Config) *Toast {
	if config.Duration <= 0 {
		config.Duration = DefaultDuration
	}
	if config.Opacity == 0 {
		config.Opacity = 220
	}
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}

	window := app.NewWindow("LoopLog")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{R: 30, G: 24, B: 40, A: config.Opacity})

	title := canvas.NewText("", color.NRGBA{R: 242, G: 201, B: 76, A: 255})
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.TextSize = 14

	message := canvas.NewText("", color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	message.TextSize = 17

	content := container.NewPadded(container.NewVBox(title, message))
	window.SetContent(container.NewStack(background, content))

	return &Toast{
		window:     window,
		config:     config,
		background: background,
		title:      title,
		message:    message,
	}
}

// Notify shows the notification. It is safe to call from any goroutine.
func (toast *Toast) Notify(notification notify.Notification) {
	fyne.Do(func() {
		toast.Show(notification.Title, notification.Message)
	})
}

// Show displays a toast and schedules it to hide. Must run on the UI
// goroutine.
func (toast *Toast) Show(title, message string) {
	toast.title.Text = title
	toast.message.Text = message
	toast.title.Refresh()
	toast.message.Refresh()
	toast.resizeToScreenFraction()
	toast.window.Show()

	toast.mu.Lock()
	toast.visible = true
	toast.generation++
	generation := toast.generation
	if toast.hideTimer != nil {
		toast.hideTimer.Stop()
	}
	toast.hideTimer = toast.config.Clock.AfterFunc(toast.config.Duration, func() {
		fyne.Do(func() {
			toast.hideIfCurrent(generation)
		})
	})
	toast.mu.Unlock()
}

// Hide closes the toast immediately.
func (toast *Toast) Hide() {
	toast.mu.Lock()
	toast.visible = false
	toast.generation++
	if toast.hideTimer != nil {
		toast.hideTimer.Stop()
		toast.hideTimer = nil
	}
	toast.mu.Unlock()
	toast.window.Hide()
}

// Visible reports whether a toast is on screen.
func (toast *Toast) Visible() bool {
	toast.mu.Lock()
	defer toast.mu.Unlock()
	return toast.visible
}

// Message returns the text currently shown.
func (toast *Toast) Message() string {
	return toast.message.Text
}

func (toast *Toast) hideIfCurrent(generation uint64) {
	toast.mu.Lock()
	current := generation == toast.generation
	if current {
		toast.visible = false
		toast.hideTimer = nil
	}
	toast.mu.Unlock()
	if current {
		toast.window.Hide()
	}
}

func (toast *Toast) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := toast.window.Canvas().Size()
	// Canvas size can be reused as a proxy for monitor size when it is clearly screen-like.
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	width := screenSize.Width * toastWidthFraction
	height := screenSize.Height * toastHeightFraction
	minSize := toast.window.Content().MinSize()
	if width < minSize.Width {
		width = minSize.Width
	}
	if height < minSize.Height {
		height = minSize.Height
	}

	toast.window.Resize(fyne.NewSize(width, height))
	toast.window.CenterOnScreen()
}
